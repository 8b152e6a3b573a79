package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/repository"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/validation"
)

// OwnerLookup проверяет, что адресат сообщения существует.
type OwnerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Invalidator сбрасывает кэш чтения раздела для владельца.
type Invalidator interface {
	Invalidate(owner uuid.UUID)
}

// ContactInput: поля публичной формы обратной связи.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactService принимает сообщения посетителей без авторизации.
type ContactService struct {
	owners   OwnerLookup
	table    store.Table[models.ContactSubmission]
	inbox    Invalidator
	notifier portfolio.Notifier
}

// NewContactService создаёт сервис обратной связи.
func NewContactService(owners OwnerLookup, table store.Table[models.ContactSubmission], inbox Invalidator, notifier portfolio.Notifier) *ContactService {
	return &ContactService{
		owners:   owners,
		table:    table,
		inbox:    inbox,
		notifier: notifier,
	}
}

// Submit сохраняет сообщение для владельца сайта.
func (s *ContactService) Submit(ctx context.Context, ownerID uuid.UUID, in ContactInput) (*models.ContactSubmission, error) {
	submission := &models.ContactSubmission{
		Record:  models.Record{UserID: ownerID},
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Message: strings.TrimSpace(in.Message),
	}

	if err := validateSubmission(submission); err != nil {
		return nil, err
	}

	if _, err := s.owners.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Remote(err, "не удалось отправить сообщение")
	}

	if err := s.table.Insert(ctx, submission); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"entity":   portfolio.KindContact,
			"owner_id": ownerID,
			"error":    err.Error(),
		}).Error("contact service: не удалось сохранить сообщение")
		return nil, apperror.Remote(err, "не удалось отправить сообщение")
	}

	if s.inbox != nil {
		s.inbox.Invalidate(ownerID)
	}
	if s.notifier != nil {
		s.notifier.Invalidated(ownerID, portfolio.KindContact)
		s.notifier.Notify(ownerID, portfolio.Notice{
			Level:   portfolio.LevelSuccess,
			Entity:  portfolio.KindContact,
			Message: "новое сообщение от " + submission.Name,
		})
	}

	return submission, nil
}

// validateSubmission собирает все незаполненные или некорректные поля разом.
func validateSubmission(sub *models.ContactSubmission) error {
	var missing []string
	if sub.Name == "" {
		missing = append(missing, "name")
	}
	if sub.Email == "" {
		missing = append(missing, "email")
	}
	if sub.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}

	if err := validation.ValidateLength("имя", sub.Name, 1, validation.MaxNameLength); err != nil {
		return apperror.Validation(err.Error(), "name")
	}
	if err := validation.ValidateEmail(sub.Email); err != nil {
		return apperror.Validation(err.Error(), "email")
	}
	if err := validation.ValidateMessageContent(sub.Message); err != nil {
		return apperror.Validation(err.Error(), "message")
	}
	return nil
}
