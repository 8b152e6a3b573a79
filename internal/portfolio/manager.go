package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// Manager сохраняет и удаляет записи раздела и сбрасывает кэш читателя.
// Ошибки хранилища логируются, уходят владельцу уведомлением и возвращаются как RemoteError;
// черновик при этом остаётся в форме.
type Manager[T any] struct {
	schema   *Schema[T]
	table    store.Table[T]
	reader   *Reader[T]
	notifier Notifier
}

// NewManager создаёт менеджер раздела.
func NewManager[T any](schema *Schema[T], table store.Table[T], reader *Reader[T], notifier Notifier) *Manager[T] {
	return &Manager[T]{schema: schema, table: table, reader: reader, notifier: orNop(notifier)}
}

// Save сохраняет активный черновик формы: insert для новой записи, update для редактируемой,
// upsert для профиля. Обязательные поля проверяются до обращения к хранилищу.
func (m *Manager[T]) Save(ctx context.Context, owner Owner, form *Form[T]) (T, error) {
	var zero T

	if m.schema.ReadOnly {
		return zero, form.readOnly()
	}

	row, ok := form.Draft()
	if !ok {
		return zero, apperror.Validation("нет активной формы")
	}

	m.schema.Normalize(&row)
	if err := m.schema.Validate(&row); err != nil {
		return zero, err
	}

	m.schema.Record(&row).UserID = owner.ID

	var err error
	switch {
	case m.schema.Singleton:
		err = m.table.Upsert(ctx, &row)
	case form.Mode() == ModeNew:
		err = m.table.Insert(ctx, &row)
	default:
		id, _ := form.OriginalID()
		err = m.table.Update(ctx, id, store.ByOwner(owner.ID), &row)
	}
	if err != nil {
		return zero, m.fail(owner, "save", err)
	}

	form.Cancel()
	m.reader.Invalidate(owner.ID)
	m.notifier.Invalidated(owner.ID, m.schema.Kind)
	m.notifier.Notify(owner.ID, Notice{Level: LevelSuccess, Entity: m.schema.Kind, Message: "Изменения сохранены"})

	return row, nil
}

// Delete удаляет запись владельца. Если эта запись открыта в форме, редактирование отменяется.
func (m *Manager[T]) Delete(ctx context.Context, owner Owner, form *Form[T], id uuid.UUID) error {
	if m.schema.Singleton {
		return apperror.New(apperror.ErrCodeForbidden, fmt.Sprintf("раздел %s нельзя удалить", m.schema.Kind))
	}

	if err := m.table.Delete(ctx, id, store.ByOwner(owner.ID)); err != nil {
		return m.fail(owner, "delete", err)
	}

	if editing, ok := form.OriginalID(); ok && editing == id {
		form.Cancel()
	}
	m.reader.Invalidate(owner.ID)
	m.notifier.Invalidated(owner.ID, m.schema.Kind)
	m.notifier.Notify(owner.ID, Notice{Level: LevelSuccess, Entity: m.schema.Kind, Message: "Запись удалена"})

	return nil
}

func (m *Manager[T]) fail(owner Owner, op string, err error) error {
	logger.Log.WithFields(logrus.Fields{
		"entity":   m.schema.Kind,
		"owner_id": owner.ID,
		"op":       op,
		"error":    err,
	}).Error("portfolio: ошибка хранилища")

	if errors.Is(err, store.ErrNotFound) {
		m.notifier.Notify(owner.ID, Notice{Level: LevelError, Entity: m.schema.Kind, Message: "Запись не найдена"})
		return apperror.Wrap(err, apperror.ErrCodeNotFound, apperror.ErrEntityNotFound.Message)
	}

	message := "Не удалось сохранить изменения, попробуйте ещё раз"
	if op == "delete" {
		message = "Не удалось удалить запись, попробуйте ещё раз"
	}
	m.notifier.Notify(owner.ID, Notice{Level: LevelError, Entity: m.schema.Kind, Message: message})
	return apperror.Remote(err, "хранилище недоступно, попробуйте ещё раз")
}
