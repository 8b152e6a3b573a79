package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/service"
)

// PublicReader отдаёт опубликованные разделы портфолио.
type PublicReader interface {
	Public(ctx context.Context, owner uuid.UUID, kind portfolio.Kind) (any, error)
}

// ContactSubmitter принимает сообщения из формы обратной связи.
type ContactSubmitter interface {
	Submit(ctx context.Context, ownerID uuid.UUID, in service.ContactInput) (*models.ContactSubmission, error)
}

// PublicHandler обслуживает публичную часть сайта без авторизации.
type PublicHandler struct {
	reader  PublicReader
	contact ContactSubmitter
}

// NewPublicHandler создаёт хэндлер публичных разделов.
func NewPublicHandler(reader PublicReader, contact ContactSubmitter) *PublicHandler {
	return &PublicHandler{reader: reader, contact: contact}
}

// Section обрабатывает GET /api/public/:ownerId/:entity.
func (h *PublicHandler) Section(c *gin.Context) {
	ownerID, err := common.ParseUUIDParam(c, "ownerId")
	if err != nil {
		common.Fail(c, err)
		return
	}
	kind, err := common.ParseKindParam(c, "entity")
	if err != nil {
		common.Fail(c, err)
		return
	}

	data, err := h.reader.Public(c.Request.Context(), ownerID, kind)
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondOK(c, data)
}

// Contact обрабатывает POST /api/public/:ownerId/contact.
func (h *PublicHandler) Contact(c *gin.Context) {
	ownerID, err := common.ParseUUIDParam(c, "ownerId")
	if err != nil {
		common.Fail(c, err)
		return
	}

	// поля необязательны на уровне разбора: сервис вернёт их списком
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	submission, err := h.contact.Submit(c.Request.Context(), ownerID, service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, gin.H{"id": submission.ID})
}
