package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// PortfolioService: операции админки над разделами портфолио.
type PortfolioService interface {
	Describe(kind portfolio.Kind) (portfolio.Description, error)
	List(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind) (any, error)
	Form(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind) (portfolio.FormView, error)
	StartNew(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind) (portfolio.FormView, error)
	StartEdit(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind, id uuid.UUID) (portfolio.FormView, error)
	Cancel(owner portfolio.Owner, kind portfolio.Kind) (portfolio.FormView, error)
	SetFields(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind, values map[string]string) (portfolio.FormView, error)
	Save(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind) (any, error)
	Delete(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind, id uuid.UUID) error

	SelectFile(owner portfolio.Owner, kind portfolio.Kind, field string, file upload.File) (upload.Status, error)
	UploadStatus(owner portfolio.Owner, kind portfolio.Kind, field string) (upload.Status, error)
	Preview(owner portfolio.Owner, kind portfolio.Kind, field string) (*upload.Preview, error)
	CommitUpload(ctx context.Context, owner portfolio.Owner, kind portfolio.Kind, field string) (portfolio.FormView, error)
	RemoveUpload(owner portfolio.Owner, kind portfolio.Kind, field string) (portfolio.FormView, error)
}

// AdminHandler обслуживает разделы и формы админки.
type AdminHandler struct {
	svc PortfolioService
}

// NewAdminHandler создаёт хэндлер админки.
func NewAdminHandler(svc PortfolioService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// target извлекает владельца и раздел. При ошибке ответ уже отправлен.
func target(c *gin.Context) (portfolio.Owner, portfolio.Kind, bool) {
	owner, err := common.CurrentOwner(c)
	if err != nil {
		common.Fail(c, err)
		return portfolio.Owner{}, "", false
	}
	kind, err := common.ParseKindParam(c, "entity")
	if err != nil {
		common.Fail(c, err)
		return portfolio.Owner{}, "", false
	}
	return owner, kind, true
}

// Schema обрабатывает GET /api/admin/:entity/schema.
func (h *AdminHandler) Schema(c *gin.Context) {
	_, kind, ok := target(c)
	if !ok {
		return
	}
	desc, err := h.svc.Describe(kind)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondOK(c, desc)
}

// List обрабатывает GET /api/admin/:entity.
func (h *AdminHandler) List(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	data, err := h.svc.List(c.Request.Context(), owner, kind)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondOK(c, data)
}

// Form обрабатывает GET /api/admin/:entity/form.
func (h *AdminHandler) Form(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	h.respondView(c)(h.svc.Form(c.Request.Context(), owner, kind))
}

// StartNew обрабатывает POST /api/admin/:entity/form/new.
func (h *AdminHandler) StartNew(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	h.respondView(c)(h.svc.StartNew(c.Request.Context(), owner, kind))
}

// StartEdit обрабатывает POST /api/admin/:entity/form/edit/:id.
func (h *AdminHandler) StartEdit(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	h.respondView(c)(h.svc.StartEdit(c.Request.Context(), owner, kind, id))
}

// Cancel обрабатывает DELETE /api/admin/:entity/form.
func (h *AdminHandler) Cancel(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	h.respondView(c)(h.svc.Cancel(owner, kind))
}

// SetFields обрабатывает PATCH /api/admin/:entity/form.
// Тело запроса: объект {"поле": "значение"}; списки передаются строкой с разделителем поля.
func (h *AdminHandler) SetFields(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	var values map[string]string
	if err := common.BindJSON(c, &values); err != nil {
		common.Fail(c, err)
		return
	}
	h.respondView(c)(h.svc.SetFields(c.Request.Context(), owner, kind, values))
}

// Save обрабатывает POST /api/admin/:entity/form/save.
func (h *AdminHandler) Save(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), owner, kind)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondOK(c, saved)
}

// Delete обрабатывает DELETE /api/admin/:entity/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), owner, kind, id); err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *AdminHandler) respondView(c *gin.Context) func(portfolio.FormView, error) {
	return func(view portfolio.FormView, err error) {
		if err != nil {
			common.Fail(c, err)
			return
		}
		common.RespondOK(c, view)
	}
}
