package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/portfolio-backend/internal/http/handlers/common"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// multipartOverhead: запас на заголовки multipart сверх лимита файла.
const multipartOverhead = 1 << 20

// SelectFile обрабатывает POST /api/admin/:entity/uploads/:field (multipart, поле file).
func (h *AdminHandler) SelectFile(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	field := c.Param("field")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, apperror.Validation("поле file обязательно", "file"))
		return
	}

	src, err := header.Open()
	if err != nil {
		common.Fail(c, apperror.Validation("не удалось прочитать файл", "file"))
		return
	}
	defer src.Close()

	status, err := h.svc.SelectFile(owner, kind, field, upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      src,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondOK(c, status)
}

// UploadStatus обрабатывает GET /api/admin/:entity/uploads/:field.
func (h *AdminHandler) UploadStatus(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	status, err := h.svc.UploadStatus(owner, kind, c.Param("field"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.RespondOK(c, status)
}

// Preview обрабатывает GET /api/admin/:entity/uploads/:field/preview.
func (h *AdminHandler) Preview(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	preview, err := h.svc.Preview(owner, kind, c.Param("field"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, preview.ContentType, preview.Data)
}

// CommitUpload обрабатывает POST /api/admin/:entity/uploads/:field/commit.
func (h *AdminHandler) CommitUpload(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	h.respondView(c)(h.svc.CommitUpload(c.Request.Context(), owner, kind, c.Param("field")))
}

// RemoveUpload обрабатывает DELETE /api/admin/:entity/uploads/:field.
func (h *AdminHandler) RemoveUpload(c *gin.Context) {
	owner, kind, ok := target(c)
	if !ok {
		return
	}
	h.respondView(c)(h.svc.RemoveUpload(owner, kind, c.Param("field")))
}
