package common

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/http/middleware"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
)

// ErrInvalidUUID возвращается, когда параметр пути не является UUID.
var ErrInvalidUUID = apperror.New(apperror.ErrCodeBadRequest, "неверный формат UUID")

// CurrentOwner извлекает владельца, которого положил AuthMiddleware.
func CurrentOwner(c *gin.Context) (portfolio.Owner, error) {
	raw, exists := c.Get(middleware.ContextOwnerKey)
	if !exists {
		return portfolio.Owner{}, apperror.ErrUnauthorized
	}

	owner, ok := raw.(portfolio.Owner)
	if !ok || owner.ID == uuid.Nil {
		return portfolio.Owner{}, apperror.ErrUnauthorized
	}

	return owner, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, apperror.New(apperror.ErrCodeBadRequest, fmt.Sprintf("параметр %s отсутствует", paramName))
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// ParseKindParam разбирает название раздела из параметра пути.
func ParseKindParam(c *gin.Context, paramName string) (portfolio.Kind, error) {
	return portfolio.ParseKind(c.Param(paramName))
}

// BindJSON разбирает тело запроса. Ошибку разбора отдаём как ошибку валидации.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Validation("ошибка валидации запроса: " + err.Error())
	}
	return nil
}

// Fail передаёт ошибку в ErrorHandler.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// RespondJSON отправляет JSON с указанным статусом.
func RespondJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondOK отправляет 200 с данными.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondNoContent отправляет 204.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
