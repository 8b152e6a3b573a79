package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
)

// ErrorResponse: тело ответа с ошибкой.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// ErrorHandler отдаёт последнюю ошибку из c.Errors.
// AppError выдаётся клиенту как есть, всё остальное маскируется под внутреннюю ошибку.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := renderError(err)

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Debug("request rejected")
		}

		c.JSON(status, body)
	}
}

// abortWithError прерывает цепочку и сразу отвечает ошибкой.
func abortWithError(c *gin.Context, err error) {
	status, body := renderError(err)
	c.AbortWithStatusJSON(status, body)
}

func renderError(err error) (int, ErrorResponse) {
	if appErr, ok := apperror.As(err); ok {
		return appErr.HTTPStatus, ErrorResponse{
			Error:  appErr.Message,
			Code:   string(appErr.Code),
			Fields: appErr.Fields,
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error: "внутренняя ошибка сервера",
		Code:  string(apperror.ErrCodeInternal),
	}
}
