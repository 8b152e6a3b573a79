package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticResolver struct {
	token string
	owner portfolio.Owner
}

func (r staticResolver) Owner(token string) (portfolio.Owner, error) {
	if token != r.token {
		return portfolio.Owner{}, apperror.ErrSessionExpired
	}
	return r.owner, nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	owner := portfolio.Owner{ID: uuid.New(), Name: "Owner"}
	r := gin.New()
	r.GET("/me", AuthMiddleware(staticResolver{token: "good", owner: owner}), func(c *gin.Context) {
		got, _ := c.Get(ContextOwnerKey)
		c.JSON(http.StatusOK, got)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"не bearer", "Basic abc", http.StatusUnauthorized},
		{"чужой токен", "Bearer bad", http.StatusUnauthorized},
		{"валидный", "Bearer good", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, string(apperror.ErrCodeUnauthorized), decode(t, w).Code)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/validation", func(c *gin.Context) {
		_ = c.Error(apperror.MissingFields("title", "description"))
	})
	r.GET("/remote", func(c *gin.Context) {
		_ = c.Error(apperror.Remote(errors.New("dial tcp: refused"), "не удалось сохранить"))
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("sql: connection is already closed"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, []string{"title", "description"}, body.Fields)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/remote", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "не удалось сохранить", decode(t, w).Error)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "sql")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/contact", ContactRateLimit(2), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.DELETE("/skills/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/skills/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/skills/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
