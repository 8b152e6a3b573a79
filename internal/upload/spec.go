package upload

import (
	"io"
	"strings"

	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// MaxBytes: наибольший потолок среди всех слотов.
const MaxBytes = 10 << 20

// Spec описывает слот загрузки: какое поле формы он заполняет, куда кладёт файл и что принимает.
type Spec struct {
	// Field: имя поля формы с публичной ссылкой.
	Field string
	// Kind: префикс имени файла в хранилище.
	Kind     string
	Bucket   string
	MaxBytes int64
	// Accept: разрешённые MIME типы, "image/*" разрешает любое изображение.
	Accept []string
}

// Слоты загрузки сущностей портфолио.
var (
	Avatar = Spec{
		Field:    "avatar_url",
		Kind:     "avatar",
		Bucket:   store.BucketImages,
		MaxBytes: 5 << 20,
		Accept:   []string{"image/*"},
	}
	CV = Spec{
		Field:    "cv_url",
		Kind:     "cv",
		Bucket:   store.BucketDocuments,
		MaxBytes: 10 << 20,
		Accept:   []string{"application/pdf"},
	}
	ProjectImage = Spec{
		Field:    "image_url",
		Kind:     "project",
		Bucket:   store.BucketImages,
		MaxBytes: 5 << 20,
		Accept:   []string{"image/*"},
	}
	CompanyLogo = Spec{
		Field:    "company_logo_url",
		Kind:     "logo",
		Bucket:   store.BucketImages,
		MaxBytes: 2 << 20,
		Accept:   []string{"image/*"},
	}
)

// Allows сообщает, разрешён ли MIME тип в слоте.
func (s Spec) Allows(contentType string) bool {
	contentType = normalizeMIME(contentType)
	if contentType == "" {
		return false
	}
	for _, pattern := range s.Accept {
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(contentType, prefix+"/") {
				return true
			}
			continue
		}
		if contentType == pattern {
			return true
		}
	}
	return false
}

// File: выбранный пользователем файл.
type File struct {
	Name        string
	ContentType string
	// Size: заявленный размер; -1, если неизвестен.
	Size   int64
	Reader io.Reader
}

func normalizeMIME(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
