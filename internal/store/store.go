package store

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда строка не найдена (или не принадлежит владельцу).
var ErrNotFound = errors.New("store: row not found")

// Таблицы хранилища.
const (
	TableProfiles           = "profiles"
	TableSkills             = "skills"
	TableProjects           = "projects"
	TableExperience         = "experience"
	TableEducation          = "education"
	TableContactSubmissions = "contact_submissions"
)

// Бакеты файлового хранилища.
const (
	BucketImages    = "portfolio-images"
	BucketDocuments = "portfolio-documents"
)

// Filter ограничивает выборку строками владельца. uuid.Nil отключает фильтр.
type Filter struct {
	OwnerID uuid.UUID
}

// ByOwner возвращает фильтр по владельцу.
func ByOwner(ownerID uuid.UUID) Filter {
	return Filter{OwnerID: ownerID}
}

// Order задаёт сортировку выборки.
type Order struct {
	Column    string
	Ascending bool
}

// Table: операции хранилища над одной таблицей.
type Table[T any] interface {
	Query(ctx context.Context, filter Filter, order Order) ([]T, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, id uuid.UUID, filter Filter, row *T) error
	Upsert(ctx context.Context, row *T) error
	Delete(ctx context.Context, id uuid.UUID, filter Filter) error
}

// Blobs: файловое хранилище с публичными ссылками.
type Blobs interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error
	PublicURL(bucket, path string) (string, error)
}
