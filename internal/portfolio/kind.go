package portfolio

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
)

// Kind: раздел портфолио.
type Kind string

const (
	KindProfile    Kind = "profile"
	KindSkills     Kind = "skills"
	KindProjects   Kind = "projects"
	KindExperience Kind = "experience"
	KindEducation  Kind = "education"
	KindContact    Kind = "contact"
)

// Kinds перечисляет разделы в порядке страницы.
var Kinds = []Kind{KindProfile, KindSkills, KindProjects, KindExperience, KindEducation, KindContact}

// ParseKind разбирает имя раздела из URL.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperror.ErrUnknownEntity
}

// Owner: аутентифицированный владелец, от имени которого выполняются операции админки.
type Owner struct {
	ID    uuid.UUID
	Email string
	Name  string
}
