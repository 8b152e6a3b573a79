package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/store"
)

const ownerColumn = "user_id"

var (
	ProfileTable = TableSpec{
		Name:           store.TableProfiles,
		Columns:        []string{ownerColumn, "name", "titles", "email", "phone", "address", "bio", "avatar_url", "cv_url"},
		OwnerColumn:    ownerColumn,
		ConflictColumn: ownerColumn,
		Timestamps:     true,
		Sortable:       []string{"created_at"},
	}

	SkillTable = TableSpec{
		Name:        store.TableSkills,
		Columns:     []string{ownerColumn, "name", "category", "proficiency"},
		OwnerColumn: ownerColumn,
		Timestamps:  true,
		Sortable:    []string{"created_at", "category", "name"},
	}

	ProjectTable = TableSpec{
		Name: store.TableProjects,
		Columns: []string{
			ownerColumn, "title", "description", "image_url", "demo_url", "github_url",
			"technologies", "featured", "summary", "key_features",
		},
		OwnerColumn: ownerColumn,
		Timestamps:  true,
		Sortable:    []string{"created_at", "title"},
	}

	ExperienceTable = TableSpec{
		Name: store.TableExperience,
		Columns: []string{
			ownerColumn, "title", "company", "period", "description", "technologies",
			"company_logo_url", "location_type", "team_size",
		},
		OwnerColumn: ownerColumn,
		Timestamps:  true,
		Sortable:    []string{"created_at"},
	}

	EducationTable = TableSpec{
		Name: store.TableEducation,
		Columns: []string{
			ownerColumn, "title", "institution", "period", "description", "key_subjects",
			"grade", "final_project", "clubs",
		},
		OwnerColumn: ownerColumn,
		Timestamps:  true,
		Sortable:    []string{"created_at"},
	}

	ContactSubmissionTable = TableSpec{
		Name:        store.TableContactSubmissions,
		Columns:     []string{ownerColumn, "name", "email", "message"},
		OwnerColumn: ownerColumn,
		Sortable:    []string{"created_at"},
	}
)

// Tables объединяет репозитории всех сущностей портфолио.
type Tables struct {
	Profiles    *Table[models.Profile]
	Skills      *Table[models.Skill]
	Projects    *Table[models.Project]
	Experience  *Table[models.Experience]
	Education   *Table[models.Education]
	Submissions *Table[models.ContactSubmission]
}

// NewTables создаёт репозитории всех таблиц портфолио.
func NewTables(db *sqlx.DB) *Tables {
	return &Tables{
		Profiles:    NewTable(db, ProfileTable, func(p *models.Profile) *models.Record { return &p.Record }),
		Skills:      NewTable(db, SkillTable, func(s *models.Skill) *models.Record { return &s.Record }),
		Projects:    NewTable(db, ProjectTable, func(p *models.Project) *models.Record { return &p.Record }),
		Experience:  NewTable(db, ExperienceTable, func(e *models.Experience) *models.Record { return &e.Record }),
		Education:   NewTable(db, EducationTable, func(e *models.Education) *models.Record { return &e.Record }),
		Submissions: NewTable(db, ContactSubmissionTable, func(c *models.ContactSubmission) *models.Record { return &c.Record }),
	}
}
