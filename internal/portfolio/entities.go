package portfolio

import (
	"github.com/lib/pq"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/textlist"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

var newestFirst = store.Order{Column: "created_at"}

// ProfileSchema: профиль, единственный на владельца.
func ProfileSchema() *Schema[models.Profile] {
	return &Schema[models.Profile]{
		Kind:      KindProfile,
		Order:     newestFirst,
		Singleton: true,
		Fields: []Field[models.Profile]{
			required(textField("name", func(p *models.Profile) *string { return &p.Name })),
			listField("titles", textlist.Newline, func(p *models.Profile) *pq.StringArray { return &p.Titles }),
			textField("email", func(p *models.Profile) *string { return &p.Email }),
			textField("phone", func(p *models.Profile) *string { return &p.Phone }),
			textField("address", func(p *models.Profile) *string { return &p.Address }),
			textField("bio", func(p *models.Profile) *string { return &p.Bio }),
			textField("avatar_url", func(p *models.Profile) *string { return &p.AvatarURL }),
			textField("cv_url", func(p *models.Profile) *string { return &p.CVURL }),
		},
		Uploads: []upload.Spec{upload.Avatar, upload.CV},
		Record:  func(p *models.Profile) *models.Record { return &p.Record },
		Defaults: func(o Owner) models.Profile {
			return models.Profile{Name: o.Name, Email: o.Email, Titles: pq.StringArray{}}
		},
	}
}

func SkillSchema() *Schema[models.Skill] {
	return &Schema[models.Skill]{
		Kind:  KindSkills,
		Order: store.Order{Column: "category", Ascending: true},
		Fields: []Field[models.Skill]{
			required(textField("name", func(s *models.Skill) *string { return &s.Name })),
			required(textField("category", func(s *models.Skill) *string { return &s.Category })),
			intField("proficiency", models.MinProficiency, models.MaxProficiency, func(s *models.Skill) *int { return &s.Proficiency }),
		},
		Record: func(s *models.Skill) *models.Record { return &s.Record },
		Defaults: func(Owner) models.Skill {
			return models.Skill{Proficiency: models.DefaultProficiency}
		},
	}
}

func ProjectSchema() *Schema[models.Project] {
	return &Schema[models.Project]{
		Kind:  KindProjects,
		Order: newestFirst,
		Fields: []Field[models.Project]{
			required(textField("title", func(p *models.Project) *string { return &p.Title })),
			required(textField("description", func(p *models.Project) *string { return &p.Description })),
			textField("image_url", func(p *models.Project) *string { return &p.ImageURL }),
			textField("demo_url", func(p *models.Project) *string { return &p.DemoURL }),
			textField("github_url", func(p *models.Project) *string { return &p.GithubURL }),
			listField("technologies", textlist.Comma, func(p *models.Project) *pq.StringArray { return &p.Technologies }),
			boolField("featured", func(p *models.Project) *bool { return &p.Featured }),
			textField("summary", func(p *models.Project) *string { return &p.Summary }),
			listField("key_features", textlist.Newline, func(p *models.Project) *pq.StringArray { return &p.KeyFeatures }),
		},
		Uploads: []upload.Spec{upload.ProjectImage},
		Record:  func(p *models.Project) *models.Record { return &p.Record },
		Defaults: func(Owner) models.Project {
			return models.Project{Technologies: pq.StringArray{}, KeyFeatures: pq.StringArray{}}
		},
	}
}

func ExperienceSchema() *Schema[models.Experience] {
	return &Schema[models.Experience]{
		Kind:  KindExperience,
		Order: newestFirst,
		Fields: []Field[models.Experience]{
			required(textField("title", func(e *models.Experience) *string { return &e.Title })),
			required(textField("company", func(e *models.Experience) *string { return &e.Company })),
			textField("period", func(e *models.Experience) *string { return &e.Period }),
			textField("description", func(e *models.Experience) *string { return &e.Description }),
			listField("technologies", textlist.Comma, func(e *models.Experience) *pq.StringArray { return &e.Technologies }),
			textField("company_logo_url", func(e *models.Experience) *string { return &e.CompanyLogoURL }),
			textField("location_type", func(e *models.Experience) *string { return &e.LocationType }),
			textField("team_size", func(e *models.Experience) *string { return &e.TeamSize }),
		},
		Uploads: []upload.Spec{upload.CompanyLogo},
		Record:  func(e *models.Experience) *models.Record { return &e.Record },
		Defaults: func(Owner) models.Experience {
			return models.Experience{Technologies: pq.StringArray{}, LocationType: models.LocationTypeRemote}
		},
	}
}

func EducationSchema() *Schema[models.Education] {
	return &Schema[models.Education]{
		Kind:  KindEducation,
		Order: newestFirst,
		Fields: []Field[models.Education]{
			required(textField("title", func(e *models.Education) *string { return &e.Title })),
			required(textField("institution", func(e *models.Education) *string { return &e.Institution })),
			textField("period", func(e *models.Education) *string { return &e.Period }),
			textField("description", func(e *models.Education) *string { return &e.Description }),
			listField("key_subjects", textlist.Comma, func(e *models.Education) *pq.StringArray { return &e.KeySubjects }),
			textField("grade", func(e *models.Education) *string { return &e.Grade }),
			textField("final_project", func(e *models.Education) *string { return &e.FinalProject }),
			delimitedField("clubs", textlist.Pipe, func(e *models.Education) *string { return &e.Clubs }),
		},
		Record: func(e *models.Education) *models.Record { return &e.Record },
		Defaults: func(Owner) models.Education {
			return models.Education{KeySubjects: pq.StringArray{}}
		},
	}
}

// ContactSchema: сообщения из публичной формы. В админке их можно только читать и удалять.
func ContactSchema() *Schema[models.ContactSubmission] {
	return &Schema[models.ContactSubmission]{
		Kind:     KindContact,
		Order:    newestFirst,
		ReadOnly: true,
		Fields: []Field[models.ContactSubmission]{
			required(textField("name", func(c *models.ContactSubmission) *string { return &c.Name })),
			required(textField("email", func(c *models.ContactSubmission) *string { return &c.Email })),
			required(textField("message", func(c *models.ContactSubmission) *string { return &c.Message })),
		},
		Record: func(c *models.ContactSubmission) *models.Record { return &c.Record },
	}
}
