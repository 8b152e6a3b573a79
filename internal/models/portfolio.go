package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Record содержит служебные поля, общие для всех строк, принадлежащих владельцу.
type Record struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Profile описывает единственный профиль владельца сайта.
type Profile struct {
	Record
	Name      string         `db:"name" json:"name"`
	Titles    pq.StringArray `db:"titles" json:"titles"`
	Email     string         `db:"email" json:"email"`
	Phone     string         `db:"phone" json:"phone"`
	Address   string         `db:"address" json:"address"`
	Bio       string         `db:"bio" json:"bio"`
	AvatarURL string         `db:"avatar_url" json:"avatar_url"`
	CVURL     string         `db:"cv_url" json:"cv_url"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Skill описывает навык с уровнем владения от 0 до 100.
type Skill struct {
	Record
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Proficiency int       `db:"proficiency" json:"proficiency"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Project описывает работу в портфолио.
type Project struct {
	Record
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	ImageURL     string         `db:"image_url" json:"image_url"`
	DemoURL      string         `db:"demo_url" json:"demo_url"`
	GithubURL    string         `db:"github_url" json:"github_url"`
	Technologies pq.StringArray `db:"technologies" json:"technologies"`
	Featured     bool           `db:"featured" json:"featured"`
	Summary      string         `db:"summary" json:"summary"`
	KeyFeatures  pq.StringArray `db:"key_features" json:"key_features"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Experience описывает запись об опыте работы.
type Experience struct {
	Record
	Title          string         `db:"title" json:"title"`
	Company        string         `db:"company" json:"company"`
	Period         string         `db:"period" json:"period"`
	Description    string         `db:"description" json:"description"`
	Technologies   pq.StringArray `db:"technologies" json:"technologies"`
	CompanyLogoURL string         `db:"company_logo_url" json:"company_logo_url"`
	LocationType   string         `db:"location_type" json:"location_type"`
	TeamSize       string         `db:"team_size" json:"team_size"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Education описывает запись об образовании.
// Clubs хранится строкой через "|", в таком виде её заполняют в админке.
type Education struct {
	Record
	Title        string         `db:"title" json:"title"`
	Institution  string         `db:"institution" json:"institution"`
	Period       string         `db:"period" json:"period"`
	Description  string         `db:"description" json:"description"`
	KeySubjects  pq.StringArray `db:"key_subjects" json:"key_subjects"`
	Grade        string         `db:"grade" json:"grade"`
	FinalProject string         `db:"final_project" json:"final_project"`
	Clubs        string         `db:"clubs" json:"clubs"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ContactSubmission описывает сообщение из публичной формы обратной связи.
// UserID: владелец сайта, которому адресовано сообщение.
type ContactSubmission struct {
	Record
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
	Message string `db:"message" json:"message"`
}
