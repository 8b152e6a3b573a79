package models

// Категории навыков, предлагаемые в админке. Поле свободное, список только подсказка.
const (
	SkillCategoryFrontend = "Frontend"
	SkillCategoryBackend  = "Backend"
	SkillCategoryDatabase = "Database"
	SkillCategoryTools    = "Tools"
	SkillCategoryDesign   = "Design"
	SkillCategoryOther    = "Other"
)

// SkillCategories список категорий в порядке отображения.
var SkillCategories = []string{
	SkillCategoryFrontend,
	SkillCategoryBackend,
	SkillCategoryDatabase,
	SkillCategoryTools,
	SkillCategoryDesign,
	SkillCategoryOther,
}

// Границы уровня владения навыком.
const (
	MinProficiency     = 0
	MaxProficiency     = 100
	DefaultProficiency = 50
)

// Форматы работы для записей опыта.
const (
	LocationTypeRemote = "remote"
	LocationTypeOnsite = "onsite"
	LocationTypeHybrid = "hybrid"
)
