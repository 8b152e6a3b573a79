package portfolio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/textlist"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// FieldType: тип поля формы.
type FieldType string

const (
	FieldText FieldType = "text"
	FieldList FieldType = "list"
	FieldInt  FieldType = "int"
	FieldBool FieldType = "bool"
)

// Field описывает одно поле формы: как показать его текстом и как записать текст обратно.
type Field[T any] struct {
	Name      string
	Type      FieldType
	Required  bool
	Delimiter *textlist.Delimiter

	get       func(*T) string
	set       func(*T, string) error
	empty     func(*T) bool
	normalize func(*T)
	detach    func(*T)
}

func textField[T any](name string, ptr func(*T) *string) Field[T] {
	return Field[T]{
		Name:      name,
		Type:      FieldText,
		get:       func(t *T) string { return *ptr(t) },
		set:       func(t *T, v string) error { *ptr(t) = v; return nil },
		empty:     func(t *T) bool { return strings.TrimSpace(*ptr(t)) == "" },
		normalize: func(t *T) { *ptr(t) = strings.TrimSpace(*ptr(t)) },
	}
}

// delimitedField хранит список строкой, например клубы через "|".
func delimitedField[T any](name string, d textlist.Delimiter, ptr func(*T) *string) Field[T] {
	f := textField(name, ptr)
	f.Delimiter = &d
	f.set = func(t *T, v string) error { *ptr(t) = textlist.Normalize(v, d); return nil }
	f.empty = func(t *T) bool { return len(textlist.Split(*ptr(t), d)) == 0 }
	f.normalize = func(t *T) { *ptr(t) = textlist.Normalize(*ptr(t), d) }
	return f
}

func listField[T any](name string, d textlist.Delimiter, ptr func(*T) *pq.StringArray) Field[T] {
	return Field[T]{
		Name:      name,
		Type:      FieldList,
		Delimiter: &d,
		get:       func(t *T) string { return textlist.Join(*ptr(t), d) },
		set:       func(t *T, v string) error { *ptr(t) = textlist.Split(v, d); return nil },
		empty:     func(t *T) bool { return len(textlist.Clean(*ptr(t))) == 0 },
		normalize: func(t *T) { *ptr(t) = textlist.Clean(*ptr(t)) },
		detach: func(t *T) {
			p := ptr(t)
			*p = append(pq.StringArray{}, (*p)...)
		},
	}
}

func intField[T any](name string, lo, hi int, ptr func(*T) *int) Field[T] {
	return Field[T]{
		Name: name,
		Type: FieldInt,
		get:  func(t *T) string { return strconv.Itoa(*ptr(t)) },
		set: func(t *T, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < lo || n > hi {
				return apperror.Validation(fmt.Sprintf("%s: введите число от %d до %d", name, lo, hi), name)
			}
			*ptr(t) = n
			return nil
		},
		empty: func(*T) bool { return false },
	}
}

// boolField: пустое значение означает false.
func boolField[T any](name string, ptr func(*T) *bool) Field[T] {
	return Field[T]{
		Name: name,
		Type: FieldBool,
		get:  func(t *T) string { return strconv.FormatBool(*ptr(t)) },
		set: func(t *T, v string) error {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "", "false", "0", "off", "no":
				*ptr(t) = false
			case "true", "1", "on", "yes":
				*ptr(t) = true
			default:
				return apperror.Validation(fmt.Sprintf("%s: ожидается true или false", name), name)
			}
			return nil
		},
		empty: func(*T) bool { return false },
	}
}

func required[T any](f Field[T]) Field[T] {
	f.Required = true
	return f
}

// Schema описывает сущность портфолио целиком: таблицу, порядок, поля и слоты загрузки.
// По схеме работают общие читатель, форма и менеджер сохранения.
type Schema[T any] struct {
	Kind    Kind
	Order   store.Order
	Fields  []Field[T]
	Uploads []upload.Spec
	// Singleton: одна строка на владельца, сохраняется через upsert и не удаляется.
	Singleton bool
	// ReadOnly: строки создаются не через админку, форма недоступна.
	ReadOnly bool

	Record   func(*T) *models.Record
	Defaults func(Owner) T
}

// Field ищет поле по имени.
func (s *Schema[T]) Field(name string) (*Field[T], bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Upload ищет слот загрузки по имени поля.
func (s *Schema[T]) Upload(field string) (upload.Spec, bool) {
	for _, spec := range s.Uploads {
		if spec.Field == field {
			return spec, true
		}
	}
	return upload.Spec{}, false
}

// New возвращает пустой черновик владельца.
func (s *Schema[T]) New(owner Owner) T {
	var row T
	if s.Defaults != nil {
		row = s.Defaults(owner)
	}
	s.Record(&row).UserID = owner.ID
	return row
}

// Clone копирует строку вместе со списками, чтобы правки черновика не меняли оригинал.
func (s *Schema[T]) Clone(row T) T {
	c := row
	for _, f := range s.Fields {
		if f.detach != nil {
			f.detach(&c)
		}
	}
	return c
}

// Normalize приводит списки и текстовые поля к каноничному виду.
func (s *Schema[T]) Normalize(row *T) {
	for _, f := range s.Fields {
		if f.normalize != nil {
			f.normalize(row)
		}
	}
}

// Validate проверяет обязательные поля.
func (s *Schema[T]) Validate(row *T) error {
	var missing []string
	for _, f := range s.Fields {
		if f.Required && f.empty(row) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}
	return nil
}

// Values возвращает текстовое представление всех полей.
func (s *Schema[T]) Values(row *T) map[string]string {
	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Name] = f.get(row)
	}
	return values
}

// FieldInfo: описание поля для клиента админки.
type FieldInfo struct {
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	Delimiter string    `json:"delimiter,omitempty"`
	Upload    bool      `json:"upload,omitempty"`
}

// Describe возвращает описание полей схемы.
func (s *Schema[T]) Describe() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.Fields))
	for _, f := range s.Fields {
		info := FieldInfo{Name: f.Name, Type: f.Type, Required: f.Required}
		if f.Delimiter != nil {
			info.Delimiter = f.Delimiter.Sep
		}
		_, info.Upload = s.Upload(f.Name)
		out = append(out, info)
	}
	return out
}
