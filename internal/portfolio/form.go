package portfolio

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
)

// Mode: активный слот формы.
type Mode int

const (
	// ModeIdle: формы нет.
	ModeIdle Mode = iota
	// ModeNew: черновик новой записи.
	ModeNew
	// ModeEditing: копия существующей записи с её исходным идентификатором.
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeNew:
		return "new"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Form хранит состояние редактирования одного раздела:
// Idle, NewDraft(draft) или Editing(draft, originalID). Не потокобезопасна,
// доступ сериализует Workspace.
type Form[T any] struct {
	schema     *Schema[T]
	mode       Mode
	draft      T
	originalID uuid.UUID
}

// NewForm создаёт пустую форму.
func NewForm[T any](schema *Schema[T]) *Form[T] {
	return &Form[T]{schema: schema}
}

func (f *Form[T]) Mode() Mode {
	return f.mode
}

// OriginalID возвращает идентификатор редактируемой записи.
func (f *Form[T]) OriginalID() (uuid.UUID, bool) {
	return f.originalID, f.mode == ModeEditing
}

// Draft возвращает копию черновика.
func (f *Form[T]) Draft() (T, bool) {
	if f.mode == ModeIdle {
		var zero T
		return zero, false
	}
	return f.schema.Clone(f.draft), true
}

// StartNew начинает черновик новой записи, отбрасывая текущий.
func (f *Form[T]) StartNew(owner Owner) error {
	if f.schema.ReadOnly {
		return f.readOnly()
	}
	f.mode = ModeNew
	f.draft = f.schema.New(owner)
	f.originalID = uuid.Nil
	return nil
}

// StartEdit копирует запись в форму. Правки не затрагивают переданную строку.
func (f *Form[T]) StartEdit(row T) error {
	if f.schema.ReadOnly {
		return f.readOnly()
	}
	f.mode = ModeEditing
	f.draft = f.schema.Clone(row)
	f.originalID = f.schema.Record(&row).ID
	return nil
}

// Cancel отбрасывает все несохранённые изменения.
func (f *Form[T]) Cancel() {
	var zero T
	f.mode = ModeIdle
	f.draft = zero
	f.originalID = uuid.Nil
}

// SetField записывает текстовое значение поля. Списки разбираются сразу,
// поэтому черновик всегда хранит каноничный массив.
// Если формы нет, начинается новый черновик.
func (f *Form[T]) SetField(owner Owner, name, value string) error {
	return f.SetFields(owner, map[string]string{name: value})
}

// SetFields записывает несколько полей сразу. При ошибке черновик не меняется.
func (f *Form[T]) SetFields(owner Owner, values map[string]string) error {
	if f.schema.ReadOnly {
		return f.readOnly()
	}

	names := make([]string, 0, len(values))
	for name := range values {
		if _, ok := f.schema.Field(name); !ok {
			return apperror.Validation(fmt.Sprintf("неизвестное поле %q", name), name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	mode := f.mode
	draft := f.schema.New(owner)
	if mode == ModeIdle {
		mode = ModeNew
	} else {
		draft = f.schema.Clone(f.draft)
	}

	for _, name := range names {
		field, _ := f.schema.Field(name)
		if err := field.set(&draft, values[name]); err != nil {
			return err
		}
	}

	f.mode = mode
	f.draft = draft
	return nil
}

// Text возвращает поле в том виде, в котором его показывает поле ввода.
func (f *Form[T]) Text(name string) (string, error) {
	field, ok := f.schema.Field(name)
	if !ok {
		return "", apperror.Validation(fmt.Sprintf("неизвестное поле %q", name), name)
	}
	return field.get(&f.draft), nil
}

// Values возвращает текстовое представление всех полей черновика.
func (f *Form[T]) Values() map[string]string {
	if f.mode == ModeIdle {
		return map[string]string{}
	}
	return f.schema.Values(&f.draft)
}

func (f *Form[T]) readOnly() error {
	return apperror.New(apperror.ErrCodeForbidden, fmt.Sprintf("раздел %s только для чтения", f.schema.Kind))
}
