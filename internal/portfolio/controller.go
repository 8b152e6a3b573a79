package portfolio

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// FormView: состояние формы для API.
type FormView struct {
	Entity     Kind              `json:"entity"`
	Mode       Mode              `json:"mode"`
	OriginalID *uuid.UUID        `json:"original_id,omitempty"`
	Values     map[string]string `json:"values"`
	Draft      any               `json:"draft,omitempty"`
}

// Description: описание раздела для клиента админки.
type Description struct {
	Entity    Kind        `json:"entity"`
	Singleton bool        `json:"singleton"`
	ReadOnly  bool        `json:"read_only"`
	Fields    []FieldInfo `json:"fields"`
}

// Controller представляет раздел портфолио без параметра типа, чтобы HTTP слой
// мог работать со всеми разделами одинаково. Методы с Workspace
// вызываются под ws.mu.
type Controller interface {
	Kind() Kind
	Describe() Description
	UploadSpec(field string) (upload.Spec, bool)

	// Read возвращает записи владельца: профиль одним объектом, остальные списком.
	Read(ctx context.Context, owner uuid.UUID) (any, error)
	Invalidate(owner uuid.UUID)

	View(ws *Workspace) FormView
	Open(ctx context.Context, ws *Workspace, owner Owner) (FormView, error)
	StartNew(ctx context.Context, ws *Workspace, owner Owner) (FormView, error)
	StartEdit(ctx context.Context, ws *Workspace, owner Owner, id uuid.UUID) (FormView, error)
	Cancel(ws *Workspace) FormView
	SetFields(ws *Workspace, owner Owner, values map[string]string) (FormView, error)
	Save(ctx context.Context, ws *Workspace, owner Owner) (any, error)
	Delete(ctx context.Context, ws *Workspace, owner Owner, id uuid.UUID) error
}

// Entity связывает схему, читателя и менеджер раздела.
type Entity[T any] struct {
	schema  *Schema[T]
	reader  *Reader[T]
	manager *Manager[T]
}

var _ Controller = (*Entity[models.Skill])(nil)

// NewEntity собирает раздел поверх таблицы хранилища.
func NewEntity[T any](schema *Schema[T], table store.Table[T], cache *ReadCache, notifier Notifier) *Entity[T] {
	reader := NewReader(schema, table, cache)
	return &Entity[T]{
		schema:  schema,
		reader:  reader,
		manager: NewManager(schema, table, reader, notifier),
	}
}

func (e *Entity[T]) Kind() Kind { return e.schema.Kind }

func (e *Entity[T]) Describe() Description {
	return Description{
		Entity:    e.schema.Kind,
		Singleton: e.schema.Singleton,
		ReadOnly:  e.schema.ReadOnly,
		Fields:    e.schema.Describe(),
	}
}

func (e *Entity[T]) UploadSpec(field string) (upload.Spec, bool) {
	return e.schema.Upload(field)
}

func (e *Entity[T]) Read(ctx context.Context, owner uuid.UUID) (any, error) {
	rows, err := e.rows(ctx, owner)
	if err != nil {
		return nil, err
	}
	if e.schema.Singleton {
		if len(rows) == 0 {
			return nil, apperror.ErrEntityNotFound
		}
		return rows[0], nil
	}
	return rows, nil
}

func (e *Entity[T]) Invalidate(owner uuid.UUID) {
	e.reader.Invalidate(owner)
}

func (e *Entity[T]) View(ws *Workspace) FormView {
	form := formFor(ws, e.schema)
	view := FormView{Entity: e.schema.Kind, Mode: form.Mode(), Values: form.Values()}
	if id, ok := form.OriginalID(); ok {
		view.OriginalID = &id
	}
	if draft, ok := form.Draft(); ok {
		view.Draft = draft
	}
	return view
}

// Open возвращает форму. Для профиля при первом открытии форма заполняется
// сохранённой записью или черновиком с именем и email владельца.
func (e *Entity[T]) Open(ctx context.Context, ws *Workspace, owner Owner) (FormView, error) {
	form := formFor(ws, e.schema)
	if !e.schema.Singleton || form.Mode() != ModeIdle {
		return e.View(ws), nil
	}

	rows, err := e.rows(ctx, owner.ID)
	if err != nil {
		return FormView{}, err
	}
	if len(rows) > 0 {
		err = form.StartEdit(rows[0])
	} else {
		err = form.StartNew(owner)
	}
	if err != nil {
		return FormView{}, err
	}
	return e.View(ws), nil
}

func (e *Entity[T]) StartNew(ctx context.Context, ws *Workspace, owner Owner) (FormView, error) {
	if e.schema.Singleton {
		return e.Open(ctx, ws, owner)
	}
	if err := formFor(ws, e.schema).StartNew(owner); err != nil {
		return FormView{}, err
	}
	return e.View(ws), nil
}

func (e *Entity[T]) StartEdit(ctx context.Context, ws *Workspace, owner Owner, id uuid.UUID) (FormView, error) {
	rows, err := e.rows(ctx, owner.ID)
	if err != nil {
		return FormView{}, err
	}
	for _, row := range rows {
		if e.schema.Record(&row).ID == id {
			if err := formFor(ws, e.schema).StartEdit(row); err != nil {
				return FormView{}, err
			}
			return e.View(ws), nil
		}
	}
	return FormView{}, apperror.ErrEntityNotFound
}

func (e *Entity[T]) Cancel(ws *Workspace) FormView {
	formFor(ws, e.schema).Cancel()
	return e.View(ws)
}

func (e *Entity[T]) SetFields(ws *Workspace, owner Owner, values map[string]string) (FormView, error) {
	if err := formFor(ws, e.schema).SetFields(owner, values); err != nil {
		return FormView{}, err
	}
	return e.View(ws), nil
}

func (e *Entity[T]) Save(ctx context.Context, ws *Workspace, owner Owner) (any, error) {
	row, err := e.manager.Save(ctx, owner, formFor(ws, e.schema))
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (e *Entity[T]) Delete(ctx context.Context, ws *Workspace, owner Owner, id uuid.UUID) error {
	return e.manager.Delete(ctx, owner, formFor(ws, e.schema), id)
}

func (e *Entity[T]) rows(ctx context.Context, owner uuid.UUID) ([]T, error) {
	res := e.reader.Fetch(ctx, owner)
	if res.Status == StatusFailed {
		return nil, apperror.Remote(res.Err, "не удалось загрузить раздел, попробуйте позже")
	}
	return res.Data, nil
}
