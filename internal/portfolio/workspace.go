package portfolio

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// Workspace: формы и слоты загрузки одного владельца.
// Все изменения форм идут под mu, поэтому у владельца в каждый момент
// выполняется не больше одной операции сохранения.
type Workspace struct {
	mu    sync.Mutex
	owner uuid.UUID
	forms map[Kind]any
	slots map[string]*upload.Slot
}

func newWorkspace(owner uuid.UUID) *Workspace {
	return &Workspace{
		owner: owner,
		forms: make(map[Kind]any),
		slots: make(map[string]*upload.Slot),
	}
}

// formFor возвращает форму раздела, создавая её при первом обращении.
func formFor[T any](ws *Workspace, schema *Schema[T]) *Form[T] {
	if f, ok := ws.forms[schema.Kind].(*Form[T]); ok {
		return f
	}
	f := NewForm(schema)
	ws.forms[schema.Kind] = f
	return f
}

func (ws *Workspace) slot(kind Kind, spec upload.Spec, opts ...upload.Option) *upload.Slot {
	key := string(kind) + "/" + spec.Field
	if s, ok := ws.slots[key]; ok {
		return s
	}
	s := upload.NewSlot(spec, opts...)
	ws.slots[key] = s
	return s
}

// Workspaces хранит рабочие области всех владельцев.
type Workspaces struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Workspace
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{items: make(map[uuid.UUID]*Workspace)}
}

// Get возвращает рабочую область владельца.
func (w *Workspaces) Get(owner uuid.UUID) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws, ok := w.items[owner]
	if !ok {
		ws = newWorkspace(owner)
		w.items[owner] = ws
	}
	return ws
}

// Drop забывает рабочую область владельца, например при выходе.
func (w *Workspaces) Drop(owner uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.items, owner)
}
