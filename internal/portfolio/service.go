package portfolio

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// Service служит точкой входа HTTP слоя: разделы, рабочие области владельцев и загрузки.
type Service struct {
	controllers map[Kind]Controller
	workspaces  *Workspaces
	blobs       store.Blobs
	notifier    Notifier
	slotOptions []upload.Option
}

// ServiceOption настраивает сервис.
type ServiceOption func(*Service)

// WithSlotOptions передаёт опции всем создаваемым слотам загрузки.
func WithSlotOptions(opts ...upload.Option) ServiceOption {
	return func(s *Service) { s.slotOptions = append(s.slotOptions, opts...) }
}

// NewService создаёт сервис портфолио.
func NewService(blobs store.Blobs, notifier Notifier, controllers []Controller, opts ...ServiceOption) *Service {
	s := &Service{
		controllers: make(map[Kind]Controller, len(controllers)),
		workspaces:  NewWorkspaces(),
		blobs:       blobs,
		notifier:    orNop(notifier),
	}
	for _, c := range controllers {
		s.controllers[c.Kind()] = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Controller возвращает раздел по виду.
func (s *Service) Controller(kind Kind) (Controller, error) {
	c, ok := s.controllers[kind]
	if !ok {
		return nil, apperror.ErrUnknownEntity
	}
	return c, nil
}

// Describe возвращает описание раздела.
func (s *Service) Describe(kind Kind) (Description, error) {
	c, err := s.Controller(kind)
	if err != nil {
		return Description{}, err
	}
	return c.Describe(), nil
}

// Public читает раздел для публичной страницы. Сообщения формы контактов не публичны.
func (s *Service) Public(ctx context.Context, owner uuid.UUID, kind Kind) (any, error) {
	if kind == KindContact {
		return nil, apperror.ErrUnknownEntity
	}
	c, err := s.Controller(kind)
	if err != nil {
		return nil, err
	}
	return c.Read(ctx, owner)
}

// List читает раздел для админки.
func (s *Service) List(ctx context.Context, owner Owner, kind Kind) (any, error) {
	c, err := s.Controller(kind)
	if err != nil {
		return nil, err
	}
	return c.Read(ctx, owner.ID)
}

// Form возвращает состояние формы раздела.
func (s *Service) Form(ctx context.Context, owner Owner, kind Kind) (FormView, error) {
	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return c.Open(ctx, ws, owner)
	})
}

// StartNew начинает черновик новой записи.
func (s *Service) StartNew(ctx context.Context, owner Owner, kind Kind) (FormView, error) {
	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return c.StartNew(ctx, ws, owner)
	})
}

// StartEdit открывает существующую запись на редактирование.
func (s *Service) StartEdit(ctx context.Context, owner Owner, kind Kind, id uuid.UUID) (FormView, error) {
	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return c.StartEdit(ctx, ws, owner, id)
	})
}

// Cancel отбрасывает несохранённые изменения.
func (s *Service) Cancel(owner Owner, kind Kind) (FormView, error) {
	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return c.Cancel(ws), nil
	})
}

// SetFields меняет поля формы. Профиль без открытой формы сначала
// загружается из хранилища, иначе upsert затрёт неотправленные поля.
func (s *Service) SetFields(ctx context.Context, owner Owner, kind Kind, values map[string]string) (FormView, error) {
	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return openAndSet(ctx, c, ws, owner, values)
	})
}

// Save сохраняет форму раздела.
func (s *Service) Save(ctx context.Context, owner Owner, kind Kind) (any, error) {
	c, err := s.Controller(kind)
	if err != nil {
		return nil, err
	}
	ws := s.workspaces.Get(owner.ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return c.Save(ctx, ws, owner)
}

// Delete удаляет запись раздела.
func (s *Service) Delete(ctx context.Context, owner Owner, kind Kind, id uuid.UUID) error {
	c, err := s.Controller(kind)
	if err != nil {
		return err
	}
	ws := s.workspaces.Get(owner.ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return c.Delete(ctx, ws, owner, id)
}

// SelectFile проверяет файл и кладёт его в слот загрузки поля.
func (s *Service) SelectFile(owner Owner, kind Kind, field string, file upload.File) (upload.Status, error) {
	slot, err := s.slot(owner, kind, field)
	if err != nil {
		return upload.Status{}, err
	}
	if err := slot.Select(file); err != nil {
		return slot.Status(), err
	}
	return slot.Status(), nil
}

// UploadStatus возвращает состояние слота загрузки.
func (s *Service) UploadStatus(owner Owner, kind Kind, field string) (upload.Status, error) {
	slot, err := s.slot(owner, kind, field)
	if err != nil {
		return upload.Status{}, err
	}
	return slot.Status(), nil
}

// Preview возвращает превью выбранного файла.
func (s *Service) Preview(owner Owner, kind Kind, field string) (*upload.Preview, error) {
	slot, err := s.slot(owner, kind, field)
	if err != nil {
		return nil, err
	}
	preview, ok := slot.Preview()
	if !ok {
		return nil, apperror.New(apperror.ErrCodeNotFound, "превью нет")
	}
	return preview, nil
}

// CommitUpload загружает выбранный файл и записывает ссылку в поле формы.
// Форма открывается до загрузки: если раздел не читается, файл не уходит в хранилище.
// При ошибке загрузки поле формы не меняется.
func (s *Service) CommitUpload(ctx context.Context, owner Owner, kind Kind, field string) (FormView, error) {
	slot, err := s.slot(owner, kind, field)
	if err != nil {
		return FormView{}, err
	}

	if _, err := s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return c.Open(ctx, ws, owner)
	}); err != nil {
		return FormView{}, err
	}

	url, err := slot.Upload(ctx, s.blobs, owner.ID)
	if err != nil {
		if apperror.IsRemote(err) {
			s.notifier.Notify(owner.ID, Notice{Level: LevelError, Entity: kind, Message: "Не удалось загрузить файл, попробуйте ещё раз"})
		}
		return FormView{}, err
	}

	view, err := s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		return openAndSet(ctx, c, ws, owner, map[string]string{field: url})
	})
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"entity":   kind,
			"owner_id": owner.ID,
			"field":    field,
			"url":      url,
			"error":    err,
		}).Error("portfolio: файл загружен, но ссылка не записана в форму")
		return FormView{}, err
	}

	s.notifier.Notify(owner.ID, Notice{Level: LevelSuccess, Entity: kind, Message: "Файл загружен"})
	return view, nil
}

// RemoveUpload очищает поле со ссылкой. Сам файл в хранилище остаётся.
func (s *Service) RemoveUpload(owner Owner, kind Kind, field string) (FormView, error) {
	slot, err := s.slot(owner, kind, field)
	if err != nil {
		return FormView{}, err
	}
	slot.Reset()

	return s.withForm(owner, kind, func(c Controller, ws *Workspace) (FormView, error) {
		if c.View(ws).Mode == ModeIdle {
			return FormView{}, apperror.Validation("нет активной формы", field)
		}
		return c.SetFields(ws, owner, map[string]string{field: ""})
	})
}

// EndSession забывает формы и слоты владельца.
func (s *Service) EndSession(owner uuid.UUID) {
	s.workspaces.Drop(owner)
}

// openAndSet пишет поля в форму, предварительно открыв её.
// Для обычных разделов Open ничего не читает.
func openAndSet(ctx context.Context, c Controller, ws *Workspace, owner Owner, values map[string]string) (FormView, error) {
	if _, err := c.Open(ctx, ws, owner); err != nil {
		return FormView{}, err
	}
	return c.SetFields(ws, owner, values)
}

func (s *Service) withForm(owner Owner, kind Kind, fn func(Controller, *Workspace) (FormView, error)) (FormView, error) {
	c, err := s.Controller(kind)
	if err != nil {
		return FormView{}, err
	}
	ws := s.workspaces.Get(owner.ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return fn(c, ws)
}

func (s *Service) slot(owner Owner, kind Kind, field string) (*upload.Slot, error) {
	c, err := s.Controller(kind)
	if err != nil {
		return nil, err
	}
	spec, ok := c.UploadSpec(field)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("поле %q не поддерживает загрузку файлов", field), field)
	}

	ws := s.workspaces.Get(owner.ID)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	opts := append([]upload.Option{
		upload.WithObserver(func(spec upload.Spec, _, to upload.State) {
			s.notifier.UploadChanged(owner.ID, kind, upload.Status{Field: spec.Field, State: to})
		}),
	}, s.slotOptions...)
	return ws.slot(kind, spec, opts...), nil
}
