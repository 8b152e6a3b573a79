package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// State: состояние слота загрузки.
type State int

const (
	Idle State = iota
	FileSelected
	Uploading
	Uploaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file_selected"
	case Uploading:
		return "uploading"
	case Uploaded:
		return "uploaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText позволяет отдавать состояние в JSON строкой.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Observer получает каждый переход слота.
type Observer func(spec Spec, from, to State)

// Option настраивает слот.
type Option func(*Slot)

// WithObserver подписывает наблюдателя на переходы.
func WithObserver(o Observer) Option {
	return func(s *Slot) { s.observers = append(s.observers, o) }
}

// WithClock подменяет источник времени для имени файла.
func WithClock(now func() time.Time) Option {
	return func(s *Slot) { s.now = now }
}

type staged struct {
	data        []byte
	contentType string
	ext         string
	name        string
	preview     *Preview
}

// Slot реализует конечный автомат загрузки одного файла:
// Idle → FileSelected → Uploading → Uploaded | Failed → Idle.
type Slot struct {
	mu        sync.Mutex
	spec      Spec
	state     State
	staged    *staged
	lastURL   string
	now       func() time.Time
	observers []Observer
}

// NewSlot создаёт слот в состоянии Idle.
func NewSlot(spec Spec, opts ...Option) *Slot {
	s := &Slot{spec: spec, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spec возвращает описание слота.
func (s *Slot) Spec() Spec {
	return s.spec
}

// State возвращает текущее состояние.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status: снимок слота для API.
type Status struct {
	Field      string `json:"field"`
	State      State  `json:"state"`
	FileName   string `json:"file_name,omitempty"`
	HasPreview bool   `json:"has_preview"`
	URL        string `json:"url,omitempty"`
}

// Status возвращает снимок слота.
func (s *Slot) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Field: s.spec.Field, State: s.state}
	if s.staged != nil {
		st.FileName = s.staged.name
		st.HasPreview = s.staged.preview != nil
	}
	if s.state == Uploaded {
		st.URL = s.lastURL
	}
	return st
}

// Select проверяет файл и переводит слот в FileSelected.
// Если файл не проходит по размеру или типу, слот остаётся Idle.
func (s *Slot) Select(f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Uploading {
		return apperror.New(apperror.ErrCodeConflict, "файл уже загружается")
	}
	if s.state != Idle {
		s.transition(Idle)
	}
	s.staged = nil

	if f.Size > s.spec.MaxBytes {
		return s.tooLarge()
	}
	if f.Reader == nil {
		return apperror.Validation("файл не выбран", s.spec.Field)
	}
	if !s.spec.Allows(f.ContentType) {
		return s.wrongType(f.ContentType)
	}

	data, err := io.ReadAll(io.LimitReader(f.Reader, s.spec.MaxBytes+1))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл")
	}
	if int64(len(data)) > s.spec.MaxBytes {
		return s.tooLarge()
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !s.spec.Allows(kind.MIME.Value) {
		return s.wrongType(kind.MIME.Value)
	}

	next := &staged{
		data:        data,
		contentType: kind.MIME.Value,
		ext:         kind.Extension,
		name:        f.Name,
	}
	if filetype.IsImage(data) {
		preview, err := makePreview(data, next.contentType)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"field": s.spec.Field,
				"error": err,
			}).Debug("upload: превью из исходного файла")
		}
		next.preview = preview
	}

	s.staged = next
	s.transition(FileSelected)
	return nil
}

// Preview возвращает превью выбранного файла.
func (s *Slot) Preview() (*Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged == nil || s.staged.preview == nil {
		return nil, false
	}
	return s.staged.preview, true
}

// Upload загружает выбранный файл по пути {owner}/{kind}-{unixMillis}.{ext}
// и возвращает публичную ссылку. При любой ошибке слот проходит Failed и возвращается в Idle.
func (s *Slot) Upload(ctx context.Context, blobs store.Blobs, owner uuid.UUID) (string, error) {
	s.mu.Lock()
	if s.state != FileSelected || s.staged == nil {
		s.mu.Unlock()
		return "", apperror.Validation("сначала выберите файл", s.spec.Field)
	}
	file := s.staged
	objectPath := fmt.Sprintf("%s/%s-%d.%s", owner, s.spec.Kind, s.now().UnixMilli(), file.ext)
	s.transition(Uploading)
	s.mu.Unlock()

	url, err := s.put(ctx, blobs, objectPath, file)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = nil
	if err != nil {
		s.transition(Failed)
		s.transition(Idle)

		logger.Log.WithFields(logrus.Fields{
			"owner_id": owner,
			"field":    s.spec.Field,
			"path":     objectPath,
			"error":    err,
		}).Error("upload: не удалось загрузить файл")

		return "", apperror.Remote(err, "не удалось загрузить файл, попробуйте ещё раз")
	}

	s.lastURL = url
	s.transition(Uploaded)
	return url, nil
}

func (s *Slot) put(ctx context.Context, blobs store.Blobs, objectPath string, file *staged) (string, error) {
	if err := blobs.Upload(ctx, s.spec.Bucket, objectPath, bytes.NewReader(file.data), file.contentType); err != nil {
		return "", err
	}

	url, err := blobs.PublicURL(s.spec.Bucket, objectPath)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", errors.New("upload: пустая публичная ссылка")
	}
	return url, nil
}

// Reset сбрасывает выбранный файл. Идущая загрузка не прерывается.
func (s *Slot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Uploading {
		return
	}
	s.staged = nil
	if s.state != Idle {
		s.transition(Idle)
	}
}

func (s *Slot) transition(to State) {
	from := s.state
	s.state = to
	for _, o := range s.observers {
		o(s.spec, from, to)
	}
}

func (s *Slot) tooLarge() error {
	return apperror.Validation(
		fmt.Sprintf("файл больше %d МБ", s.spec.MaxBytes>>20),
		s.spec.Field,
	)
}

func (s *Slot) wrongType(contentType string) error {
	if contentType == "" {
		contentType = "неизвестный"
	}
	return apperror.Validation(
		fmt.Sprintf("тип файла %s не поддерживается", contentType),
		s.spec.Field,
	)
}
