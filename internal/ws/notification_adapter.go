package ws

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// События, которые получает админка.
const (
	EventNotice     = "notice"
	EventInvalidate = "invalidate"
	EventUpload     = "upload"
)

// InvalidatePayload сообщает, что раздел нужно перечитать.
type InvalidatePayload struct {
	Entity portfolio.Kind `json:"entity"`
}

// UploadPayload описывает смену состояния слота загрузки.
type UploadPayload struct {
	Entity portfolio.Kind `json:"entity"`
	upload.Status
}

// Notifier доставляет уведомления портфолио через хаб.
type Notifier struct {
	hub *Hub
}

var _ portfolio.Notifier = (*Notifier)(nil)

// NewNotifier создаёт адаптер хаба под portfolio.Notifier.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) Notify(owner uuid.UUID, notice portfolio.Notice) {
	_ = n.hub.BroadcastToUser(owner, EventNotice, notice)
}

func (n *Notifier) Invalidated(owner uuid.UUID, kind portfolio.Kind) {
	_ = n.hub.BroadcastToUser(owner, EventInvalidate, InvalidatePayload{Entity: kind})
}

func (n *Notifier) UploadChanged(owner uuid.UUID, kind portfolio.Kind, status upload.Status) {
	_ = n.hub.BroadcastToUser(owner, EventUpload, UploadPayload{Entity: kind, Status: status})
}
