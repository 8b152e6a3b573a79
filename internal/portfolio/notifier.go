package portfolio

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// Level: тип уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice: уведомление пользователю админки.
type Notice struct {
	Level   Level  `json:"level"`
	Entity  Kind   `json:"entity"`
	Message string `json:"message"`
}

// Notifier доставляет уведомления владельцу. Реализация не должна блокироваться.
type Notifier interface {
	Notify(owner uuid.UUID, notice Notice)
	Invalidated(owner uuid.UUID, kind Kind)
	UploadChanged(owner uuid.UUID, kind Kind, status upload.Status)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uuid.UUID, Notice) {}

func (nopNotifier) Invalidated(uuid.UUID, Kind) {}

func (nopNotifier) UploadChanged(uuid.UUID, Kind, upload.Status) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
