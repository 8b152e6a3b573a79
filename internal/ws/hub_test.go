package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/portfolio-backend/internal/portfolio"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "канал клиента закрыт")
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("событие не пришло")
		return Event{}
	}
}

func TestNotifier_DeliversToOwnerTabsOnly(t *testing.T) {
	hub := startHub(t)
	owner, stranger := uuid.New(), uuid.New()

	tab1 := NewClient(nil, hub, owner)
	tab2 := NewClient(nil, hub, owner)
	other := NewClient(nil, hub, stranger)
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.Connected(owner) == 2 }, time.Second, time.Millisecond)

	n := NewNotifier(hub)
	n.Invalidated(owner, portfolio.KindSkills)

	for _, tab := range []*Client{tab1, tab2} {
		ev := receive(t, tab)
		assert.Equal(t, EventInvalidate, ev.Type)
		assert.Equal(t, map[string]any{"entity": "skills"}, ev.Data)
	}
	assert.Empty(t, other.send)
}

func TestNotifier_EventShapes(t *testing.T) {
	hub := startHub(t)
	owner := uuid.New()
	tab := NewClient(nil, hub, owner)
	hub.Register(tab)

	n := NewNotifier(hub)
	n.Notify(owner, portfolio.Notice{Level: portfolio.LevelError, Entity: portfolio.KindProjects, Message: "не удалось сохранить"})
	n.UploadChanged(owner, portfolio.KindProfile, upload.Status{Field: "avatar_url", State: upload.Uploading})

	notice := receive(t, tab)
	assert.Equal(t, EventNotice, notice.Type)
	assert.Equal(t, map[string]any{"level": "error", "entity": "projects", "message": "не удалось сохранить"}, notice.Data)

	up := receive(t, tab)
	assert.Equal(t, EventUpload, up.Type)
	data := up.Data.(map[string]any)
	assert.Equal(t, "profile", data["entity"])
	assert.Equal(t, "avatar_url", data["field"])
	assert.Equal(t, "uploading", data["state"])
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	owner := uuid.New()
	tab := NewClient(nil, hub, owner)
	hub.Register(tab)
	hub.Unregister(tab)

	require.Eventually(t, func() bool { return hub.Connected(owner) == 0 }, time.Second, time.Millisecond)
	_, ok := <-tab.send
	assert.False(t, ok)

	// повторное удаление не паникует
	hub.Unregister(tab)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	tab := NewClient(nil, hub, uuid.New())
	hub.Register(tab)
	hub.Unregister(tab)

	_, ok := <-tab.send
	assert.False(t, ok)
}
