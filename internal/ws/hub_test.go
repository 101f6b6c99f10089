package ws

import (
	"path/filepath"
	"testing"

	"stride/internal/models"
	"stride/internal/telemetry"
	"stride/internal/utils"
)

func testLogger(t *testing.T) *utils.Logger {
	t.Helper()
	l := utils.NewLogger(filepath.Join(t.TempDir(), "test.log"))
	t.Cleanup(l.Close)
	return l
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(telemetry.New(), testLogger(t))
}

func TestHubRegisterUnregisterCounts(t *testing.T) {
	h := newTestHub(t)

	admin := newClient("admin-1", models.RoleAdmin, "a1", "127.0.0.1", nil)
	user := newClient("user-1", models.RoleUser, "u1", "127.0.0.1", nil)

	h.register(admin)
	h.register(user)

	if h.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", h.ClientCount())
	}
	if h.AdminCount() != 1 {
		t.Fatalf("expected 1 admin, got %d", h.AdminCount())
	}

	h.unregister(user)
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", h.ClientCount())
	}
}

func TestHubUnregisterTriggersDisconnectHook(t *testing.T) {
	h := newTestHub(t)

	fired := 0
	h.OnDisconnect(func() { fired++ })

	c := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)
	h.register(c)
	h.unregister(c)

	if fired != 1 {
		t.Fatalf("expected disconnect hook once, got %d", fired)
	}

	// Unregistering an unknown client must not fire the hook again.
	h.unregister(c)
	if fired != 1 {
		t.Fatalf("hook fired for already-removed client: %d", fired)
	}
}

func TestHubRecordsConnectionActivity(t *testing.T) {
	tele := telemetry.New()
	h := NewHub(tele, testLogger(t))

	c := newClient("abcdef123456", models.RoleAdmin, "a1", "127.0.0.1", nil)
	h.register(c)
	h.unregister(c)

	recent := tele.Activity.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("expected connect+disconnect activity, got %d entries", len(recent))
	}
	if recent[0].Service != "ADMIN_WEBSOCKET" {
		t.Fatalf("expected ADMIN_WEBSOCKET service, got %q", recent[0].Service)
	}
}

func TestEmitAdminSkipsUsers(t *testing.T) {
	h := newTestHub(t)

	admin := newClient("admin-1", models.RoleAdmin, "a1", "127.0.0.1", nil)
	user := newClient("user-1", models.RoleUser, "u1", "127.0.0.1", nil)
	h.register(admin)
	h.register(user)

	h.EmitAdmin("system-metrics", nil)

	if len(admin.send) != 1 {
		t.Fatalf("expected admin to receive broadcast, queue has %d", len(admin.send))
	}
	if len(user.send) != 0 {
		t.Fatalf("user received admin broadcast")
	}
}

func TestEmitUserTargetsAllConnectionsOfUser(t *testing.T) {
	h := newTestHub(t)

	first := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)
	second := newClient("c-2", models.RoleUser, "u1", "127.0.0.1", nil)
	other := newClient("c-3", models.RoleUser, "u2", "127.0.0.1", nil)
	h.register(first)
	h.register(second)
	h.register(other)

	sent := h.EmitUser("u1", "new_notification", nil)
	if sent != 2 {
		t.Fatalf("expected delivery on 2 connections, got %d", sent)
	}
	if len(other.send) != 0 {
		t.Fatalf("notification leaked to another user")
	}
}

func TestEmitUserNoConnections(t *testing.T) {
	h := newTestHub(t)
	if sent := h.EmitUser("missing", "new_notification", nil); sent != 0 {
		t.Fatalf("expected 0 deliveries, got %d", sent)
	}
}

func TestTrySendDropsWhenBufferFull(t *testing.T) {
	c := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)

	for i := 0; i < sendBuffer; i++ {
		if !c.trySend(Envelope{Type: "pong"}) {
			t.Fatalf("send %d rejected before buffer full", i)
		}
	}
	if c.trySend(Envelope{Type: "pong"}) {
		t.Fatalf("expected drop on full buffer")
	}
}

func TestEmitAfterCloseAllIsSafe(t *testing.T) {
	h := newTestHub(t)

	first := newClient("admin-1", models.RoleAdmin, "a1", "127.0.0.1", nil)
	second := newClient("admin-2", models.RoleAdmin, "a2", "127.0.0.1", nil)
	user := newClient("user-1", models.RoleUser, "u1", "127.0.0.1", nil)
	h.register(first)
	h.register(second)
	h.register(user)

	h.CloseAll()

	if h.ClientCount() != 0 {
		t.Fatalf("expected empty registry after CloseAll, got %d", h.ClientCount())
	}

	// Shutdown-ordering race: a broadcast can arrive between CloseAll and
	// the read pumps winding down. It must find no registered peers rather
	// than a closed send channel.
	h.EmitAdmin("system-metrics", nil)
	if sent := h.EmitUser("u1", "new_notification", nil); sent != 0 {
		t.Fatalf("delivery reported on closed connection: %d", sent)
	}

	// The read pumps still unregister on exit; that must be a no-op now and
	// must not fire the disconnect hook again.
	fired := 0
	h.OnDisconnect(func() { fired++ })
	h.unregister(first)
	if fired != 0 {
		t.Fatalf("disconnect hook fired for client already removed by CloseAll")
	}
}

func TestHubEntries(t *testing.T) {
	h := newTestHub(t)
	c := newClient("c-1", models.RoleUser, "u1", "10.0.0.5", nil)
	h.register(c)

	entries := h.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "c-1" || entries[0].RemoteAddr != "10.0.0.5" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}
