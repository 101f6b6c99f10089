package ws

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/telemetry"
)

type fakeBackend struct {
	stats store.DatabaseStats
}

func (f *fakeBackend) DatabaseStatistics(ctx context.Context) store.DatabaseStats {
	return f.stats
}

func (f *fakeBackend) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	return &models.Notification{ID: id, UserID: userID, IsRead: true}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tele := telemetry.New()
	hub := NewHub(tele, testLogger(t))
	return NewServer(hub, tele, nil, &fakeBackend{stats: store.DatabaseStats{Users: 7}}, testLogger(t))
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name string
		want Command
		ok   bool
	}{
		{"clear-logs", CommandClearLogs, true},
		{"get-database-stats", CommandDatabaseStats, true},
		{"test-activity", CommandTestActivity, true},
		{"stress-test", CommandStressTest, true},
		{"restart-server", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		cmd, ok := ParseCommand(tc.name)
		if ok != tc.ok {
			t.Fatalf("ParseCommand(%q) ok = %v, want %v", tc.name, ok, tc.ok)
		}
		if ok && cmd != tc.want {
			t.Fatalf("ParseCommand(%q) = %v, want %v", tc.name, cmd, tc.want)
		}
	}
}

func TestUnknownCommandFailsExplicitly(t *testing.T) {
	s := newTestServer(t)
	resp := s.runCommand(context.Background(), "reboot", "")
	if resp.Success {
		t.Fatalf("unknown command reported success")
	}
	if resp.Error != "Unknown command" {
		t.Fatalf("expected Unknown command error, got %q", resp.Error)
	}
}

func TestClearLogsCommandEmptiesFeed(t *testing.T) {
	s := newTestServer(t)
	s.tele.Activity.Add(models.ActivityRecord{Service: "API", Message: "event", Type: models.ActivityInfo})

	resp := s.runCommand(context.Background(), "clear-logs", "")
	if !resp.Success {
		t.Fatalf("clear-logs failed: %+v", resp)
	}
	if s.tele.Activity.Len() != 0 {
		t.Fatalf("activity feed not cleared: %d entries", s.tele.Activity.Len())
	}
}

func TestDatabaseStatsCommandReturnsData(t *testing.T) {
	s := newTestServer(t)
	resp := s.runCommand(context.Background(), "get-database-stats", "")
	if !resp.Success {
		t.Fatalf("get-database-stats failed: %+v", resp)
	}
	stats, ok := resp.Data.(store.DatabaseStats)
	if !ok {
		t.Fatalf("expected DatabaseStats payload, got %T", resp.Data)
	}
	if stats.Users != 7 {
		t.Fatalf("expected user count 7, got %d", stats.Users)
	}
}

func TestTestActivityCommandFeedsLog(t *testing.T) {
	s := newTestServer(t)
	resp := s.runCommand(context.Background(), "test-activity", "hello")
	if !resp.Success {
		t.Fatalf("test-activity failed: %+v", resp)
	}
	recent := s.tele.Activity.Recent(1)
	if len(recent) != 1 || recent[0].Service != "TEST" {
		t.Fatalf("expected TEST activity, got %+v", recent)
	}
}

func TestStressTestCommandCompletes(t *testing.T) {
	s := newTestServer(t)
	resp := s.runCommand(context.Background(), "stress-test", "")
	if !resp.Success {
		t.Fatalf("stress-test failed: %+v", resp)
	}
	if resp.Message == "" {
		t.Fatalf("expected elapsed-time message")
	}
}

func TestAdminCommandRequiresAdminRole(t *testing.T) {
	s := newTestServer(t)
	user := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)

	s.handleMessage(user, inbound{Type: "admin-command", Command: "clear-logs"})

	select {
	case env := <-user.send:
		if env.Type != "command-response" {
			t.Fatalf("expected command-response, got %q", env.Type)
		}
		resp, ok := env.Data.(CommandResponse)
		if !ok {
			t.Fatalf("unexpected payload type %T", env.Data)
		}
		if resp.Success || resp.Error != "Admin connection required" {
			t.Fatalf("expected admin-required rejection, got %+v", resp)
		}
	default:
		t.Fatalf("no response queued for non-admin command attempt")
	}
}

func TestPingGetsPong(t *testing.T) {
	s := newTestServer(t)
	c := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)

	s.handleMessage(c, inbound{Type: "ping"})

	select {
	case env := <-c.send:
		if env.Type != "pong" {
			t.Fatalf("expected pong, got %q", env.Type)
		}
	default:
		t.Fatalf("no pong queued")
	}
}

func TestLogActivityDefaultsServiceAndKind(t *testing.T) {
	s := newTestServer(t)
	c := newClient("c-1", models.RoleUser, "u1", "127.0.0.1", nil)

	s.handleMessage(c, inbound{Type: "log-activity", Message: "client event"})

	recent := s.tele.Activity.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(recent))
	}
	if recent[0].Service != "CLIENT" || recent[0].Type != models.ActivityInfo {
		t.Fatalf("defaults not applied: %+v", recent[0])
	}
}
