package ws

import (
	"context"
	"fmt"

	"stride/internal/models"
	"stride/internal/telemetry"
)

// Command is the closed set of administrative actions accepted over the
// real-time channel. Dispatch matches on this enum, not on raw strings, so
// a new command must be handled everywhere it is named.
type Command int

const (
	CommandClearLogs Command = iota
	CommandDatabaseStats
	CommandTestActivity
	CommandStressTest
)

// ParseCommand resolves a wire-level command name. Unknown names fail here,
// producing the explicit unknown-command response rather than a silent no-op.
func ParseCommand(name string) (Command, bool) {
	switch name {
	case "clear-logs":
		return CommandClearLogs, true
	case "get-database-stats":
		return CommandDatabaseStats, true
	case "test-activity":
		return CommandTestActivity, true
	case "stress-test":
		return CommandStressTest, true
	}
	return 0, false
}

// CommandResponse is the structured result echoed to the issuing admin.
type CommandResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// runCommand executes one admin command. Store access is the only operation
// here that waits on an external system.
func (s *Server) runCommand(ctx context.Context, name, payload string) CommandResponse {
	cmd, ok := ParseCommand(name)
	if !ok {
		return CommandResponse{Success: false, Error: "Unknown command"}
	}

	switch cmd {
	case CommandClearLogs:
		s.tele.Activity.Clear()
		return CommandResponse{Success: true, Message: "Logs cleared successfully"}

	case CommandDatabaseStats:
		if s.backend == nil {
			return CommandResponse{Success: false, Error: "Store unavailable"}
		}
		return CommandResponse{Success: true, Data: s.backend.DatabaseStatistics(ctx)}

	case CommandTestActivity:
		if payload == "" {
			payload = "No message"
		}
		s.tele.Activity.Add(models.ActivityRecord{
			Service: "TEST",
			Message: fmt.Sprintf("Test activity from admin dashboard: %s", payload),
			Type:    models.ActivityInfo,
		})
		return CommandResponse{Success: true, Message: "Test activity added"}

	case CommandStressTest:
		elapsed, _ := telemetry.StressCPU(telemetry.DefaultStressIterations)
		ms := elapsed.Milliseconds()
		s.tele.Activity.Add(models.ActivityRecord{
			Service: "TEST",
			Message: fmt.Sprintf("CPU stress test completed in %dms", ms),
			Type:    models.ActivityInfo,
		})
		return CommandResponse{Success: true, Message: fmt.Sprintf("Stress test completed in %dms", ms)}
	}

	// Unreachable: ParseCommand bounds cmd to the cases above.
	return CommandResponse{Success: false, Error: "Unknown command"}
}
