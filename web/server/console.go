package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger mirrors render progress to the server log and to a browser console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf logs an info message
func (wl *WebLogger) Printf(format string, args ...any) {
	wl.send("info", fmt.Sprintf(format, args...))
}

// Warnf logs a warning message
func (wl *WebLogger) Warnf(format string, args ...any) {
	wl.send("warning", fmt.Sprintf(format, args...))
}

func (wl *WebLogger) send(level, message string) {
	entry := logs.WithTag("render_id", wl.renderID)
	if level == "warning" {
		entry.Warn(strings.TrimSpace(message))
	} else {
		entry.Info(strings.TrimSpace(message))
	}

	// Never block rendering on a slow browser
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     level,
		}:
		default:
		}
	}
}
