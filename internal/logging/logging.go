// Package logging writes structured JSON log lines, one object per line.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	out    io.Writer      = os.Stdout
	loc    *time.Location = time.UTC
	logger                = log.New(os.Stdout, "", 0)
)

// SetOutput redirects log lines; tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = log.New(w, "", 0)
}

// SetLocation sets the timezone used for the ts field.
func SetLocation(l *time.Location) {
	if l == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	loc = l
}

// Location returns the configured timezone.
func Location() *time.Location {
	mu.Lock()
	defer mu.Unlock()
	return loc
}

// Writer returns the current output.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// JSON writes data as a single line. ts is always set; level defaults to
// "error" when status is "error" and "info" otherwise.
func JSON(data map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		logger.Printf("failed to marshal log line: %v", err)
		return
	}
	logger.Println(string(b))
}

// Info logs an informational event for a component.
func Info(component, event string, fields map[string]any) {
	JSON(merge(component, event, "info", fields))
}

// Warn logs a degraded-but-handled condition.
func Warn(component, event string, fields map[string]any) {
	JSON(merge(component, event, "warn", fields))
}

// Error logs a failure.
func Error(component, event string, err error, fields map[string]any) {
	data := merge(component, event, "error", fields)
	data["status"] = "error"
	if err != nil {
		data["error_message"] = err.Error()
	}
	JSON(data)
}

func merge(component, event, level string, fields map[string]any) map[string]any {
	data := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		data[k] = v
	}
	data["component"] = component
	data["event"] = event
	data["level"] = level
	return data
}
