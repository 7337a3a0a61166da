// Package testutil holds helpers shared by package and integration tests.
package testutil

import (
	"fmt"
	"sync"
)

// RecordingLogger keeps formatted messages by level. It satisfies
// calculation.Logger and is safe for concurrent use.
type RecordingLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (r *RecordingLogger) record(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages == nil {
		r.messages = make(map[string][]string)
	}
	r.messages[level] = append(r.messages[level], msg)
}

// Messages returns a copy of what was logged at level ("debug", "info",
// "warn" or "error").
func (r *RecordingLogger) Messages(level string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages[level]...)
}

func (r *RecordingLogger) Debugf(format string, args ...any) { r.record("debug", format, args...) }
func (r *RecordingLogger) Infof(format string, args ...any)  { r.record("info", format, args...) }
func (r *RecordingLogger) Warnf(format string, args ...any)  { r.record("warn", format, args...) }
func (r *RecordingLogger) Errorf(format string, args ...any) { r.record("error", format, args...) }
