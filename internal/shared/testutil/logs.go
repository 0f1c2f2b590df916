// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is a captured log record with its attributes flattened.
// Group names prefix keys with a dot.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logStore is shared by a recorder and every handler derived from it
type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecorder is a slog.Handler that keeps every record in memory
type LogRecorder struct {
	store  *logStore
	attrs  []slog.Attr
	prefix string
	t      testing.TB
}

// NewLogRecorder returns a recorder and a logger writing to it. Records
// are echoed to t.Log when t is not nil.
func NewLogRecorder(t testing.TB) (*LogRecorder, *slog.Logger) {
	r := &LogRecorder{store: &logStore{}, t: t}
	return r, slog.New(r)
}

// Enabled implements slog.Handler; every level is captured
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		flatten(attrs, "", a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		flatten(attrs, r.prefix, a)
		return true
	})

	r.store.mu.Lock()
	r.store.records = append(r.store.records, LogRecord{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	r.store.mu.Unlock()

	if r.t != nil {
		r.t.Logf("[%s] %s %v", rec.Level, rec.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *r
	next.attrs = append(append([]slog.Attr{}, r.attrs...), prefixed(r.prefix, attrs)...)
	return &next
}

// WithGroup implements slog.Handler
func (r *LogRecorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	next := *r
	next.prefix = r.prefix + name + "."
	return &next
}

// Records returns a copy of the captured records
func (r *LogRecorder) Records() []LogRecord {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]LogRecord(nil), r.store.records...)
}

// Find returns the first record whose message contains msg
func (r *LogRecorder) Find(msg string) (LogRecord, bool) {
	for _, rec := range r.Records() {
		if strings.Contains(rec.Message, msg) {
			return rec, true
		}
	}
	return LogRecord{}, false
}

// AtLevel returns the records logged at level
func (r *LogRecorder) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, rec := range r.Records() {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range v.Group() {
			flatten(dst, p, g)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}
