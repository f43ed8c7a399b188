package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

// TestWriter adapts a testing.T to io.Writer so log output shows up in
// test output only when the test fails or -v is set.
type TestWriter struct {
	T *testing.T
}

// Write implements io.Writer.
func (w TestWriter) Write(p []byte) (int, error) {
	w.T.Helper()
	w.T.Log(string(p))
	return len(p), nil
}

// NewTestLogger creates a logger that writes through the test's log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(TestWriter{T: t}).With().Timestamp().Logger()
}
