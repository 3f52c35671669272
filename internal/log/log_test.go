package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })

	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, c := range cases {
		SetLevel(c.in)
		assert.Equal(t, c.expected, zapLevel.Level(), "SetLevel(%q)", c.in)
	}
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(level, format string, args ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Debugf(format string, args ...any) { r.record("DEBUG", format, args...) }
func (r *recordingLogger) Infof(format string, args ...any)  { r.record("INFO", format, args...) }
func (r *recordingLogger) Warnf(format string, args ...any)  { r.record("WARN", format, args...) }
func (r *recordingLogger) Errorf(format string, args ...any) { r.record("ERROR", format, args...) }
func (r *recordingLogger) Fatalf(format string, args ...any) { r.record("FATAL", format, args...) }

func TestHelpersDelegateToDefault(t *testing.T) {
	rec := &recordingLogger{}
	old := Default
	Default = rec
	t.Cleanup(func() { Default = old })

	Debugf("reading %s", "a.pdf")
	Infof("exported %d rows", 2)
	Warnf("w")
	Errorf("e: %v", "boom")

	assert.Equal(t, []string{
		"DEBUG reading a.pdf",
		"INFO exported 2 rows",
		"WARN w",
		"ERROR e: boom",
	}, rec.lines)
}
