package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender renders entries exactly like ConsoleAppender but hands each line to tb.Log, which
// ties it to the running test and only prints it for failures or -v.
type testAppender struct {
	tb  testing.TB
	enc zapcore.Encoder
}

// NewTestAppender returns an appender that logs through tb.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb: tb, enc: newConsoleEncoder()}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	buf, err := tapp.enc.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	tapp.tb.Log(strings.TrimSuffix(buf.String(), zapcore.DefaultLineEnding))
	return nil
}

func (tapp *testAppender) Sync() error {
	return nil
}
