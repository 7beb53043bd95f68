package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// newTestLogger returns a debug-level logger writing JSON into a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	l.Fatal("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("reader"))
	assert.NoError(t, l.Sync())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l, _ := newTestLogger(t)
	assert.Equal(t, l, OrNop(l))
}

func TestZapLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(Logger)
	}{
		{"debug", func(l Logger) { l.Debug("debug msg") }},
		{"info", func(l Logger) { l.Info("info msg") }},
		{"warn", func(l Logger) { l.Warn("warn msg") }},
		{"error", func(l Logger) { l.Error("error msg") }},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, buf := newTestLogger(t)
			tt.log(l)
			assert.Contains(t, buf.String(), tt.level+" msg")
			assert.Contains(t, buf.String(), "\"level\":\""+tt.level+"\"")
		})
	}
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	l.With(String(KeyVersion, "V2000")).Info("parsed",
		Line(4),
		Int(KeyAtoms, 2),
		Bool("relaxed", true),
		Duration("elapsed", time.Millisecond),
		Any(KeyBonds, []int{1, 2}),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "V2000", ctx[KeyVersion])
	assert.Equal(t, int64(4), ctx[KeyLine])
	assert.Equal(t, int64(2), ctx[KeyAtoms])
	assert.Equal(t, true, ctx["relaxed"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_Named(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewLoggerFromCore(core).Named("molfile").Info("x")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "molfile", logs.All()[0].LoggerName)
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(LevelError))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t)
	SetDefault(l)
	assert.Equal(t, l, Default())
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestField_String(t *testing.T) {
	assert.Equal(t, "line=3", Line(3).String())
}

//Personal.AI order the ending
