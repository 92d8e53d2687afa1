package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "darkchess.log")
	l, err := New(Options{Level: "info", Format: "json", ToFile: true, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("darkchess_move", zap.String("session_id", "s1"))
	l.Debug("dropped")
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"darkchess_move"`) || !strings.Contains(out, `"session_id":"s1"`) {
		t.Errorf("log output missing fields: %s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	Set(zap.NewExample())
	Set(nil)
	if L() == nil {
		t.Fatalf("L() returned nil")
	}
	L().Info("ignored")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "/tmp/x.log")
	o := OptionsFromEnv()
	if o.Level != "debug" || !o.ToFile || o.FilePath != "/tmp/x.log" || !o.Console {
		t.Errorf("OptionsFromEnv() = %+v", o)
	}
	if normalizeFormat(o.Format) != "json" {
		t.Errorf("normalizeFormat(%q) = %q, want json", o.Format, normalizeFormat(o.Format))
	}
}
