package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerIsSingletonPerComponent(t *testing.T) {
	t.Setenv("WARDEN_HOME", t.TempDir())

	a := NewLogger("test-component-a")
	b := NewLogger("test-component-a")
	if a != b {
		t.Error("expected the same entry for repeated NewLogger calls")
	}

	c := NewLogger("test-component-b")
	if a == c {
		t.Error("expected distinct entries for distinct components")
	}
}

func TestNewLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("WARDEN_HOME", t.TempDir())
	t.Setenv("WARDEN_LOG_LEVEL", "debug")

	entry := NewLogger("test-component-level")
	if entry.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", entry.Logger.GetLevel())
	}
}
