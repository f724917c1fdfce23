package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestDefaultsSilent verifies that with no override the package does not
// panic and events go nowhere. (Environment switches are read once per
// process; tests exercise the Override path instead.)
func TestDefaultsSilent(t *testing.T) {
	restore := Override(false, false, nil)
	defer restore()

	if Debug() {
		t.Error("Debug() = true with debug off")
	}
	if Active() {
		t.Error("Active() = true with trace off")
	}

	// Must be a no-op, not a crash.
	Op("clone", 0x1234).Int("strong", 2).Send()
	CrossGoroutine(0x1234, 1, 2)
}

// TestOpEvent verifies that an enabled trace event carries the operation
// and slot fields.
func TestOpEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	restore := Override(true, true, &logger)
	defer restore()

	if !Debug() || !Active() {
		t.Fatal("Override did not enable debug/trace")
	}

	Op("borrow_mut", 0xabcd).Int("readers", 0).Send()

	out := buf.String()
	t.Logf("event: %s", out)
	for _, want := range []string{`"op":"borrow_mut"`, `"slot":"0xabcd"`, `"readers":0`} {
		if !strings.Contains(out, want) {
			t.Errorf("event missing %s: %s", want, out)
		}
	}
}

// TestCrossGoroutineWarning verifies the warning fields.
func TestCrossGoroutineWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	restore := Override(true, true, &logger)
	defer restore()

	CrossGoroutine(0x99, 5, 7)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"owner_goroutine":5`,
		`"current_goroutine":7`,
		"non-owner goroutine",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("warning missing %s: %s", want, out)
		}
	}
}

// TestOverrideRestores verifies that the restore function puts the
// previous switches back.
func TestOverrideRestores(t *testing.T) {
	restoreOuter := Override(false, false, nil)
	defer restoreOuter()

	restore := Override(true, true, nil)
	if !Debug() {
		t.Fatal("inner override did not enable debug")
	}
	restore()

	if Debug() || Active() {
		t.Error("restore did not reset switches")
	}
}
