package sinew

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_BadLayerPanics(t *testing.T) {
	a := NewAnimator(newTestSkeleton(t), 2)
	a.SetDebugMode(true)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on SetSpeed with bad layer, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "SetSpeed") || !strings.Contains(msg, "out of range") {
			t.Errorf("panic message should name the call and the range, got: %s", msg)
		}
	}()

	a.SetSpeed(2, 1)
}

func TestDebugMode_BadSlotPanics(t *testing.T) {
	tree := NewBlendTree(newTestSkeleton(t), 2, AllBones)
	tree.SetDebugMode(true)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on Play with bad slot, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "slot 2") {
			t.Errorf("panic message should mention the slot, got: %s", msg)
		}
	}()

	tree.Play(2, 0, holdClip(t, "idle", 4, 0), 1, 0)
}

func TestReleaseMode_LogsAndIgnores(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	a := NewAnimator(newTestSkeleton(t), 1)
	a.SetSpeed(4, 2)

	if !strings.Contains(buf.String(), "sinew: SetSpeed: layer 4 out of range [0,1) (ignored)") {
		t.Errorf("unexpected log output: %q", buf.String())
	}
	assertNear(t, "layer 0 speed", a.Layer(0).Speed(), 1)
}

func TestDebugMode_EventOverflowWarning(t *testing.T) {
	a := NewAnimator(newTestSkeleton(t), 1)
	a.SetDebugMode(true)

	// Capture stderr output.
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	for i := 0; i <= MaxEvents; i++ {
		a.pushEvent(AnimationEvent{ID: i})
	}

	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "warning: event queue full") {
		t.Errorf("expected overflow warning in stderr, got: %q", output)
	}
}

func TestDebugCheckIndex(t *testing.T) {
	if !debugCheckIndex(true, "op", "layer", 0, 1) {
		t.Error("0 in [0,1) should pass")
	}
	log.SetOutput(&bytes.Buffer{})
	defer log.SetOutput(os.Stderr)
	if debugCheckIndex(false, "op", "layer", -1, 1) {
		t.Error("-1 should fail")
	}
}
