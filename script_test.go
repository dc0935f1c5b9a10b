package sinew

import (
	"errors"
	"testing"
)

type clipMap map[string]*Clip

func (m clipMap) Clip(name string) *Clip { return m[name] }

func TestLoadPlaybackScript(t *testing.T) {
	r, err := LoadPlaybackScript([]byte(`{"steps":[{"action":"wait","frames":3}]}`))
	if err != nil {
		t.Fatalf("LoadPlaybackScript: %v", err)
	}
	if r.Done() {
		t.Error("new runner should not be done")
	}
}

func TestLoadPlaybackScriptErrors(t *testing.T) {
	for _, bad := range []string{
		`not json`,
		`{"steps":[]}`,
		`{"steps":[{"action":"dance"}]}`,
		`{"steps":[{"action":"play"}]}`,
	} {
		if _, err := LoadPlaybackScript([]byte(bad)); err == nil {
			t.Errorf("LoadPlaybackScript(%s) should fail", bad)
		}
	}
}

func TestPlaybackRunnerSequence(t *testing.T) {
	skel := newTestSkeleton(t)
	clips := clipMap{"step": stepClip(t, 4, ClipLooping)}
	legs := BoneMask(0).With(skel.BoneIndex("leg"))
	tree := newLocomotionTree(t, skel, legs)
	a := NewAnimator(skel, 1)

	r, err := LoadPlaybackScript([]byte(`{"steps":[
		{"action":"play","clip":"step","loop":true},
		{"action":"update","dt":0.05,"frames":3},
		{"action":"seek","at":0.5},
		{"action":"value","value":1.5},
		{"action":"wait","frames":2}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	steps := 0
	for !r.Done() {
		if err := r.Step(a, tree, clips); err != nil {
			t.Fatalf("step %d: %v", steps, err)
		}
		steps++
		if steps == 4 {
			assertNear(t, "time after updates", a.Time(0), 0.15)
			// The tree wrote the legs after the animator.
			assertNear(t, "leg x", a.LocalTransforms()[3].Position.X, 0)
		}
		if steps > 100 {
			t.Fatal("runner never finished")
		}
	}
	if steps != 8 {
		t.Errorf("steps = %d, want 8", steps)
	}
	assertNear(t, "seek time", a.Time(0), 0.1)
	assertNear(t, "tree value", tree.Value(), 1.5)

	// Finished runners do nothing.
	if err := r.Step(a, tree, clips); err != nil {
		t.Error(err)
	}
}

func TestPlaybackRunnerUnknownClip(t *testing.T) {
	r, err := LoadPlaybackScript([]byte(`{"steps":[{"action":"play","clip":"swim"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	a := NewAnimator(newTestSkeleton(t), 1)
	if err := r.Step(a, nil, clipMap{}); !errors.Is(err, ErrUnknownClip) {
		t.Errorf("err = %v, want ErrUnknownClip", err)
	}
}

func TestPlaybackRunnerDeterministic(t *testing.T) {
	skel := newTestSkeleton(t)
	clips := clipMap{
		"step": stepClip(t, 4, ClipLooping),
		"run":  holdClip(t, "run", 4, 10),
	}
	script := []byte(`{"steps":[
		{"action":"play","clip":"step","loop":true},
		{"action":"update","frames":10},
		{"action":"play","clip":"run","loop":true,"speed":1.2},
		{"action":"update","frames":5}
	]}`)

	replay := func() []Affine {
		r, err := LoadPlaybackScript(script)
		if err != nil {
			t.Fatal(err)
		}
		a := NewAnimator(skel, 1)
		for !r.Done() {
			if err := r.Step(a, nil, clips); err != nil {
				t.Fatal(err)
			}
		}
		return append([]Affine(nil), a.WorldMatrices()...)
	}
	first, second := replay(), replay()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("bone %d differs between replays", i)
		}
	}
}
