package sinew

import (
	"errors"
	"testing"
	"testing/fstest"
)

const heroSet = `
skeleton: hero
fade_duration: 0.1
layers:
  - name: base
  - name: upper
    subtrees: [spine]
blend_trees:
  - name: locomotion
    bones: [root, leg]
    blends:
      - {clip: idle, value: 0}
      - {clip: walk, value: 1}
      - {clip: run, value: 2, speed: 1.5}
`

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary()
	lib.AddSkeleton(newTestSkeleton(t))
	for _, c := range []*Clip{
		holdClip(t, "idle", 4, 0),
		holdClip(t, "walk", 4, 10),
		holdClip(t, "run", 4, 20),
	} {
		if err := lib.AddClip(c, "hero"); err != nil {
			t.Fatal(err)
		}
	}
	return lib
}

func TestLoadAnimationSet(t *testing.T) {
	set, err := LoadAnimationSet([]byte(heroSet))
	if err != nil {
		t.Fatalf("LoadAnimationSet: %v", err)
	}
	if set.Skeleton != "hero" || set.FadeDuration == nil || *set.FadeDuration != 0.1 {
		t.Errorf("set = %+v", set)
	}
	if len(set.Layers) != 2 || set.LayerIndex("upper") != 1 || set.LayerIndex("nope") != -1 {
		t.Errorf("layers = %+v", set.Layers)
	}
	if bt := set.BlendTrees[0]; len(bt.Blends) != 3 || bt.Blends[2].Speed != 1.5 {
		t.Errorf("blend tree = %+v", bt)
	}
}

func TestAnimationSetNewAnimator(t *testing.T) {
	set, err := LoadAnimationSet([]byte(heroSet))
	if err != nil {
		t.Fatal(err)
	}
	a, err := set.NewAnimator(newTestLibrary(t))
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	if a.LayerCount() != 2 {
		t.Errorf("LayerCount = %d", a.LayerCount())
	}
	assertNear(t, "fade", a.FadeDuration(), 0.1)
	if a.Layer(0).Mask() != AllBones {
		t.Errorf("base mask = %b", a.Layer(0).Mask())
	}
	if m := a.Layer(1).Mask(); m != BoneMask(0).With(1).With(2) {
		t.Errorf("upper mask = %b", m)
	}
}

func TestAnimationSetNewBlendTree(t *testing.T) {
	set, err := LoadAnimationSet([]byte(heroSet))
	if err != nil {
		t.Fatal(err)
	}
	lib := newTestLibrary(t)
	tree, err := set.NewBlendTree(lib, "locomotion")
	if err != nil {
		t.Fatalf("NewBlendTree: %v", err)
	}
	if tree.BlendCount() != 3 || !tree.IsPlaying() {
		t.Errorf("tree count %d playing %v", tree.BlendCount(), tree.IsPlaying())
	}
	if tree.Mask() != BoneMask(0).With(0).With(3) {
		t.Errorf("mask = %b", tree.Mask())
	}
	assertNear(t, "run value", tree.ChildValue(2), 2)
	assertNear(t, "run speed", tree.Child(2).Layer(0).Speed(), 1.5)
	assertNear(t, "walk speed", tree.Child(1).Layer(0).Speed(), 1)

	a, _ := set.NewAnimator(lib)
	tree.SetValue(1.5)
	tree.Update(0.016, 1, a)
	assertNear(t, "root x", a.LocalTransforms()[0].Position.X, 15)

	if _, err := set.NewBlendTree(lib, "swim"); err == nil {
		t.Error("unknown tree should fail")
	}
}

func TestAnimationSetErrors(t *testing.T) {
	lib := newTestLibrary(t)
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown bone", "skeleton: hero\nlayers:\n  - {name: a, bones: [tail]}\n", ErrUnknownBone},
		{"unknown subtree", "skeleton: hero\nlayers:\n  - {name: a, subtrees: [tail]}\n", ErrUnknownBone},
		{"unknown clip", "skeleton: hero\nblend_trees:\n  - name: t\n    blends: [{clip: swim}]\n", ErrUnknownClip},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			set, err := LoadAnimationSet([]byte(c.yaml))
			if err != nil {
				t.Fatal(err)
			}
			_, errA := set.NewAnimator(lib)
			_, errT := set.NewBlendTree(lib, "t")
			if !errors.Is(errA, c.want) && !errors.Is(errT, c.want) {
				t.Errorf("errors = %v / %v, want %v", errA, errT, c.want)
			}
		})
	}

	for _, bad := range []string{
		"skeleton: [",
		"fade_duration: 1\n",
		"skeleton: hero\nlayers: [{name: a}, {name: b}, {name: c}]\n",
		"skeleton: hero\nblend_trees:\n  - name: t\n    blends: [{clip: a}, {clip: b}, {clip: c}, {clip: d}]\n",
	} {
		if _, err := LoadAnimationSet([]byte(bad)); err == nil {
			t.Errorf("LoadAnimationSet(%q) should fail", bad)
		}
	}

	set, _ := LoadAnimationSet([]byte("skeleton: ghost\n"))
	if _, err := set.NewAnimator(lib); err == nil {
		t.Error("unknown skeleton should fail")
	}
}

func TestLoadAnimationSetFS(t *testing.T) {
	fsys := fstest.MapFS{"sets/hero.yaml": {Data: []byte(heroSet)}}
	set, err := LoadAnimationSetFS(fsys, "sets/hero.yaml")
	if err != nil {
		t.Fatalf("LoadAnimationSetFS: %v", err)
	}
	if set.Skeleton != "hero" {
		t.Errorf("skeleton = %q", set.Skeleton)
	}
	if _, err := LoadAnimationSetFS(fsys, "sets/missing.yaml"); err == nil {
		t.Error("missing file should fail")
	}
}
