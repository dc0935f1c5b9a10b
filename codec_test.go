package sinew

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

const epsilon32 = 1e-5

func assertNear32(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon32 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func encodeSkeleton(t testing.TB, skel *Skeleton) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteSkeleton(&buf, skel); err != nil {
		t.Fatalf("WriteSkeleton: %v", err)
	}
	return buf.Bytes()
}

func encodeClip(t testing.TB, clip *Clip) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteClip(&buf, clip); err != nil {
		t.Fatalf("WriteClip: %v", err)
	}
	return buf.Bytes()
}

func TestSkeletonRoundTrip(t *testing.T) {
	skel := newTestSkeleton(t)
	data := encodeSkeleton(t, skel)
	if string(data[:4]) != "SKEL" {
		t.Fatalf("magic = %q", data[:4])
	}

	got, err := ReadSkeleton(bytes.NewReader(data), "hero")
	if err != nil {
		t.Fatalf("ReadSkeleton: %v", err)
	}
	if got.BoneCount() != skel.BoneCount() {
		t.Fatalf("BoneCount = %d", got.BoneCount())
	}
	for i := 0; i < skel.BoneCount(); i++ {
		want, b := skel.Bone(i), got.Bone(i)
		if b.Name != want.Name || b.Parent != want.Parent {
			t.Errorf("bone %d = %s/%d, want %s/%d", i, b.Name, b.Parent, want.Name, want.Parent)
		}
		assertNear32(t, b.Name+" x", b.Local.Position.X, want.Local.Position.X)
		assertNear32(t, b.Name+" y", b.Local.Position.Y, want.Local.Position.Y)
		assertNear32(t, b.Name+" rot", b.Local.Rotation, want.Local.Rotation)
		assertNear32(t, b.Name+" length", b.Length, want.Length)
		for k := range b.BindWorldToLocal {
			assertNear32(t, b.Name+" bind", b.BindWorldToLocal[k], want.BindWorldToLocal[k])
			assertNear32(t, b.Name+" bind inverse", b.BindLocalToWorld[k], want.BindLocalToWorld[k])
		}
	}
}

func TestReadSkeletonRejectsChildBeforeParent(t *testing.T) {
	data := encodeSkeleton(t, newTestSkeleton(t))
	// The parent byte follows the bone name.
	i := bytes.Index(data, []byte("spine")) + len("spine")
	data[i] = 2

	_, err := ReadSkeleton(bytes.NewReader(data), "hero")
	if !errors.Is(err, ErrInvalidSkeleton) {
		t.Errorf("err = %v, want ErrInvalidSkeleton", err)
	}
}

func TestReadSkeletonErrors(t *testing.T) {
	data := encodeSkeleton(t, newTestSkeleton(t))

	if _, err := ReadSkeleton(bytes.NewReader(data[:20]), "short"); err == nil {
		t.Error("truncated stream should fail")
	}

	bad := append([]byte("ANIM"), data[4:]...)
	if _, err := ReadSkeleton(bytes.NewReader(bad), "magic"); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}

	ver := append([]byte(nil), data...)
	ver[4] = 9
	if _, err := ReadSkeleton(bytes.NewReader(ver), "version"); err == nil {
		t.Error("unknown version should fail")
	}
}

func TestClipRoundTrip(t *testing.T) {
	skel := newTestSkeleton(t)
	f0 := posRow(0, 1, 2, 3)
	f1 := rotRow(0.5, -1, 2, 3.1)
	frames := append(f0, f1...)
	clip, err := NewClip("wave", 24, 2, 4, frames, ClipLooping|ClipRootMotion,
		ClipEvent{Frame: 1, ID: 300})
	if err != nil {
		t.Fatal(err)
	}

	got, err := ReadClip(bytes.NewReader(encodeClip(t, clip)), "wave", skel)
	if err != nil {
		t.Fatalf("ReadClip: %v", err)
	}
	if got.FrameCount() != 2 || got.BoneCount() != 4 || got.FrameRate() != 24 {
		t.Errorf("header = %d frames, %d bones, %v fps", got.FrameCount(), got.BoneCount(), got.FrameRate())
	}
	if got.Flags() != clip.Flags() {
		t.Errorf("flags = %v", got.Flags())
	}
	if ev := got.Events(); len(ev) != 1 || ev[0] != (ClipEvent{Frame: 1, ID: 300}) {
		t.Errorf("events = %v", ev)
	}
	for f := 0; f < 2; f++ {
		for b := 0; b < 4; b++ {
			w, g := clip.Transform(f, b), got.Transform(f, b)
			assertNear32(t, "x", g.Position.X, w.Position.X)
			assertNear32(t, "rot", g.Rotation, w.Rotation)
			assertNear32(t, "scale", g.Scale.X, w.Scale.X)
		}
	}
}

func TestReadClipBoneCountMismatch(t *testing.T) {
	data := encodeClip(t, holdClip(t, "small", 2, 0))
	_, err := ReadClip(bytes.NewReader(data), "small", newTestSkeleton(t))
	if !errors.Is(err, ErrBoneCountMismatch) {
		t.Errorf("err = %v, want ErrBoneCountMismatch", err)
	}

	// Without a skeleton there is nothing to check against.
	if _, err := ReadClip(bytes.NewReader(data), "small", nil); err != nil {
		t.Errorf("ReadClip(nil skel): %v", err)
	}
}

func TestReadClipErrors(t *testing.T) {
	skelData := encodeSkeleton(t, newTestSkeleton(t))
	if _, err := ReadClip(bytes.NewReader(skelData), "wrong", nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}

	data := encodeClip(t, holdClip(t, "idle", 4, 0))
	if _, err := ReadClip(bytes.NewReader(data[:len(data)-3]), "short", nil); err == nil {
		t.Error("truncated clip should fail")
	}
}

func TestWriteClipTooLarge(t *testing.T) {
	frames := make([]BoneTransform, 300)
	clip, err := NewClip("long", 30, 300, 1, frames, 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteClip(&buf, clip); err == nil {
		t.Error("300 frames should not fit the format")
	}

	rows := make([]BoneTransform, 2)
	cases := []struct {
		name  string
		fps   float64
		event int
	}{
		{"fractional rate", 12.5, 1},
		{"rate above 255", 300, 1},
		{"event id above uint16", 12, 70000},
		{"negative event id", 12, -1},
	}
	for _, tc := range cases {
		clip, err := NewClip(tc.name, tc.fps, 2, 1, rows, 0, ClipEvent{Frame: 1, ID: tc.event})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		buf.Reset()
		if err := WriteClip(&buf, clip); err == nil {
			t.Errorf("%s: WriteClip should fail", tc.name)
		}
	}

	edge, err := NewClip("edge", 255, 2, 1, rows, 0, ClipEvent{Frame: 1, ID: 65535})
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := WriteClip(&buf, edge); err != nil {
		t.Fatalf("WriteClip: %v", err)
	}
	got, err := ReadClip(&buf, "edge", nil)
	if err != nil {
		t.Fatalf("ReadClip: %v", err)
	}
	if got.FrameRate() != 255 || got.Events()[0].ID != 65535 {
		t.Errorf("read back fps %v event %+v", got.FrameRate(), got.Events()[0])
	}
}
