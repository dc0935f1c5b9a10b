package sinew

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrBadMagic is returned when an asset stream does not start with the
// expected signature.
var ErrBadMagic = errors.New("sinew: bad asset signature")

const assetVersion = 1

var (
	skeletonMagic = [4]byte{'S', 'K', 'E', 'L'}
	clipMagic     = [4]byte{'A', 'N', 'I', 'M'}
)

// Binary layout. All values are little-endian.

type assetHeader struct {
	Magic   [4]byte
	Version uint32
}

type boneRecord struct {
	Parent       int8
	Position     [2]float32
	Rotation     float32
	Scale        [2]float32
	WorldToLocal [6]float32
	Length       float32
	Direction    [2]float32
}

type clipHeader struct {
	Bones     uint8
	Frames    uint8
	FrameRate uint8
	Flags     uint8
	Events    uint8
}

type eventRecord struct {
	Frame uint8
	ID    uint16
}

type transformRecord struct {
	Position [2]float32
	Rotation float32
	Scale    [2]float32
}

func readHeader(r io.Reader, magic [4]byte) error {
	var h assetHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if h.Magic != magic {
		return fmt.Errorf("%w: got %q, want %q", ErrBadMagic, h.Magic[:], magic[:])
	}
	if h.Version != assetVersion {
		return fmt.Errorf("unsupported %s version %d", magic[:], h.Version)
	}
	return nil
}

func readName(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func toAffine(m [6]float32) Affine {
	return Affine{float64(m[0]), float64(m[1]), float64(m[2]), float64(m[3]), float64(m[4]), float64(m[5])}
}

func fromAffine(m Affine) [6]float32 {
	return [6]float32{float32(m[0]), float32(m[1]), float32(m[2]), float32(m[3]), float32(m[4]), float32(m[5])}
}

func (r transformRecord) transform() BoneTransform {
	return BoneTransform{
		Position: Vec2{float64(r.Position[0]), float64(r.Position[1])},
		Rotation: float64(r.Rotation),
		Scale:    Vec2{float64(r.Scale[0]), float64(r.Scale[1])},
	}
}

func newTransformRecord(t BoneTransform) transformRecord {
	return transformRecord{
		Position: [2]float32{float32(t.Position.X), float32(t.Position.Y)},
		Rotation: float32(t.Rotation),
		Scale:    [2]float32{float32(t.Scale.X), float32(t.Scale.Y)},
	}
}

// ReadSkeleton decodes a skeleton asset. Bone order is validated by
// NewSkeleton, so a stream with a child before its parent is rejected.
func ReadSkeleton(r io.Reader, name string) (*Skeleton, error) {
	if err := readHeader(r, skeletonMagic); err != nil {
		return nil, fmt.Errorf("skeleton %q: %w", name, err)
	}
	var count uint8
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("skeleton %q: read bone count: %w", name, err)
	}

	bones := make([]Bone, count)
	for i := range bones {
		boneName, err := readName(r)
		if err != nil {
			return nil, fmt.Errorf("skeleton %q: read bone %d name: %w", name, i, err)
		}
		var rec boneRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("skeleton %q: read bone %d: %w", name, i, err)
		}
		w2l := toAffine(rec.WorldToLocal)
		bones[i] = Bone{
			Name:   boneName,
			Index:  i,
			Parent: int(rec.Parent),
			Local: transformRecord{
				Position: rec.Position,
				Rotation: rec.Rotation,
				Scale:    rec.Scale,
			}.transform(),
			BindWorldToLocal: w2l,
			Length:           float64(rec.Length),
			Direction:        Vec2{float64(rec.Direction[0]), float64(rec.Direction[1])},
		}
		if !w2l.IsZero() {
			bones[i].BindLocalToWorld = w2l.Invert()
		}
	}
	return NewSkeleton(name, bones)
}

// WriteSkeleton encodes skel in the layout ReadSkeleton expects.
func WriteSkeleton(w io.Writer, skel *Skeleton) error {
	if err := binary.Write(w, binary.LittleEndian, assetHeader{skeletonMagic, assetVersion}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(skel.BoneCount())); err != nil {
		return err
	}
	for i := range skel.bones {
		b := &skel.bones[i]
		if len(b.Name) > 255 {
			return fmt.Errorf("skeleton %q: bone name %q too long", skel.name, b.Name)
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(len(b.Name))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, b.Name); err != nil {
			return err
		}
		t := newTransformRecord(b.Local)
		rec := boneRecord{
			Parent:       int8(b.Parent),
			Position:     t.Position,
			Rotation:     t.Rotation,
			Scale:        t.Scale,
			WorldToLocal: fromAffine(b.BindWorldToLocal),
			Length:       float32(b.Length),
			Direction:    [2]float32{float32(b.Direction.X), float32(b.Direction.Y)},
		}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return nil
}

// ReadClip decodes a clip asset. If skel is non-nil the clip's bone count
// must match it.
func ReadClip(r io.Reader, name string, skel *Skeleton) (*Clip, error) {
	if err := readHeader(r, clipMagic); err != nil {
		return nil, fmt.Errorf("clip %q: %w", name, err)
	}
	var h clipHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("clip %q: read header: %w", name, err)
	}
	if skel != nil && int(h.Bones) != skel.BoneCount() {
		return nil, fmt.Errorf("%w: clip %q has %d bones, skeleton %q has %d",
			ErrBoneCountMismatch, name, h.Bones, skel.Name(), skel.BoneCount())
	}

	events := make([]eventRecord, h.Events)
	if err := binary.Read(r, binary.LittleEndian, events); err != nil {
		return nil, fmt.Errorf("clip %q: read events: %w", name, err)
	}
	recs := make([]transformRecord, int(h.Frames)*int(h.Bones))
	if err := binary.Read(r, binary.LittleEndian, recs); err != nil {
		return nil, fmt.Errorf("clip %q: read frames: %w", name, err)
	}

	frames := make([]BoneTransform, len(recs))
	for i, rec := range recs {
		frames[i] = rec.transform()
	}
	clipEvents := make([]ClipEvent, len(events))
	for i, e := range events {
		clipEvents[i] = ClipEvent{Frame: int(e.Frame), ID: int(e.ID)}
	}
	return NewClip(name, float64(h.FrameRate), int(h.Frames), int(h.Bones), frames, ClipFlags(h.Flags), clipEvents...)
}

// WriteClip encodes clip in the layout ReadClip expects. Frame rate is
// stored as a whole number of frames per second.
func WriteClip(w io.Writer, clip *Clip) error {
	if clip.frameCount > 255 || clip.boneCount > 255 || len(clip.events) > 255 {
		return fmt.Errorf("clip %q: too large for the asset format", clip.name)
	}
	if fr := clip.frameRate; fr < 1 || fr > 255 || fr != math.Trunc(fr) {
		return fmt.Errorf("clip %q: frame rate %v is not a whole number in 1..255", clip.name, fr)
	}
	for _, e := range clip.events {
		if e.ID < 0 || e.ID > math.MaxUint16 {
			return fmt.Errorf("clip %q: event id %d out of range 0..%d", clip.name, e.ID, math.MaxUint16)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, assetHeader{clipMagic, assetVersion}); err != nil {
		return err
	}
	h := clipHeader{
		Bones:     uint8(clip.boneCount),
		Frames:    uint8(clip.frameCount),
		FrameRate: uint8(clip.frameRate),
		Flags:     uint8(clip.flags),
		Events:    uint8(len(clip.events)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	events := make([]eventRecord, len(clip.events))
	for i, e := range clip.events {
		events[i] = eventRecord{Frame: uint8(e.Frame), ID: uint16(e.ID)}
	}
	if err := binary.Write(w, binary.LittleEndian, events); err != nil {
		return err
	}
	recs := make([]transformRecord, len(clip.frames))
	for i, t := range clip.frames {
		recs[i] = newTransformRecord(t)
	}
	return binary.Write(w, binary.LittleEndian, recs)
}
