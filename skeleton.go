package sinew

import (
	"errors"
	"fmt"
)

// ErrInvalidSkeleton is returned when bone data breaks the hierarchy rules.
var ErrInvalidSkeleton = errors.New("sinew: invalid skeleton")

// Bone is one joint of a Skeleton. Bones are immutable once the skeleton is
// built.
type Bone struct {
	Name   string
	Index  int
	Parent int // NoBone for the root

	// Local is the rest pose relative to the parent.
	Local BoneTransform

	// Bind matrices describe the rest pose in skeleton space. Reference and
	// debug only; posing never reads them. Left zero, they are derived from
	// Local when the skeleton is built.
	BindLocalToWorld Affine
	BindWorldToLocal Affine

	// Authoring metadata.
	Length    float64
	Direction Vec2
}

// Skeleton is an immutable bone hierarchy. Bones are stored parent-first:
// every bone's parent index is lower than its own, so a single forward pass
// over the bones visits parents before children. Safe for concurrent reads.
type Skeleton struct {
	name  string
	bones []Bone
}

// NewSkeleton validates bones and builds a Skeleton. Bone 0 must be the only
// root and every other bone's parent must precede it. The slice is copied.
func NewSkeleton(name string, bones []Bone) (*Skeleton, error) {
	n := len(bones)
	if n == 0 {
		return nil, fmt.Errorf("%w: %q has no bones", ErrInvalidSkeleton, name)
	}
	if n > MaxBones {
		return nil, fmt.Errorf("%w: %q has %d bones, max %d", ErrInvalidSkeleton, name, n, MaxBones)
	}

	s := &Skeleton{name: name, bones: make([]Bone, n)}
	copy(s.bones, bones)

	seen := make(map[string]int, n)
	for i := range s.bones {
		b := &s.bones[i]
		if b.Index != i {
			return nil, fmt.Errorf("%w: %q bone %d has index %d", ErrInvalidSkeleton, name, i, b.Index)
		}
		if b.Name == "" {
			return nil, fmt.Errorf("%w: %q bone %d has no name", ErrInvalidSkeleton, name, i)
		}
		if prev, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q bone name %q used by %d and %d", ErrInvalidSkeleton, name, b.Name, prev, i)
		}
		seen[b.Name] = i

		if i == 0 {
			if b.Parent != NoBone {
				return nil, fmt.Errorf("%w: %q root bone has parent %d", ErrInvalidSkeleton, name, b.Parent)
			}
		} else if b.Parent < 0 || b.Parent >= i {
			return nil, fmt.Errorf("%w: %q bone %q (%d) has parent %d, parents must precede children",
				ErrInvalidSkeleton, name, b.Name, i, b.Parent)
		}

		if b.BindLocalToWorld.IsZero() {
			local := b.Local.Matrix()
			if i == 0 {
				b.BindLocalToWorld = local
			} else {
				b.BindLocalToWorld = s.bones[b.Parent].BindLocalToWorld.Mul(local)
			}
		}
		if b.BindWorldToLocal.IsZero() {
			b.BindWorldToLocal = b.BindLocalToWorld.Invert()
		}
	}
	return s, nil
}

// Name returns the skeleton's asset name.
func (s *Skeleton) Name() string { return s.name }

// BoneCount returns the number of bones.
func (s *Skeleton) BoneCount() int { return len(s.bones) }

// Bone returns the bone at index i, or the zero Bone with Parent NoBone if i
// is out of range.
func (s *Skeleton) Bone(i int) Bone {
	if i < 0 || i >= len(s.bones) {
		return Bone{Index: NoBone, Parent: NoBone}
	}
	return s.bones[i]
}

// Parent returns the parent index of bone i, or NoBone.
func (s *Skeleton) Parent(i int) int {
	if i < 0 || i >= len(s.bones) {
		return NoBone
	}
	return s.bones[i].Parent
}

// BoneIndex returns the index of the named bone, or NoBone if no bone has
// that name. Callers must check the result.
func (s *Skeleton) BoneIndex(name string) int {
	for i := range s.bones {
		if s.bones[i].Name == name {
			return i
		}
	}
	return NoBone
}

// BindLocalToWorld returns the rest-pose bone-to-skeleton matrix of bone i.
func (s *Skeleton) BindLocalToWorld(i int) Affine {
	if i < 0 || i >= len(s.bones) {
		return Identity
	}
	return s.bones[i].BindLocalToWorld
}

// BindWorldToLocal returns the rest-pose skeleton-to-bone matrix of bone i.
func (s *Skeleton) BindWorldToLocal(i int) Affine {
	if i < 0 || i >= len(s.bones) {
		return Identity
	}
	return s.bones[i].BindWorldToLocal
}

// BindPose writes each bone's rest local transform into dst and returns the
// number of bones written.
func (s *Skeleton) BindPose(dst []BoneTransform) int {
	n := min(len(dst), len(s.bones))
	for i := 0; i < n; i++ {
		dst[i] = s.bones[i].Local
	}
	return n
}

// Mask builds a BoneMask from bone names. Unknown names are skipped; the
// second result lists them so callers can report configuration mistakes.
func (s *Skeleton) Mask(names ...string) (BoneMask, []string) {
	var m BoneMask
	var missing []string
	for _, name := range names {
		i := s.BoneIndex(name)
		if i == NoBone {
			missing = append(missing, name)
			continue
		}
		m = m.With(i)
	}
	return m, missing
}

// Subtree returns a mask containing bone root and all of its descendants.
func (s *Skeleton) Subtree(root int) BoneMask {
	if root < 0 || root >= len(s.bones) {
		return 0
	}
	m := BoneMask(0).With(root)
	for i := root + 1; i < len(s.bones); i++ {
		if m.Has(s.bones[i].Parent) {
			m = m.With(i)
		}
	}
	return m
}
