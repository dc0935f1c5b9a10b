package sinew

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownBone is returned when a config names a bone the skeleton
	// does not have.
	ErrUnknownBone = errors.New("sinew: unknown bone")
	// ErrUnknownClip is returned when a config names a clip the library
	// does not have.
	ErrUnknownClip = errors.New("sinew: unknown clip")
)

// AnimationSet describes how one character is animated: which skeleton, how
// its layers split the bones, and which blend trees drive it.
//
//	skeleton: hero
//	fade_duration: 0.1
//	layers:
//	  - name: base
//	  - name: upper
//	    subtrees: [spine]
//	blend_trees:
//	  - name: locomotion
//	    blends:
//	      - {clip: idle, value: 0}
//	      - {clip: walk, value: 1}
//	      - {clip: run, value: 2, speed: 1.2}
type AnimationSet struct {
	Skeleton     string          `yaml:"skeleton"`
	FadeDuration *float64        `yaml:"fade_duration"`
	Layers       []LayerSpec     `yaml:"layers"`
	BlendTrees   []BlendTreeSpec `yaml:"blend_trees"`
}

// LayerSpec configures one Animator layer. With no bones and no subtrees the
// layer writes every bone.
type LayerSpec struct {
	Name     string   `yaml:"name"`
	Bones    []string `yaml:"bones"`
	Subtrees []string `yaml:"subtrees"`
}

// BlendTreeSpec configures a BlendTree. Its mask follows the LayerSpec rules.
type BlendTreeSpec struct {
	Name     string      `yaml:"name"`
	Bones    []string    `yaml:"bones"`
	Subtrees []string    `yaml:"subtrees"`
	Blends   []BlendSpec `yaml:"blends"`
}

// BlendSpec places one clip on a blend tree's control axis. Speed defaults
// to 1.
type BlendSpec struct {
	Clip  string  `yaml:"clip"`
	Value float64 `yaml:"value"`
	Speed float64 `yaml:"speed"`
}

// LoadAnimationSet parses a YAML animation set.
func LoadAnimationSet(data []byte) (*AnimationSet, error) {
	var set AnimationSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("sinew: unmarshal animation set: %w", err)
	}
	if set.Skeleton == "" {
		return nil, errors.New("sinew: animation set has no skeleton")
	}
	if len(set.Layers) > MaxLayers {
		return nil, fmt.Errorf("sinew: animation set has %d layers, max %d", len(set.Layers), MaxLayers)
	}
	for _, bt := range set.BlendTrees {
		if len(bt.Blends) > MaxBlends {
			return nil, fmt.Errorf("sinew: blend tree %q has %d blends, max %d", bt.Name, len(bt.Blends), MaxBlends)
		}
	}
	return &set, nil
}

// LoadAnimationSetFS reads and parses the animation set at name in fsys.
func LoadAnimationSetFS(fsys fs.FS, name string) (*AnimationSet, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("sinew: load %s: %w", name, err)
	}
	set, err := LoadAnimationSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return set, nil
}

func (s *AnimationSet) skeleton(lib *Library) (*Skeleton, error) {
	skel := lib.Skeleton(s.Skeleton)
	if skel == nil {
		return nil, fmt.Errorf("sinew: unknown skeleton %q", s.Skeleton)
	}
	return skel, nil
}

func buildMask(skel *Skeleton, bones, subtrees []string) (BoneMask, error) {
	if len(bones) == 0 && len(subtrees) == 0 {
		return AllBones, nil
	}
	mask, missing := skel.Mask(bones...)
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %q in skeleton %q", ErrUnknownBone, missing, skel.Name())
	}
	for _, name := range subtrees {
		root := skel.BoneIndex(name)
		if root == NoBone {
			return 0, fmt.Errorf("%w: %q in skeleton %q", ErrUnknownBone, name, skel.Name())
		}
		mask |= skel.Subtree(root)
	}
	return mask, nil
}

// NewAnimator builds an Animator with the set's layers and masks.
func (s *AnimationSet) NewAnimator(lib *Library) (*Animator, error) {
	skel, err := s.skeleton(lib)
	if err != nil {
		return nil, err
	}
	a := NewAnimator(skel, len(s.Layers))
	if s.FadeDuration != nil {
		a.SetFadeDuration(*s.FadeDuration)
	}
	for i, ls := range s.Layers {
		mask, err := buildMask(skel, ls.Bones, ls.Subtrees)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", ls.Name, err)
		}
		a.SetBoneMask(i, mask)
	}
	return a, nil
}

// LayerIndex returns the index of the layer called name, or -1.
func (s *AnimationSet) LayerIndex(name string) int {
	for i, ls := range s.Layers {
		if ls.Name == name {
			return i
		}
	}
	return -1
}

// NewBlendTree builds the blend tree called name with every blend started.
func (s *AnimationSet) NewBlendTree(lib *Library, name string) (*BlendTree, error) {
	skel, err := s.skeleton(lib)
	if err != nil {
		return nil, err
	}
	var spec *BlendTreeSpec
	for i := range s.BlendTrees {
		if s.BlendTrees[i].Name == name {
			spec = &s.BlendTrees[i]
			break
		}
	}
	if spec == nil {
		return nil, fmt.Errorf("sinew: unknown blend tree %q", name)
	}

	mask, err := buildMask(skel, spec.Bones, spec.Subtrees)
	if err != nil {
		return nil, fmt.Errorf("blend tree %q: %w", name, err)
	}
	tree := NewBlendTree(skel, len(spec.Blends), mask)
	for i, b := range spec.Blends {
		clip := lib.Clip(b.Clip)
		if clip == nil {
			return nil, fmt.Errorf("blend tree %q: %w: %q", name, ErrUnknownClip, b.Clip)
		}
		if !clip.Matches(skel) {
			return nil, fmt.Errorf("blend tree %q: %w: clip %q", name, ErrBoneCountMismatch, b.Clip)
		}
		speed := b.Speed
		if speed == 0 {
			speed = 1
		}
		tree.Play(i, b.Value, clip, speed, 0)
	}
	return tree, nil
}
