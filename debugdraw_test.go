package sinew

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

func TestDrawOptionsDefaults(t *testing.T) {
	var opts DrawOptions
	opts.defaults()
	assertMatrix(t, "view", opts.View, Identity)
	if opts.Mask != AllBones {
		t.Errorf("Mask = %b", opts.Mask)
	}
	if opts.BoneColor != colornames.Lightgrey || opts.JointColor != colornames.Orange {
		t.Errorf("colors = %v %v", opts.BoneColor, opts.JointColor)
	}
	if opts.LineWidth != 2 || opts.JointRadius != 3 {
		t.Errorf("sizes = %v %v", opts.LineWidth, opts.JointRadius)
	}

	custom := DrawOptions{LineWidth: 5, BoneColor: colornames.Red}
	custom.defaults()
	if custom.LineWidth != 5 || custom.BoneColor != colornames.Red {
		t.Error("defaults overwrote caller settings")
	}
}

func TestDrawSkeletonShortWorlds(t *testing.T) {
	skel := newTestSkeleton(t)
	a := NewAnimator(skel, 1)
	screen := ebiten.NewImage(64, 64)

	DrawSkeleton(screen, skel, a.WorldMatrices(), DrawOptions{})
	// Fewer matrices than bones draws what it has.
	DrawSkeleton(screen, skel, a.WorldMatrices()[:2], DrawOptions{Mask: BoneMask(0).With(1)})
}

func TestDrawSkeletonNil(t *testing.T) {
	screen := ebiten.NewImage(8, 8)
	DrawSkeleton(screen, nil, []Affine{Identity}, DrawOptions{})
	DrawSkeleton(nil, newTestSkeleton(t), []Affine{Identity}, DrawOptions{})
}
