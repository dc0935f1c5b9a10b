package sinew

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

// DrawOptions controls DrawSkeleton. The zero value draws every bone with
// default colours at skeleton-space coordinates.
type DrawOptions struct {
	// View maps skeleton space to dst pixels. Zero means identity.
	View Affine
	// Mask limits drawing to these bones. Zero means all bones.
	Mask BoneMask

	BoneColor   color.Color
	JointColor  color.Color
	TipColor    color.Color
	LineWidth   float32
	JointRadius float32
}

func (o *DrawOptions) defaults() {
	if o.View.IsZero() {
		o.View = Identity
	}
	if o.Mask == 0 {
		o.Mask = AllBones
	}
	if o.BoneColor == nil {
		o.BoneColor = colornames.Lightgrey
	}
	if o.JointColor == nil {
		o.JointColor = colornames.Orange
	}
	if o.TipColor == nil {
		o.TipColor = colornames.Cornflowerblue
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	if o.JointRadius <= 0 {
		o.JointRadius = 3
	}
}

// DrawSkeleton draws worlds as a stick figure: a line from each bone to its
// parent, a dot on each joint, and a tip segment along the bone's rest
// direction for bones with a length.
func DrawSkeleton(dst *ebiten.Image, skel *Skeleton, worlds []Affine, opts DrawOptions) {
	if skel == nil || dst == nil {
		return
	}
	opts.defaults()
	n := min(skel.BoneCount(), len(worlds))
	for i := 0; i < n; i++ {
		if !opts.Mask.Has(i) {
			continue
		}
		b := &skel.bones[i]
		m := opts.View.Mul(worlds[i])
		o := m.Origin()

		if b.Parent != NoBone && b.Parent < n {
			p := opts.View.Mul(worlds[b.Parent]).Origin()
			vector.StrokeLine(dst, float32(p.X), float32(p.Y), float32(o.X), float32(o.Y),
				opts.LineWidth, opts.BoneColor, true)
		}
		if b.Length > 0 {
			tx, ty := m.Apply(b.Direction.X*b.Length, b.Direction.Y*b.Length)
			vector.StrokeLine(dst, float32(o.X), float32(o.Y), float32(tx), float32(ty),
				opts.LineWidth, opts.TipColor, true)
		}
		vector.DrawFilledCircle(dst, float32(o.X), float32(o.Y), opts.JointRadius, opts.JointColor, true)
	}
}
