package sinew

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity affine matrix.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// TRS builds translate * rotate * scale. Rotation is in radians.
func TRS(position Vec2, rotation float64, scale Vec2) Affine {
	sin, cos := math.Sincos(rotation)
	return Affine{
		cos * scale.X,
		sin * scale.X,
		-sin * scale.Y,
		cos * scale.Y,
		position.X,
		position.Y,
	}
}

// Mul returns p * c. Applied to a point, c acts first and p second, so
// parentWorld.Mul(childLocal) is the child's world matrix.
func (p Affine) Mul(c Affine) Affine {
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// Invert computes the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Origin returns the translation column.
func (m Affine) Origin() Vec2 {
	return Vec2{m[4], m[5]}
}

// IsZero reports whether every element is zero. An unset bind matrix is zero.
func (m Affine) IsZero() bool {
	return m == Affine{}
}

// Mat3 converts m to a column-major float32 3x3 matrix for GPU upload.
func (m Affine) Mat3() mgl32.Mat3 {
	return mgl32.Mat3{
		float32(m[0]), float32(m[1]), 0,
		float32(m[2]), float32(m[3]), 0,
		float32(m[4]), float32(m[5]), 1,
	}
}

// GeoM converts m to an ebiten.GeoM for drawing with ebiten.
func (m Affine) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// --- Angles ---

// NormalizeAngle wraps a radian angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDelta returns the shortest signed rotation from -> to, in (-π, π].
func AngleDelta(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// MixAngle interpolates from a toward b along the shortest arc.
// The result is not normalized; a + the partial delta keeps it continuous with a.
func MixAngle(a, b, t float64) float64 {
	return a + AngleDelta(a, b)*t
}

// --- Bone transforms ---

// BoneTransform is a bone's pose relative to its parent.
type BoneTransform struct {
	Position Vec2
	Rotation float64 // radians
	Scale    Vec2
}

// IdentityTransform is the rest transform: no offset, no rotation, unit scale.
var IdentityTransform = BoneTransform{Scale: Vec2{1, 1}}

// Matrix returns translate * rotate * scale for t.
func (t BoneTransform) Matrix() Affine {
	return TRS(t.Position, t.Rotation, t.Scale)
}

// MixTransform interpolates between two bone transforms. Position and scale
// mix linearly; rotation takes the shortest arc.
func MixTransform(a, b BoneTransform, t float64) BoneTransform {
	return BoneTransform{
		Position: MixVec2(a.Position, b.Position, t),
		Rotation: MixAngle(a.Rotation, b.Rotation, t),
		Scale:    MixVec2(a.Scale, b.Scale, t),
	}
}
