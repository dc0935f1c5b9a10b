package sinew

import "github.com/go-gl/mathgl/mgl32"

// ComposePose converts local bone transforms into world matrices in a single
// forward pass. It relies on the skeleton's parent-first ordering: when bone i
// is reached, worlds[parent(i)] is already final. Returns the number of bones
// composed.
func ComposePose(skel *Skeleton, locals []BoneTransform, worlds []Affine) int {
	if skel == nil {
		return 0
	}
	n := min(len(locals), len(worlds), len(skel.bones))
	for i := 0; i < n; i++ {
		local := locals[i].Matrix()
		p := skel.bones[i].Parent
		if p == NoBone {
			worlds[i] = local
			continue
		}
		worlds[i] = worlds[p].Mul(local)
	}
	return n
}

// SkinPose appends one skinning matrix per bone to dst[:0]: the bone's world
// matrix times its bind world-to-local matrix, which maps rest-pose vertices
// to their animated position. Pass a dst with MaxBones capacity to avoid
// allocating.
func SkinPose(skel *Skeleton, worlds []Affine, dst []mgl32.Mat3) []mgl32.Mat3 {
	dst = dst[:0]
	if skel == nil {
		return dst
	}
	n := min(len(worlds), len(skel.bones))
	for i := 0; i < n; i++ {
		dst = append(dst, worlds[i].Mul(skel.bones[i].BindWorldToLocal).Mat3())
	}
	return dst
}
