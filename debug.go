package sinew

import (
	"fmt"
	"log"
	"os"
)

// configError reports a programmer error such as an out-of-range layer or a
// clip built for a different skeleton. In debug mode it panics with a
// descriptive message; otherwise it logs and the caller skips the operation.
func configError(debug bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if debug {
		panic("sinew debug: " + msg)
	}
	log.Printf("sinew: %s (ignored)", msg)
}

// debugWarn prints a diagnostic to stderr. Only called in debug mode, from
// paths that may run every frame.
func debugWarn(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[sinew] warning: "+format+"\n", args...)
}

// debugCheckClip reports whether clip can be played on skel.
func debugCheckClip(debug bool, op string, skel *Skeleton, clip *Clip) bool {
	if clip.Matches(skel) {
		return true
	}
	configError(debug, "%s: clip %q has %d bones, skeleton %q has %d",
		op, clip.Name(), clip.BoneCount(), skel.Name(), skel.BoneCount())
	return false
}

// debugCheckIndex reports whether i is within [0, n).
func debugCheckIndex(debug bool, op, what string, i, n int) bool {
	if i >= 0 && i < n {
		return true
	}
	configError(debug, "%s: %s %d out of range [0,%d)", op, what, i, n)
	return false
}
