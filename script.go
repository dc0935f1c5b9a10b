package sinew

import (
	"encoding/json"
	"fmt"
)

const defaultScriptDT = 1.0 / 60

// scriptStep is a single action in a playback script.
type scriptStep struct {
	Action string  `json:"action"`
	Clip   string  `json:"clip,omitempty"`
	Layer  int     `json:"layer,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
	At     float64 `json:"at,omitempty"`
	Value  float64 `json:"value,omitempty"`
	DT     float64 `json:"dt,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type playbackScript struct {
	Steps []scriptStep `json:"steps"`
}

// PlaybackRunner replays a JSON script of animator commands, one step per
// frame, so a sequence of plays, crossfades and blend changes can be
// reproduced exactly in tests and tools.
//
//	{"steps": [
//	  {"action": "play", "clip": "walk", "loop": true},
//	  {"action": "update", "dt": 0.016, "frames": 30},
//	  {"action": "play", "clip": "run", "loop": true},
//	  {"action": "value", "value": 1.5},
//	  {"action": "wait", "frames": 10}
//	]}
//
// Actions: play (clip, layer, speed, loop, at), stop (layer), update (dt,
// frames), value (value), seek (layer, at), wait (frames).
type PlaybackRunner struct {
	steps       []scriptStep
	cursor      int
	waitCount   int
	updateCount int
	updateDT    float64
	done        bool
}

// LoadPlaybackScript parses a JSON playback script.
func LoadPlaybackScript(jsonData []byte) (*PlaybackRunner, error) {
	var script playbackScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse playback script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse playback script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "play":
			if st.Clip == "" {
				return nil, fmt.Errorf("parse playback script: step %d: play without clip", i)
			}
		case "stop", "update", "value", "seek", "wait":
		default:
			return nil, fmt.Errorf("parse playback script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &PlaybackRunner{steps: script.Steps}, nil
}

// Done reports whether every step has run.
func (r *PlaybackRunner) Done() bool {
	return r.done
}

// Step runs one frame of the script against a. tree may be nil; when set,
// value steps drive it and update steps advance it after a. clips resolves
// clip names for play steps.
func (r *PlaybackRunner) Step(a *Animator, tree *BlendTree, clips ClipSource) error {
	if r.done {
		return nil
	}
	if r.updateCount > 0 {
		r.updateCount--
		advanceScripted(a, tree, r.updateDT)
		r.finishIfDone()
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		r.finishIfDone()
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "play":
		clip := clips.Clip(st.Clip)
		if clip == nil {
			return fmt.Errorf("playback step %d: %w: %q", r.cursor-1, ErrUnknownClip, st.Clip)
		}
		speed := st.Speed
		if speed == 0 {
			speed = 1
		}
		a.PlayAt(clip, st.Layer, speed, st.Loop, st.At)
	case "stop":
		a.StopLayer(st.Layer)
	case "value":
		if tree != nil {
			tree.SetValue(st.Value)
		}
	case "seek":
		a.SetNormalizedTime(st.Layer, st.At)
	case "update":
		dt := st.DT
		if dt == 0 {
			dt = defaultScriptDT
		}
		advanceScripted(a, tree, dt)
		if st.Frames > 1 {
			r.updateDT = dt
			r.updateCount = st.Frames - 1 // this frame counts as one
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}

	r.finishIfDone()
	return nil
}

func (r *PlaybackRunner) finishIfDone() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.updateCount == 0 {
		r.done = true
	}
}

func advanceScripted(a *Animator, tree *BlendTree, dt float64) {
	a.Update(dt, 1)
	if tree != nil {
		tree.Update(dt, 1, a)
	}
}
