package sinew

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	skeletonExt = ".skel"
	clipExt     = ".anim"
)

// ClipSource looks up clips by name. *Library implements it.
type ClipSource interface {
	Clip(name string) *Clip
}

// Library holds decoded skeletons and clips keyed by asset name, the file
// name without its extension. Lookups are safe while a Watcher reloads
// assets on another goroutine; a reload swaps in new values and never
// mutates a Skeleton or Clip already handed out.
type Library struct {
	mu        sync.RWMutex
	fsys      fs.FS
	skeletons map[string]*Skeleton
	clips     map[string]*Clip
	clipSkel  map[string]string
	dirSkel   map[string]string
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		skeletons: make(map[string]*Skeleton),
		clips:     make(map[string]*Clip),
		clipSkel:  make(map[string]string),
		dirSkel:   make(map[string]string),
	}
}

// AddSkeleton registers skel under its name, replacing any previous entry.
func (l *Library) AddSkeleton(skel *Skeleton) {
	l.mu.Lock()
	l.skeletons[skel.Name()] = skel
	l.mu.Unlock()
}

// AddClip registers clip under its name for skeleton skelName. The clip must
// match the skeleton's bone count.
func (l *Library) AddClip(clip *Clip, skelName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	skel, ok := l.skeletons[skelName]
	if !ok {
		return fmt.Errorf("clip %q: unknown skeleton %q", clip.Name(), skelName)
	}
	if !clip.Matches(skel) {
		return fmt.Errorf("%w: clip %q has %d bones, skeleton %q has %d",
			ErrBoneCountMismatch, clip.Name(), clip.BoneCount(), skelName, skel.BoneCount())
	}
	l.clips[clip.Name()] = clip
	l.clipSkel[clip.Name()] = skelName
	return nil
}

// Skeleton returns the skeleton called name, or nil.
func (l *Library) Skeleton(name string) *Skeleton {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skeletons[name]
}

// Clip returns the clip called name, or nil.
func (l *Library) Clip(name string) *Clip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clips[name]
}

// ClipSkeleton returns the name of the skeleton clip name was loaded for.
func (l *Library) ClipSkeleton(name string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clipSkel[name]
}

// ClipNames returns every clip name in sorted order.
func (l *Library) ClipNames() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.clips))
	for name := range l.clips {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

func assetName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadFS decodes every *.skel and *.anim file in fsys. Skeletons load first.
// A clip binds to the skeleton in its own directory, or to the only skeleton
// in the library when its directory has none.
func (l *Library) LoadFS(fsys fs.FS) error {
	var skels, clips []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case skeletonExt:
			skels = append(skels, p)
		case clipExt:
			clips = append(clips, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sinew: scan assets: %w", err)
	}

	l.mu.Lock()
	l.fsys = fsys
	l.mu.Unlock()

	for _, p := range skels {
		if err := l.loadSkeleton(fsys, p); err != nil {
			return err
		}
	}
	for _, p := range clips {
		if err := l.loadClip(fsys, p); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) loadSkeleton(fsys fs.FS, p string) error {
	f, err := fsys.Open(p)
	if err != nil {
		return fmt.Errorf("sinew: open %s: %w", p, err)
	}
	defer f.Close()

	skel, err := ReadSkeleton(f, assetName(p))
	if err != nil {
		return fmt.Errorf("sinew: load %s: %w", p, err)
	}
	l.mu.Lock()
	l.skeletons[skel.Name()] = skel
	l.dirSkel[path.Dir(p)] = skel.Name()
	l.mu.Unlock()
	return nil
}

// skeletonFor picks the skeleton a clip at p binds to. Caller holds l.mu.
func (l *Library) skeletonFor(p string) (*Skeleton, error) {
	if name, ok := l.dirSkel[path.Dir(p)]; ok {
		return l.skeletons[name], nil
	}
	if len(l.skeletons) == 1 {
		for _, s := range l.skeletons {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sinew: %s: no skeleton in its directory and %d in library", p, len(l.skeletons))
}

func (l *Library) loadClip(fsys fs.FS, p string) error {
	l.mu.RLock()
	skel, err := l.skeletonFor(p)
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	f, err := fsys.Open(p)
	if err != nil {
		return fmt.Errorf("sinew: open %s: %w", p, err)
	}
	defer f.Close()

	clip, err := ReadClip(f, assetName(p), skel)
	if err != nil {
		return fmt.Errorf("sinew: load %s: %w", p, err)
	}
	l.mu.Lock()
	l.clips[clip.Name()] = clip
	l.clipSkel[clip.Name()] = skel.Name()
	l.mu.Unlock()
	return nil
}

// Reload re-reads one asset, given as a slash-separated path relative to the
// filesystem passed to LoadFS. Existing animators keep the values they hold;
// look assets up again to pick up the change.
func (l *Library) Reload(p string) error {
	l.mu.RLock()
	fsys := l.fsys
	l.mu.RUnlock()
	if fsys == nil {
		return fmt.Errorf("sinew: reload %s: library has no filesystem", p)
	}
	switch strings.ToLower(path.Ext(p)) {
	case skeletonExt:
		return l.loadSkeleton(fsys, p)
	case clipExt:
		return l.loadClip(fsys, p)
	}
	return nil
}

// Watch starts a Watcher on dir, the on-disk directory backing the library's
// filesystem, and reloads each changed asset. Reload failures are logged and
// the previous asset is kept. onReload, if non-nil, is called with the asset
// name after each successful reload. Close the returned Watcher to stop.
func (l *Library) Watch(dir string, onReload func(name string)) (*Watcher, error) {
	w, err := NewWatcher(dir)
	if err != nil {
		return nil, err
	}
	go func() {
		for {
			select {
			case p, ok := <-w.Events:
				if !ok {
					return
				}
				rel, err := filepath.Rel(dir, p)
				if err != nil {
					log.Printf("sinew: reload %s: %v", p, err)
					continue
				}
				rel = filepath.ToSlash(rel)
				if err := l.Reload(rel); err != nil {
					log.Printf("sinew: %v", err)
					continue
				}
				if onReload != nil {
					onReload(assetName(rel))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("sinew: watch %s: %v", dir, err)
			}
		}
	}()
	return w, nil
}
