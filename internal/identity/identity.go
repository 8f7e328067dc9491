// Package identity implements the plugin-identity detector: walking the
// call stack to find which installed plugin's directory the calling code
// lives under, using runtime.Callers / runtime.CallersFrames as Go's
// native analogue of frame-by-frame stack walking.
package identity

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/manifest"
)

const manifestFileName = "plugin-manifest.json"

// Detector resolves the canonical plugin name of whichever installed
// plugin directory a caller's source file lives under.
type Detector struct {
	fs          afero.Fs
	pluginsRoot string
	// frames, when non-nil, supplies the file list Detect scans in place of
	// the live call stack; New leaves it nil.
	frames func() []string
}

// New builds a Detector rooted at pluginsRoot.
func New(fs afero.Fs, pluginsRoot string) *Detector {
	return &Detector{fs: fs, pluginsRoot: pluginsRoot, frames: nil}
}

// Detect walks the call stack outward from its caller and returns the
// canonical name (from that directory's manifest, not the directory name
// itself) of the first frame whose file lies under
// <pluginsRoot>/<dir>/... Returns errs.KindNotInPluginContext if no frame
// matches.
func (d *Detector) Detect() (string, error) {
	var files []string
	if d.frames != nil {
		files = d.frames()
	} else {
		files = callerFiles(3, 64)
	}
	return d.resolveFromFiles(files)
}

// DetectFiles runs the same resolution logic against an explicit list of
// file paths, letting callers (and tests) bypass live stack-walking.
func (d *Detector) DetectFiles(files []string) (string, error) {
	return d.resolveFromFiles(files)
}

func (d *Detector) resolveFromFiles(files []string) (string, error) {
	root := filepath.Clean(d.pluginsRoot)
	for _, file := range files {
		file = filepath.Clean(file)
		rel, ok := underRoot(root, file)
		if !ok {
			continue
		}
		dirName := firstPathComponent(rel)
		if dirName == "" {
			continue
		}
		name, err := d.canonicalName(dirName)
		if err != nil {
			continue
		}
		return name, nil
	}
	return "", errs.New(errs.KindNotInPluginContext, "caller is not inside any installed plugin directory")
}

func (d *Detector) canonicalName(dirName string) (string, error) {
	data, err := afero.ReadFile(d.fs, d.pluginsRoot+"/"+dirName+"/"+manifestFileName)
	if err != nil {
		return "", err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

// underRoot reports whether file lies under root, returning the path
// relative to root.
func underRoot(root, file string) (string, bool) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", false
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func firstPathComponent(rel string) string {
	idx := strings.IndexByte(rel, '/')
	if idx == -1 {
		return ""
	}
	return rel[:idx]
}

// callerFiles collects up to max source file paths from the goroutine's
// call stack, skipping the first skip frames (this package's own code).
func callerFiles(skip, max int) []string {
	pcs := make([]uintptr, max)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	framesIter := runtime.CallersFrames(pcs[:n])
	var files []string
	for {
		frame, more := framesIter.Next()
		if frame.File != "" {
			files = append(files, frame.File)
		}
		if !more {
			break
		}
	}
	return files
}
