package repository

import (
	"context"
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/platform"
)

// Filesystem is a Repository backed by a directory of archive files. It
// recursively walks root, reading every archive it finds and feeding
// them to the indexer.
type Filesystem struct {
	fs   afero.Fs
	root string

	cachedPlugins []*catalog.Plugin
	cachedRaw     map[string][]byte
}

// NewFilesystem opens a filesystem repository rooted at root.
func NewFilesystem(afs afero.Fs, root string) *Filesystem {
	return &Filesystem{fs: afs, root: root, cachedRaw: map[string][]byte{}}
}

func (r *Filesystem) load() ([]*catalog.Plugin, error) {
	if r.cachedPlugins != nil {
		return r.cachedPlugins, nil
	}

	var blobs []catalog.Blob
	err := afero.Walk(r.fs, r.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !isArchiveName(path) {
			return nil
		}
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return err
		}
		r.cachedRaw[path] = data
		blobs = append(blobs, catalog.Blob{URL: path, Data: data})
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "failed to walk plugin repository directory", err)
	}

	plugins, _ := catalog.Index(blobs)
	r.cachedPlugins = plugins
	return plugins, nil
}

func isArchiveName(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".zip")
}

func (r *Filesystem) ListPlugins(ctx context.Context) ([]*catalog.Plugin, error) {
	return r.load()
}

func (r *Filesystem) Resolve(ctx context.Context, spec string, currentPlatform platform.Tag, currentHostVersion hostversion.Version) (catalog.Location, error) {
	plugins, err := r.load()
	if err != nil {
		return catalog.Location{}, err
	}
	return Resolve(plugins, spec, currentPlatform, currentHostVersion)
}

func (r *Filesystem) FetchLocation(ctx context.Context, loc catalog.Location) ([]byte, error) {
	if _, err := r.load(); err != nil {
		return nil, err
	}
	data, ok := r.cachedRaw[loc.URL]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "archive not found in repository: "+loc.URL)
	}
	return data, nil
}
