package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminabbitt/hostcli/internal/catalog"
	"github.com/benjaminabbitt/hostcli/internal/errs"
	"github.com/benjaminabbitt/hostcli/internal/hostversion"
	"github.com/benjaminabbitt/hostcli/internal/platform"
)

// Fetcher retrieves the bytes at url, supporting both file:// paths and
// http(s):// URLs; the cmd layer supplies the concrete implementation so
// this package stays transport-agnostic and mockable.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// RemoteCatalog is a Repository backed by a cached JSON snapshot fetched
// from a URL or read from disk. Every listed Location carries its full
// manifest and sha256 inline, so
// resolution never needs to download an archive; only FetchLocation does.
type RemoteCatalog struct {
	fs         afero.Fs
	fetch      Fetcher
	sourceURL  string
	cachePath  string
	cacheTTL   time.Duration
	now        func() time.Time
	cachedData []*catalog.Plugin
}

// NewRemoteCatalog builds a remote catalog repository. now defaults to
// time.Now if nil.
func NewRemoteCatalog(afs afero.Fs, fetch Fetcher, sourceURL, cachePath string, cacheTTL time.Duration, now func() time.Time) *RemoteCatalog {
	if now == nil {
		now = time.Now
	}
	return &RemoteCatalog{fs: afs, fetch: fetch, sourceURL: sourceURL, cachePath: cachePath, cacheTTL: cacheTTL, now: now}
}

func (r *RemoteCatalog) load(ctx context.Context) ([]*catalog.Plugin, error) {
	if r.cachedData != nil {
		return r.cachedData, nil
	}

	if data, ok := r.readFreshCache(); ok {
		plugins, err := catalog.UnmarshalSnapshot(data)
		if err == nil {
			r.cachedData = plugins
			return plugins, nil
		}
	}

	data, err := r.fetch(ctx, r.sourceURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, "failed to fetch catalog snapshot: "+r.sourceURL, err)
	}
	plugins, err := catalog.UnmarshalSnapshot(data)
	if err != nil {
		return nil, err
	}
	_ = afero.WriteFile(r.fs, r.cachePath, data, 0o644)
	r.cachedData = plugins
	return plugins, nil
}

func (r *RemoteCatalog) readFreshCache() ([]byte, bool) {
	info, err := r.fs.Stat(r.cachePath)
	if err != nil {
		return nil, false
	}
	if r.now().Sub(info.ModTime()) > r.cacheTTL {
		return nil, false
	}
	data, err := afero.ReadFile(r.fs, r.cachePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *RemoteCatalog) ListPlugins(ctx context.Context) ([]*catalog.Plugin, error) {
	return r.load(ctx)
}

func (r *RemoteCatalog) Resolve(ctx context.Context, spec string, currentPlatform platform.Tag, currentHostVersion hostversion.Version) (catalog.Location, error) {
	plugins, err := r.load(ctx)
	if err != nil {
		return catalog.Location{}, err
	}
	return Resolve(plugins, spec, currentPlatform, currentHostVersion)
}

// FetchLocation downloads loc's archive and verifies it against the
// catalog's recorded sha256; a mismatch fails the install.
func (r *RemoteCatalog) FetchLocation(ctx context.Context, loc catalog.Location) ([]byte, error) {
	data, err := r.fetch(ctx, loc.URL)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, "failed to fetch archive: "+loc.URL, err)
	}
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, loc.SHA256) {
		return nil, errs.New(errs.KindHashMismatch, "archive sha256 mismatch for "+loc.URL)
	}
	return data, nil
}

// Sync rebuilds the cached snapshot from a fresh set of upstream archive
// URLs, fanning the fetches out concurrently when the remote catalog
// needs many upstream release manifests in one batch query, and writing
// the resulting snapshot to the cache path. It returns the serialized
// snapshot and any per-archive warnings the indexer produced.
func (r *RemoteCatalog) Sync(ctx context.Context, archiveURLs []string) ([]byte, []catalog.Warning, error) {
	blobs := make([]catalog.Blob, len(archiveURLs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, url := range archiveURLs {
		i, url := i, url
		group.Go(func() error {
			data, err := r.fetch(groupCtx, url)
			if err != nil {
				return errs.Wrap(errs.KindNetwork, "failed to fetch archive: "+url, err)
			}
			blobs[i] = catalog.Blob{URL: url, Data: data}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	plugins, warnings := catalog.Index(blobs)
	snapshot, err := catalog.MarshalSnapshot(plugins)
	if err != nil {
		return nil, nil, err
	}
	if err := afero.WriteFile(r.fs, r.cachePath, snapshot, 0o644); err != nil {
		return nil, nil, errs.Wrap(errs.KindIO, "failed to write catalog cache", err)
	}
	r.cachedData = plugins
	return snapshot, warnings, nil
}
