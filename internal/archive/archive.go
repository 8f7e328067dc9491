// Package archive provides a streaming, read-only view over a compressed
// plugin archive held entirely in memory. It never writes a member to
// disk — extraction with its safety gate is the installer's job
// (internal/installer).
package archive

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// Archive is an opened, in-memory plugin archive blob.
type Archive struct {
	blob    []byte
	zipFile *zip.Reader
	byName  map[string]*zip.File
}

// Open parses blob as a zip archive. The blob is retained so SHA256 and Raw
// can be computed without re-reading the source.
func Open(blob []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, "not a valid archive", err)
	}

	byName := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		byName[f.Name] = f
	}

	return &Archive{blob: blob, zipFile: r, byName: byName}, nil
}

// Raw returns the archive's original bytes.
func (a *Archive) Raw() []byte {
	return a.blob
}

// SHA256 returns the lowercase hex content hash of the archive blob, used
// for the remote catalog repository's integrity check.
func (a *Archive) SHA256() string {
	sum := sha256.Sum256(a.blob)
	return hex.EncodeToString(sum[:])
}

// Member describes one entry inside the archive.
type Member struct {
	Name    string
	IsDir   bool
	Symlink bool
	Mode    uint32
}

// Members lists every entry in the archive, in deterministic (sorted) order.
func (a *Archive) Members() []Member {
	out := make([]Member, 0, len(a.zipFile.File))
	for _, f := range a.zipFile.File {
		out = append(out, Member{
			Name:    f.Name,
			IsDir:   f.FileInfo().IsDir(),
			Symlink: f.Mode()&fs.ModeSymlink != 0, // zip maps a stored Unix S_IFLNK mode to fs.ModeSymlink
			Mode:    uint32(f.Mode()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether name exists in the archive (exact match, no path
// normalization — callers are expected to have already normalized the path
// they're looking for).
func (a *Archive) Has(name string) bool {
	_, ok := a.byName[name]
	return ok
}

// OpenMember returns a reader for the named member. The caller must Close it.
func (a *Archive) OpenMember(name string) (io.ReadCloser, error) {
	f, ok := a.byName[name]
	if !ok {
		return nil, errs.New(errs.KindValidation, fmt.Sprintf("archive member not found: %s", name))
	}
	if f.FileInfo().IsDir() {
		return nil, errs.New(errs.KindValidation, fmt.Sprintf("archive member is a directory: %s", name))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to open archive member: %s", name), err)
	}
	return rc, nil
}

// ReadMember reads the full contents of the named member.
func (a *Archive) ReadMember(name string) ([]byte, error) {
	rc, err := a.OpenMember(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ZipFiles returns the underlying per-entry handles, for the installer's
// extraction pass (it needs zip.File.Mode()/ModTime()/FileInfo() directly).
func (a *Archive) ZipFiles() []*zip.File {
	return a.zipFile.File
}
