// Package packaging serializes validated skill packages into
// deterministic zip archives. Enumeration order, entry metadata, and
// the embedded manifest are all normalized so that packaging the same
// tree twice yields byte-identical archives, which content-addressed
// distribution and artifact diffing rely on.
package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/hopeoverture/skillpack/pkg/skill"
	"github.com/hopeoverture/skillpack/pkg/validation"
)

// ValidationError is returned when packaging is refused because the
// skill failed validation. It carries the full result so callers can
// surface every issue, not just the first.
type ValidationError struct {
	Path   string
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("VALIDATION_FAILED: %s has %d validation issue(s)", e.Path, len(e.Result.Issues))
}

// Packager validates a skill package and, on success, archives it.
type Packager struct {
	validator Validator
	excluder  *excluder
}

// Validator is the subset of validation behavior the packager needs.
// The concrete *validation.Validator satisfies it; tests can substitute
// their own.
type Validator interface {
	ValidateDescriptor(desc *skill.Descriptor) validation.Result
}

// Option configures a Packager.
type Option func(*Packager)

// WithValidator substitutes the validator used for the pre-packaging check.
func WithValidator(v Validator) Option {
	return func(p *Packager) {
		p.validator = v
	}
}

// WithExcludePatterns appends denylist patterns to the defaults.
func WithExcludePatterns(patterns ...string) Option {
	return func(p *Packager) {
		p.excluder = newExcluder(patterns)
	}
}

// New creates a Packager with the default rule registry and exclusion
// denylist.
func New(opts ...Option) *Packager {
	p := &Packager{excluder: newExcluder(nil)}
	for _, opt := range opts {
		opt(p)
	}
	if p.validator == nil {
		p.validator = validation.New()
	}
	return p
}

// Package validates the skill at path and, when valid, writes a
// deterministic archive to outputDir/<name>.zip containing every
// non-excluded file plus an embedded manifest. The source tree is never
// mutated; outputDir is created if absent. The archive is written to a
// temporary path and renamed into place, so a failure never leaves a
// partial archive behind.
func (p *Packager) Package(path, outputDir string) (*Manifest, string, error) {
	desc, err := skill.Load(path)
	if err != nil {
		return nil, "", &ValidationError{Path: path, Result: validation.FatalResult(err)}
	}

	result := p.validator.ValidateDescriptor(desc)
	if !result.Valid {
		return nil, "", &ValidationError{Path: path, Result: result}
	}

	files, err := p.enumerate(path)
	if err != nil {
		return nil, "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, "", errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	archivePath := filepath.Join(outputDir, desc.Name+".zip")
	manifest, err := p.writeArchive(desc, files, outputDir, archivePath)
	if err != nil {
		return nil, "", err
	}

	return manifest, archivePath, nil
}

// enumerate walks the skill root, applies the exclusion denylist, and
// returns the remaining slash-relative file paths sorted
// lexicographically. The sort is load-bearing: it fixes both the
// manifest order and the archive entry order.
func (p *Packager) enumerate(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if p.excluder.matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if rel == ManifestEntryName {
			return errors.Errorf("%s is reserved for the archive manifest; rename the source file", ManifestEntryName)
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// writeArchive streams the enumerated files into a zip at a temporary
// path, hashing each as it goes, appends the manifest as the final
// entry, and atomically renames the finished archive into place.
func (p *Packager) writeArchive(desc *skill.Descriptor, files []string, outputDir, archivePath string) (manifest *Manifest, err error) {
	tmp, err := os.CreateTemp(outputDir, ".skillpack-*.zip")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary archive")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)

	manifest = &Manifest{
		SkillName:   desc.Name,
		Files:       make([]FileEntry, 0, len(files)),
		CreatedFrom: desc.RootPath,
	}

	for _, rel := range files {
		entry, copyErr := copyEntry(zw, desc.RootPath, rel)
		if copyErr != nil {
			err = copyErr
			return nil, err
		}
		manifest.Files = append(manifest.Files, entry)
	}

	manifestBytes, err := manifest.JSON()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode manifest")
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestEntryName, Method: zip.Deflate})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add manifest entry")
	}
	if _, err = w.Write(manifestBytes); err != nil {
		return nil, errors.Wrap(err, "failed to write manifest entry")
	}

	if err = zw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize archive")
	}
	if err = tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close archive")
	}

	if err = os.Rename(tmpPath, archivePath); err != nil {
		return nil, errors.Wrapf(err, "failed to move archive to %s", archivePath)
	}

	return manifest, nil
}

// copyEntry writes one source file into the archive with normalized
// metadata (no timestamp, no mode bits) and returns its manifest entry.
// A file that vanished since enumeration aborts the whole operation.
func copyEntry(zw *zip.Writer, root, rel string) (FileEntry, error) {
	fullPath := filepath.Join(root, filepath.FromSlash(rel))

	f, err := os.Open(fullPath)
	if err != nil {
		return FileEntry{}, errors.Wrapf(err, "failed to open %s", rel)
	}
	defer f.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: rel, Method: zip.Deflate})
	if err != nil {
		return FileEntry{}, errors.Wrapf(err, "failed to add archive entry %s", rel)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(w, hasher), f)
	if err != nil {
		return FileEntry{}, errors.Wrapf(err, "failed to archive %s", rel)
	}

	return FileEntry{
		Path:   rel,
		Size:   size,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}
