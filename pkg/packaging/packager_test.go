package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeoverture/skillpack/pkg/skill"
	"github.com/hopeoverture/skillpack/pkg/validation"
)

func writeValidSkill(t *testing.T, name string) string {
	t.Helper()
	tmpDir := t.TempDir()
	content := fmt.Sprintf("---\nname: %s\ndescription: A packaged test skill\n---\n\n# Body\n", name)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "SKILL.md"), []byte(content), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "scripts", "run.sh"), []byte("#!/bin/sh\necho run\n"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "references"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "references", "guide.md"), []byte("# Guide\n"), 0o644))

	return tmpDir
}

func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	entries := make(map[string][]byte, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = data
	}
	return entries
}

func TestPackage(t *testing.T) {
	t.Run("packages a valid skill", func(t *testing.T) {
		skillDir := writeValidSkill(t, "packaged-skill")
		outputDir := filepath.Join(t.TempDir(), "dist")

		manifest, archivePath, err := New().Package(skillDir, outputDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(outputDir, "packaged-skill.zip"), archivePath)
		assert.Equal(t, "packaged-skill", manifest.SkillName)
		assert.Equal(t, skillDir, manifest.CreatedFrom)

		wantPaths := []string{"SKILL.md", "references/guide.md", "scripts/run.sh"}
		gotPaths := make([]string, 0, len(manifest.Files))
		for _, entry := range manifest.Files {
			gotPaths = append(gotPaths, entry.Path)
		}
		assert.Equal(t, wantPaths, gotPaths)

		entries := readArchive(t, archivePath)
		require.Contains(t, entries, ManifestEntryName)
		for _, rel := range wantPaths {
			require.Contains(t, entries, rel)
		}
	})

	t.Run("manifest matches a direct walk of the source", func(t *testing.T) {
		skillDir := writeValidSkill(t, "round-trip")
		outputDir := t.TempDir()

		manifest, archivePath, err := New().Package(skillDir, outputDir)
		require.NoError(t, err)

		// Manifest read back from the archive matches the returned one.
		entries := readArchive(t, archivePath)
		embedded, err := ParseManifest(entries[ManifestEntryName])
		require.NoError(t, err)
		assert.Equal(t, manifest, embedded)

		// Each entry's size and hash match the source file.
		for _, entry := range manifest.Files {
			data, err := os.ReadFile(filepath.Join(skillDir, filepath.FromSlash(entry.Path)))
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), entry.Size, entry.Path)
			sum := sha256.Sum256(data)
			assert.Equal(t, hex.EncodeToString(sum[:]), entry.SHA256, entry.Path)

			// Archive content matches the source byte for byte.
			assert.Equal(t, data, entries[entry.Path], entry.Path)
		}
	})

	t.Run("packaging twice is byte-identical", func(t *testing.T) {
		skillDir := writeValidSkill(t, "idempotent-skill")
		outputDir := t.TempDir()

		packager := New()
		_, archivePath, err := packager.Package(skillDir, outputDir)
		require.NoError(t, err)
		first, err := os.ReadFile(archivePath)
		require.NoError(t, err)

		_, _, err = packager.Package(skillDir, outputDir)
		require.NoError(t, err)
		second, err := os.ReadFile(archivePath)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("refuses an invalid skill and writes nothing", func(t *testing.T) {
		tmpDir := t.TempDir()
		content := "---\nname: Entity_Generator\ndescription: Generates entities\n---\nbody\n"
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "SKILL.md"), []byte(content), 0o644))
		outputDir := filepath.Join(t.TempDir(), "dist")

		_, _, err := New().Package(tmpDir, outputDir)
		require.Error(t, err)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Len(t, validationErr.Result.Issues, 1)
		assert.Equal(t, validation.CodeNameFormat, validationErr.Result.Issues[0].Code)

		_, statErr := os.Stat(outputDir)
		assert.True(t, os.IsNotExist(statErr), "output dir must not be created for invalid skills")
	})

	t.Run("missing SKILL.md surfaces as validation failure", func(t *testing.T) {
		_, _, err := New().Package(t.TempDir(), t.TempDir())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Len(t, validationErr.Result.Issues, 1)
		assert.Equal(t, skill.CodeMissingSkillFile, validationErr.Result.Issues[0].Code)
	})

	t.Run("excludes VCS and build artifacts", func(t *testing.T) {
		skillDir := writeValidSkill(t, "clean-skill")
		require.NoError(t, os.MkdirAll(filepath.Join(skillDir, "scripts", "__pycache__"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "scripts", "__pycache__", "run.cpython-312.pyc"), []byte("bytecode"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "scripts", "helper.pyc"), []byte("bytecode"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(skillDir, ".git"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, ".git", "HEAD"), []byte("ref: main"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, ".DS_Store"), []byte("junk"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "references", ".hidden"), []byte("junk"), 0o644))

		manifest, archivePath, err := New().Package(skillDir, t.TempDir())
		require.NoError(t, err)

		for _, entry := range manifest.Files {
			assert.NotContains(t, entry.Path, ".git")
			assert.NotContains(t, entry.Path, "__pycache__")
			assert.NotContains(t, entry.Path, ".DS_Store")
			assert.NotContains(t, entry.Path, ".hidden")
			assert.NotContains(t, entry.Path, ".pyc")
		}

		entries := readArchive(t, archivePath)
		assert.Len(t, entries, len(manifest.Files)+1) // files + manifest
	})

	t.Run("extra exclude patterns", func(t *testing.T) {
		skillDir := writeValidSkill(t, "extra-excludes")
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "references", "draft.tmp"), []byte("wip"), 0o644))

		packager := New(WithExcludePatterns("**/*.tmp"))
		manifest, _, err := packager.Package(skillDir, t.TempDir())
		require.NoError(t, err)

		for _, entry := range manifest.Files {
			assert.NotContains(t, entry.Path, ".tmp")
		}
	})

	t.Run("rejects a reserved manifest.json source file", func(t *testing.T) {
		skillDir := writeValidSkill(t, "manifest-collision")
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "manifest.json"), []byte("{}"), 0o644))
		outputDir := filepath.Join(t.TempDir(), "dist")

		_, _, err := New().Package(skillDir, outputDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		skillDir := writeValidSkill(t, "no-partials")
		outputDir := t.TempDir()

		_, archivePath, err := New().Package(skillDir, outputDir)
		require.NoError(t, err)

		dirEntries, err := os.ReadDir(outputDir)
		require.NoError(t, err)
		require.Len(t, dirEntries, 1)
		assert.Equal(t, filepath.Base(archivePath), dirEntries[0].Name())
	})
}

func TestPackageWithCustomValidator(t *testing.T) {
	skillDir := writeValidSkill(t, "strict-skill")

	alwaysFail := validation.Rule{Name: "always-fail", Check: func(*skill.Descriptor) []validation.Issue {
		return []validation.Issue{{
			Severity: validation.SeverityError,
			Code:     "ALWAYS_FAIL",
			Message:  "this registry accepts nothing",
		}}
	}}

	strict := validation.New(validation.WithRegistry(validation.NewRegistry(alwaysFail)))

	_, _, err := New(WithValidator(strict)).Package(skillDir, t.TempDir())
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.False(t, validationErr.Result.Valid)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Path: "some/skill", Result: validation.Result{
		Issues: []validation.Issue{{Severity: validation.SeverityError, Code: "X", Message: "y"}},
	}}
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	assert.Contains(t, err.Error(), "some/skill")
	assert.True(t, errors.As(error(err), new(*ValidationError)))
}
