// Package discovery finds skill packages under a directory tree. A
// skill package is any directory containing a SKILL.md file; catalog
// repositories nest them under category directories, so the search is
// recursive.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/hopeoverture/skillpack/pkg/skill"
)

// skippedDirs are never descended into during discovery.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// FindSkillDirs walks root and returns every directory containing a
// SKILL.md file, sorted lexicographically. Nested skills inside another
// skill's resource directories are not expected, but discovery does not
// forbid them; validation will flag the structure.
func FindSkillDirs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	var skillDirs []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}

		if d.IsDir() && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}

		if !d.IsDir() && d.Name() == skill.SkillFileName {
			skillDirs = append(skillDirs, filepath.Dir(path))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(skillDirs)
	return skillDirs, nil
}
