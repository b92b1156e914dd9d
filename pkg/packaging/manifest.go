package packaging

import "encoding/json"

// ManifestEntryName is the archive entry the manifest is embedded
// under. The name is reserved: a skill file with the same top-level
// name would be indistinguishable from the manifest, so packaging
// rejects it.
const ManifestEntryName = "manifest.json"

// Manifest lists the contents of a packaged skill archive. Files are
// sorted lexicographically by relative path, which makes the manifest
// (and the archive built from it) reproducible across machines and
// runs.
type Manifest struct {
	// SkillName is the validated frontmatter name of the skill.
	SkillName string `json:"skillName"`
	// Files lists every packaged file in sorted relative-path order.
	Files []FileEntry `json:"files"`
	// CreatedFrom is the source skill root the archive was built from.
	CreatedFrom string `json:"createdFrom"`
}

// FileEntry describes one file inside a packaged archive.
type FileEntry struct {
	// Path is the slash-separated path relative to the skill root.
	Path string `json:"path"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// SHA256 is the hex-encoded digest of the file content.
	SHA256 string `json:"sha256"`
}

// JSON renders the manifest as indented JSON, the exact bytes embedded
// in the archive.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest decodes manifest bytes, e.g. read back out of an
// archive for reproducibility verification.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
