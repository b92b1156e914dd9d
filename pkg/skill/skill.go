// Package skill provides loading and typed representation of skill
// packages: directories containing a SKILL.md file with YAML frontmatter
// describing the skill, plus optional scripts/, references/ and assets/
// resource directories.
package skill

// SkillFileName is the metadata file every skill package must contain
// at its top level.
const SkillFileName = "SKILL.md"

// ResourceDirNames are the recognized optional subdirectories of a
// skill package.
var ResourceDirNames = []string{"scripts", "references", "assets"}

// Descriptor is the parsed representation of one skill package.
type Descriptor struct {
	// Name from the frontmatter `name` field; empty when absent.
	Name string
	// Description from the frontmatter `description` field; empty when absent.
	Description string
	// AllowedTools holds the trimmed, non-empty tokens of the
	// comma-separated frontmatter `allowed-tools` field, in source
	// order. Nil when the field is absent (no restriction).
	AllowedTools []string
	// AllowedToolsRaw is the unparsed `allowed-tools` value.
	AllowedToolsRaw string
	// HasAllowedTools reports whether `allowed-tools` was present at all,
	// distinguishing an absent field from an empty one.
	HasAllowedTools bool
	// RootPath is the filesystem path to the skill directory.
	RootPath string
	// ResourceDirs records which recognized resource directories exist.
	ResourceDirs map[string]bool
	// TopLevelEntries are the sorted names of every entry at the skill
	// root, snapshotted at load time so validation rules never touch
	// the filesystem.
	TopLevelEntries []string
	// Body is the Markdown content after the frontmatter block.
	Body string
	// Extra retains frontmatter keys not recognized by the schema.
	// They are ignored by validation but preserved for forward
	// compatibility.
	Extra map[string]any
}

// frontmatter is the typed projection of the recognized frontmatter keys.
type frontmatter struct {
	Name         string `mapstructure:"name"`
	Description  string `mapstructure:"description"`
	AllowedTools string `mapstructure:"allowed-tools"`
}
