package skill

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Load reads the skill package rooted at path and constructs its
// Descriptor. It fails with a *ParseError (MISSING_SKILL_FILE or
// MALFORMED_FRONTMATTER) on structural faults; missing `name` or
// `description` values are not faults here — the descriptor is built
// with empty fields and validation rules report them, so a single pass
// yields the complete issue list.
func Load(path string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missingSkillFile(path)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !info.IsDir() {
		return nil, missingSkillFile(path)
	}

	skillFile := filepath.Join(path, SkillFileName)
	content, err := os.ReadFile(skillFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missingSkillFile(path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", skillFile)
	}

	mapping, err := parseFrontmatter(content)
	if err != nil {
		return nil, malformedFrontmatter(skillFile, err.Error())
	}

	desc := &Descriptor{
		RootPath: path,
		Body:     extractBody(string(content)),
	}
	if err := projectFrontmatter(mapping, desc); err != nil {
		return nil, malformedFrontmatter(skillFile, err.Error())
	}

	if err := snapshotEntries(path, desc); err != nil {
		return nil, errors.Wrapf(err, "failed to read entries of %s", path)
	}

	return desc, nil
}

// parseFrontmatter extracts the YAML frontmatter block into an untyped
// string-keyed mapping. The block must open the file with a `---` line
// and close with another before any Markdown body.
func parseFrontmatter(content []byte) (map[string]any, error) {
	lines := strings.Split(string(content), "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return nil, errors.New("missing frontmatter: file must begin with a `---` line")
	}

	closed := false
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
	}
	if !closed {
		return nil, errors.New("missing frontmatter: no closing `---` delimiter")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	mapping, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter YAML")
	}
	if mapping == nil {
		// An empty (but correctly delimited) frontmatter block: the
		// descriptor is built with empty fields and rules report them.
		mapping = map[string]any{}
	}

	return mapping, nil
}

// projectFrontmatter projects the untyped frontmatter mapping into the
// typed descriptor. Keys outside the recognized schema are retained in
// Extra rather than dropped, so newer skill metadata still validates.
func projectFrontmatter(mapping map[string]any, desc *Descriptor) error {
	var fm frontmatter
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fm,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create frontmatter decoder")
	}
	if err := decoder.Decode(mapping); err != nil {
		return errors.Wrap(err, "frontmatter does not match the skill schema")
	}

	desc.Name = strings.TrimSpace(fm.Name)
	desc.Description = strings.TrimSpace(fm.Description)

	if _, present := mapping["allowed-tools"]; present {
		desc.HasAllowedTools = true
		desc.AllowedToolsRaw = fm.AllowedTools
		desc.AllowedTools = splitTools(fm.AllowedTools)
	}

	if len(md.Unused) > 0 {
		desc.Extra = make(map[string]any, len(md.Unused))
		for _, key := range md.Unused {
			desc.Extra[key] = mapping[key]
		}
	}

	return nil
}

// splitTools parses the comma-separated allowed-tools value into its
// trimmed, non-empty tokens, preserving source order.
func splitTools(raw string) []string {
	var tools []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			tools = append(tools, token)
		}
	}
	return tools
}

// snapshotEntries records the skill root's top-level entries and which
// recognized resource directories are present. Rules evaluate against
// this snapshot instead of re-reading the tree.
func snapshotEntries(path string, desc *Descriptor) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	desc.ResourceDirs = make(map[string]bool, len(ResourceDirNames))
	desc.TopLevelEntries = make([]string, 0, len(entries))

	for _, entry := range entries {
		desc.TopLevelEntries = append(desc.TopLevelEntries, entry.Name())
		if !entry.IsDir() {
			continue
		}
		for _, name := range ResourceDirNames {
			if entry.Name() == name {
				desc.ResourceDirs[name] = true
			}
		}
	}

	return nil
}

// extractBody removes the frontmatter block and returns the Markdown body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
