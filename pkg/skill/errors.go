package skill

import "fmt"

// Parse error codes. These identify structural faults that make a
// descriptor impossible to construct, as opposed to validation issues
// reported against a constructed descriptor.
const (
	CodeMissingSkillFile     = "MISSING_SKILL_FILE"
	CodeMalformedFrontmatter = "MALFORMED_FRONTMATTER"
)

// ParseError is a fatal, structural failure to load a skill package.
// It halts validation: no rules run against a descriptor that could
// not be constructed.
type ParseError struct {
	Code    string
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func missingSkillFile(path string) *ParseError {
	return &ParseError{
		Code:    CodeMissingSkillFile,
		Path:    path,
		Message: fmt.Sprintf("no %s found in %s", SkillFileName, path),
	}
}

func malformedFrontmatter(path, detail string) *ParseError {
	return &ParseError{
		Code:    CodeMalformedFrontmatter,
		Path:    path,
		Message: detail,
	}
}
