// Package validation checks skill packages against the structural
// contract consumed by the host runtime. A fixed registry of
// independent rules is evaluated against a loaded descriptor; every
// rule runs regardless of what the others find, so a single pass
// produces the complete diagnostic list.
package validation

import "fmt"

// Severity classifies validation issues. Errors block packaging;
// warnings exist purely for author feedback.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by the built-in rules. Parse-level fatal codes
// (MISSING_SKILL_FILE, MALFORMED_FRONTMATTER) are defined in pkg/skill
// and surface here as single-issue results.
const (
	CodeNameFormat           = "NAME_FORMAT"
	CodeDescMissing          = "DESC_MISSING"
	CodeDescTooLong          = "DESC_TOO_LONG"
	CodeDescInvalidChars     = "DESC_INVALID_CHARS"
	CodeUnknownTopLevelEntry = "UNKNOWN_TOP_LEVEL_ENTRY"
	CodeAllowedToolsFormat   = "ALLOWED_TOOLS_FORMAT"
	CodeIOError              = "IO_ERROR"
)

// Issue is one detected violation of the skill package contract.
type Issue struct {
	Severity Severity
	Code     string
	Message  string
	// Location is the path or field the issue pertains to; may be empty.
	Location string
}

// String renders the issue in the CLI's one-line format.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Code, i.Message)
}

// Result is the outcome of validating one skill package. It is an
// immutable value: issues appear in rule-registry order and Valid is
// derived once at construction.
type Result struct {
	// Issues in registry evaluation order, stable across runs.
	Issues []Issue
	// Valid is true iff no issue has error severity. Warnings do not
	// invalidate a skill.
	Valid bool
}

func newResult(issues []Issue) Result {
	valid := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			valid = false
			break
		}
	}
	return Result{Issues: issues, Valid: valid}
}
