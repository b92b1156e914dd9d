package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hopeoverture/skillpack/pkg/skill"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 1024
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Rule is a named, pure check of one aspect of the skill package
// contract. Rules never observe each other's output and never touch
// the filesystem; everything they need is snapshotted on the descriptor.
type Rule struct {
	Name  string
	Check func(*skill.Descriptor) []Issue
}

// Registry is an explicit, immutable, ordered rule set. Issues are
// reported in registry order, which keeps results stable for snapshot
// assertions. It is constructed once and passed in rather than held as
// package-level state, so tests can substitute a custom rule set.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from the given rules, preserving order.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRegistry returns the built-in rule set in its canonical order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Rule{Name: "name-format", Check: checkNameFormat},
		Rule{Name: "description-presence", Check: checkDescriptionPresence},
		Rule{Name: "description-content", Check: checkDescriptionContent},
		Rule{Name: "structure", Check: checkStructure},
		Rule{Name: "allowed-tools-format", Check: checkAllowedToolsFormat},
	)
}

// Evaluate applies every rule independently and concatenates their
// issues in registry order. It never fails: a descriptor no rule likes
// simply yields a long issue list.
func (r *Registry) Evaluate(desc *skill.Descriptor) []Issue {
	var issues []Issue
	for _, rule := range r.rules {
		issues = append(issues, rule.Check(desc)...)
	}
	return issues
}

// checkNameFormat enforces the hyphen-case naming contract: one or more
// groups of lowercase ASCII letters/digits separated by single hyphens,
// at most 64 characters. It reports exactly one issue naming the
// specific violated constraint.
func checkNameFormat(desc *skill.Descriptor) []Issue {
	name := desc.Name

	if len(name) <= maxNameLength && namePattern.MatchString(name) {
		return nil
	}

	var message string
	switch {
	case name == "":
		message = "name is required and must not be empty"
	case len(name) > maxNameLength:
		message = fmt.Sprintf("name exceeds %d characters (got %d)", maxNameLength, len(name))
	case strings.HasPrefix(name, "-"):
		message = "name must not start with a hyphen"
	case strings.HasSuffix(name, "-"):
		message = "name must not end with a hyphen"
	case strings.Contains(name, "--"):
		message = "name must not contain consecutive hyphens"
	default:
		message = fmt.Sprintf("name contains %q; only lowercase letters, digits, and single hyphens are allowed", firstInvalidNameChar(name))
	}

	return []Issue{{
		Severity: SeverityError,
		Code:     CodeNameFormat,
		Message:  message,
		Location: "name",
	}}
}

func firstInvalidNameChar(name string) string {
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return string(c)
	}
	return ""
}

// checkDescriptionPresence requires a non-empty description of at most
// 1024 characters.
func checkDescriptionPresence(desc *skill.Descriptor) []Issue {
	if desc.Description == "" {
		return []Issue{{
			Severity: SeverityError,
			Code:     CodeDescMissing,
			Message:  "description is required and must not be empty",
			Location: "description",
		}}
	}
	if len(desc.Description) > maxDescriptionLength {
		return []Issue{{
			Severity: SeverityError,
			Code:     CodeDescTooLong,
			Message:  fmt.Sprintf("description exceeds %d characters (got %d)", maxDescriptionLength, len(desc.Description)),
			Location: "description",
		}}
	}
	return nil
}

// checkDescriptionContent rejects `<` and `>` in descriptions; they are
// reserved to keep skill metadata from injecting markup into the host
// runtime's display.
func checkDescriptionContent(desc *skill.Descriptor) []Issue {
	if !strings.ContainsAny(desc.Description, "<>") {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Code:     CodeDescInvalidChars,
		Message:  "description must not contain '<' or '>'",
		Location: "description",
	}}
}

// checkStructure flags top-level entries other than SKILL.md and the
// recognized resource directories. Warnings only: the package schema is
// intentionally extensible.
func checkStructure(desc *skill.Descriptor) []Issue {
	var issues []Issue
	for _, entry := range desc.TopLevelEntries {
		if entry == skill.SkillFileName || desc.ResourceDirs[entry] {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeUnknownTopLevelEntry,
			Message:  fmt.Sprintf("unexpected top-level entry %q; expected only %s and the %s directories", entry, skill.SkillFileName, strings.Join(skill.ResourceDirNames, "/, ")+"/"),
			Location: entry,
		})
	}
	return issues
}

// checkAllowedToolsFormat warns when allowed-tools is present but does
// not parse as a comma-separated list of non-empty tokens. Warning
// only: the host runtime tolerates free-form text here.
func checkAllowedToolsFormat(desc *skill.Descriptor) []Issue {
	if !desc.HasAllowedTools {
		return nil
	}

	if strings.TrimSpace(desc.AllowedToolsRaw) == "" {
		return []Issue{{
			Severity: SeverityWarning,
			Code:     CodeAllowedToolsFormat,
			Message:  "allowed-tools is present but empty",
			Location: "allowed-tools",
		}}
	}

	for _, token := range strings.Split(desc.AllowedToolsRaw, ",") {
		if strings.TrimSpace(token) == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Code:     CodeAllowedToolsFormat,
				Message:  "allowed-tools contains an empty entry; expected a comma-separated list of tool names",
				Location: "allowed-tools",
			}}
		}
	}

	return nil
}
