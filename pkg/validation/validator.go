package validation

import (
	"github.com/pkg/errors"

	"github.com/hopeoverture/skillpack/pkg/skill"
)

// Validator runs a rule registry against one skill package at a time.
// It holds no mutable state and is safe for concurrent use across
// different paths.
type Validator struct {
	registry *Registry
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry substitutes a custom rule registry.
func WithRegistry(registry *Registry) Option {
	return func(v *Validator) {
		v.registry = registry
	}
}

// New creates a Validator, defaulting to the built-in rule registry.
func New(opts ...Option) *Validator {
	v := &Validator{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate loads the skill package at path and evaluates every
// registered rule against it. A fatal load failure yields a Result with
// exactly one error-severity issue; rules are never run against a
// descriptor that could not be constructed.
func (v *Validator) Validate(path string) Result {
	desc, err := skill.Load(path)
	if err != nil {
		return FatalResult(err)
	}
	return v.ValidateDescriptor(desc)
}

// ValidateDescriptor evaluates the rule registry against an
// already-loaded descriptor. Callers that need both the descriptor and
// the result (the packager does) use this to avoid re-reading the tree.
func (v *Validator) ValidateDescriptor(desc *skill.Descriptor) Result {
	return newResult(v.registry.Evaluate(desc))
}

// FatalResult wraps a load failure as the single-issue Result the
// validator reports for it.
func FatalResult(err error) Result {
	return newResult([]Issue{fatalIssue(err)})
}

// fatalIssue converts a load failure into the single issue that
// represents it: parse errors keep their structural code, anything else
// (e.g. a directory that vanished mid-read) surfaces as IO_ERROR.
func fatalIssue(err error) Issue {
	var parseErr *skill.ParseError
	if errors.As(err, &parseErr) {
		return Issue{
			Severity: SeverityError,
			Code:     parseErr.Code,
			Message:  parseErr.Message,
			Location: parseErr.Path,
		}
	}
	return Issue{
		Severity: SeverityError,
		Code:     CodeIOError,
		Message:  err.Error(),
	}
}
