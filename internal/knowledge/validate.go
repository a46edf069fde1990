package knowledge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

var bankValidate = validator.New()

// validateDocument checks struct tags, the format version and the cross-field
// rules the tags cannot express. All problems are reported together.
func validateDocument(doc *document) error {
	if err := bankValidate.Struct(doc); err != nil {
		return fmt.Errorf("validate bank: %w", err)
	}

	v := doc.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, doc.Version)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, doc.Version, SupportedMajor)
	}

	var errs []string
	seen := make(map[string]bool, len(doc.Topics))
	for _, t := range doc.Topics {
		if t.Key != strings.ToLower(t.Key) {
			errs = append(errs, fmt.Sprintf("topic %q: key must be lower case", t.Key))
		}
		if seen[t.Key] {
			errs = append(errs, fmt.Sprintf("duplicate topic: %q", t.Key))
		}
		seen[t.Key] = true

		for i, ex := range t.Exercises {
			if ex.Type == MultipleChoice && !slices.Contains(ex.Options, ex.Answer) {
				errs = append(errs, fmt.Sprintf("topic %q exercise %d: answer %q is not an option", t.Key, i, ex.Answer))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("knowledge bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
