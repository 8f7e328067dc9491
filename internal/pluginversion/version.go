// Package pluginversion implements the plugin-version algebra: normalized
// dotted-decimal versions ("1.0" -> 1.0.0, leading "v" stripped, leading
// zeros on a component stripped) and comma-combined specifiers over the
// conventional comparison operators.
//
// There is no pre-release or build-metadata concept here: any input that
// looks pre-release-shaped is rejected rather than silently accepted.
package pluginversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// Version is a normalized three-component dotted-decimal plugin version.
type Version struct {
	Major, Minor, Patch int
}

// Parse normalizes and validates a plugin version string.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, errs.New(errs.KindValidation, "empty plugin version")
	}
	if strings.ContainsAny(trimmed, "-+") {
		return Version{}, errs.New(errs.KindValidation, fmt.Sprintf("pre-release/build metadata not supported: %q", s))
	}

	body := trimmed
	if len(body) > 0 && (body[0] == 'v' || body[0] == 'V') {
		body = body[1:]
	}
	if body == "" {
		return Version{}, errs.New(errs.KindValidation, fmt.Sprintf("invalid plugin version: %q", s))
	}

	parts := strings.Split(body, ".")
	if len(parts) > 3 {
		return Version{}, errs.New(errs.KindValidation, fmt.Sprintf("invalid plugin version: %q", s))
	}

	nums := [3]int{0, 0, 0}
	for i, p := range parts {
		if p == "" {
			return Version{}, errs.New(errs.KindValidation, fmt.Sprintf("invalid plugin version component in %q", s))
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return Version{}, errs.New(errs.KindValidation, fmt.Sprintf("non-numeric plugin version component in %q", s))
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, errs.Wrap(errs.KindValidation, fmt.Sprintf("invalid plugin version component in %q", s), err)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the normalized, leading-zero-stripped form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	return cmpInt(v.Patch, other.Patch)
}

func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// clause is a single "<op><version>" term in a specifier.
type clause struct {
	op      string
	version Version
}

func (c clause) matches(v Version) bool {
	cmp := v.Compare(c.version)
	switch c.op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	default:
		return false
	}
}

// Specifier is a comma-combined set of version clauses; a plugin version
// must satisfy every clause to match.
type Specifier struct {
	clauses []clause
}

var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// ParseSpecifier parses a specifier string. An empty string matches every
// version, equivalent to ">=0".
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Specifier{clauses: []clause{{op: ">=", version: Version{}}}}, nil
	}

	var clauses []clause
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		var op string
		for _, candidate := range operators {
			if strings.HasPrefix(term, candidate) {
				op = candidate
				break
			}
		}
		if op == "" {
			return Specifier{}, errs.New(errs.KindValidation, fmt.Sprintf("invalid specifier clause: %q", term))
		}
		rest := strings.TrimSpace(term[len(op):])
		ver, err := Parse(rest)
		if err != nil {
			return Specifier{}, err
		}
		clauses = append(clauses, clause{op: op, version: ver})
	}
	if len(clauses) == 0 {
		return Specifier{}, errs.New(errs.KindValidation, fmt.Sprintf("empty specifier: %q", s))
	}
	return Specifier{clauses: clauses}, nil
}

// Matches reports whether v satisfies every clause in the specifier.
func (sp Specifier) Matches(v Version) bool {
	for _, c := range sp.clauses {
		if !c.matches(v) {
			return false
		}
	}
	return true
}

// String reconstructs a comma-joined specifier string.
func (sp Specifier) String() string {
	parts := make([]string, len(sp.clauses))
	for i, c := range sp.clauses {
		parts[i] = c.op + c.version.String()
	}
	return strings.Join(parts, ",")
}
