// Package hostversion implements the host-tool version algebra: one- or
// two-component versions with an optional "spN" service-pack suffix,
// normalized to three components with the
// service-pack integer in the patch slot ("9.1sp2" -> 9.1.2), so ordering
// is a plain numeric compare ("9.1" < "9.1sp1" < "9.2").
package hostversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// Version is a normalized host-tool version: major.minor.servicePack.
type Version struct {
	Major, Minor, ServicePack int
}

var errInvalid = func(s string) error {
	return errs.New(errs.KindValidation, fmt.Sprintf("invalid host-tool version: %q", s))
}

// literal parses "9", "9.1", or "9.1sp2" into its components plus how many
// dot-separated numeric components were explicit (1 or 2) and whether a
// three-component dotted literal ("9.1.2") was used instead — a form
// manifests may not use in their hostVersions field, but the algebra
// itself still understands it, matching it exactly rather than treating
// minor as a wildcard.
type literal struct {
	major, minor, servicePack int
	components                int // 1, 2, or 3 (3 = explicit three-dot literal)
	explicitServicePack        bool
}

func parseLiteral(s string) (literal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return literal{}, errInvalid(s)
	}

	if strings.Count(s, ".") == 2 && !strings.Contains(s, "sp") {
		parts := strings.Split(s, ".")
		nums := make([]int, 3)
		for i, p := range parts {
			n, err := atoiStrict(p)
			if err != nil {
				return literal{}, errInvalid(s)
			}
			nums[i] = n
		}
		return literal{major: nums[0], minor: nums[1], servicePack: nums[2], components: 3}, nil
	}

	base := s
	servicePack := 0
	explicitSP := false
	if idx := strings.Index(s, "sp"); idx >= 0 {
		base = s[:idx]
		spStr := s[idx+2:]
		n, err := atoiStrict(spStr)
		if err != nil {
			return literal{}, errInvalid(s)
		}
		servicePack = n
		explicitSP = true
	}

	if base == "" {
		return literal{}, errInvalid(s)
	}
	parts := strings.Split(base, ".")
	if len(parts) > 2 {
		return literal{}, errInvalid(s)
	}
	major, err := atoiStrict(parts[0])
	if err != nil {
		return literal{}, errInvalid(s)
	}
	minor := 0
	components := 1
	if len(parts) == 2 {
		minor, err = atoiStrict(parts[1])
		if err != nil {
			return literal{}, errInvalid(s)
		}
		components = 2
	}

	return literal{major: major, minor: minor, servicePack: servicePack, components: components, explicitServicePack: explicitSP}, nil
}

func atoiStrict(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", s)
		}
	}
	return strconv.Atoi(s)
}

// Parse normalizes a concrete host-tool version string (not a specifier).
func Parse(s string) (Version, error) {
	lit, err := parseLiteral(s)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: lit.major, Minor: lit.minor, ServicePack: lit.servicePack}, nil
}

// String renders the normalized "major.minor.servicePack" form. Use Display
// for the conventional "9.1sp2" rendering.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.ServicePack)
}

// Display renders the conventional spN form, omitting the suffix for sp0.
func (v Version) Display() string {
	if v.ServicePack == 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d.%dsp%d", v.Major, v.Minor, v.ServicePack)
}

// Compare gives a total numeric order over the normalized three-tuple:
// "9.1" < "9.1sp1" < "9.2".
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	return cmpInt(v.ServicePack, other.ServicePack)
}

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

type clause struct {
	op      string
	literal literal
}

func (c clause) version() Version {
	return Version{Major: c.literal.major, Minor: c.literal.minor, ServicePack: c.literal.servicePack}
}

// wildcardEquality reports whether "==" on this clause should ignore the
// service-pack component (true for bare "9" / "9.1" literals; false once
// the literal pins a service pack explicitly, or spells out all three
// components).
func (c clause) wildcardEquality() bool {
	return c.literal.components != 3 && !c.literal.explicitServicePack
}

func (c clause) matches(v Version) bool {
	lv := c.version()
	switch c.op {
	case "==":
		if c.wildcardEquality() {
			return v.Major == lv.Major && v.Minor == lv.Minor
		}
		return v.Compare(lv) == 0
	case "!=":
		if c.wildcardEquality() {
			return !(v.Major == lv.Major && v.Minor == lv.Minor)
		}
		return v.Compare(lv) != 0
	case ">=":
		return v.Compare(lv) >= 0
	case "<=":
		return v.Compare(lv) <= 0
	case ">":
		return v.Compare(lv) > 0
	case "<":
		return v.Compare(lv) < 0
	default:
		return false
	}
}

// Specifier is a comma-combined set of host-version clauses.
type Specifier struct {
	clauses []clause
	raw     string
}

var operators = []string{">=", "<=", "==", "!=", ">", "<"}

func parseSpecifier(s string, allowThreeComponent bool) (Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		// empty/absent specifier matches all host versions
		return Specifier{clauses: []clause{{op: ">=", literal: literal{}}}, raw: s}, nil
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
			return Specifier{}, errs.New(errs.KindValidation, fmt.Sprintf("invalid host-version specifier clause: %q", term))
		}
		rest := strings.TrimSpace(term[len(op):])
		lit, err := parseLiteral(rest)
		if err != nil {
			return Specifier{}, err
		}
		if lit.components == 3 && !allowThreeComponent {
			return Specifier{}, errs.New(errs.KindValidation,
				fmt.Sprintf("host-version specifiers in manifests may not use three-component literals: %q", term))
		}
		clauses = append(clauses, clause{op: op, literal: lit})
	}
	if len(clauses) == 0 {
		return Specifier{}, errs.New(errs.KindValidation, fmt.Sprintf("empty host-version specifier: %q", s))
	}
	return Specifier{clauses: clauses, raw: s}, nil
}

// ParseSpecifier parses a general host-version specifier, including the
// three-component literal form ("==9.1.0") which matches only the base
// version rather than every service pack of 9.1.
func ParseSpecifier(s string) (Specifier, error) {
	return parseSpecifier(s, true)
}

// ParseManifestSpecifier parses a specifier as it may legally appear inside
// a plugin manifest's hostVersions field: the three-component literal form
// is rejected. internal/catalog applies it to every manifest it indexes.
func ParseManifestSpecifier(s string) (Specifier, error) {
	return parseSpecifier(s, false)
}

// Matches reports whether v satisfies every clause.
func (sp Specifier) Matches(v Version) bool {
	for _, c := range sp.clauses {
		if !c.matches(v) {
			return false
		}
	}
	return true
}

// String returns the specifier's original source text.
func (sp Specifier) String() string {
	return sp.raw
}
