package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// AnyVersionText is the version clause assumed when a specifier has none.
const AnyVersionText = "*"

// VersionParser turns the text of a version clause, such as ">=1.0, <2",
// into a Constraint.
type VersionParser interface {
	ParseConstraint(text string) (*Constraint, error)
}

// Constraint is a parsed version range. String returns the clause exactly as
// it was written in the specifier.
type Constraint struct {
	raw         string
	constraints *semver.Constraints
}

// NewConstraint wraps already parsed semver constraints. raw is the text
// reported by String.
func NewConstraint(raw string, c *semver.Constraints) *Constraint {
	return &Constraint{raw: raw, constraints: c}
}

// AnyVersion returns the unconstrained constraint.
func AnyVersion() *Constraint {
	c, _ := semver.NewConstraint(AnyVersionText)
	return &Constraint{raw: AnyVersionText, constraints: c}
}

func (c *Constraint) String() string {
	return c.raw
}

// IsAny reports whether c places no restriction on the version.
func (c *Constraint) IsAny() bool {
	return c.raw == AnyVersionText
}

// Check reports whether version satisfies the constraint.
func (c *Constraint) Check(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return c.constraints.Check(v), nil
}

// Validate returns every reason version fails the constraint.
func (c *Constraint) Validate(version string) (bool, []error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, []error{fmt.Errorf("invalid version %q: %w", version, err)}
	}
	return c.constraints.Validate(v)
}

func (c *Constraint) MarshalText() ([]byte, error) {
	return []byte(c.raw), nil
}

var errArbitraryEquality = errors.New("arbitrary equality (===) is not supported")

// SemverParser maps PEP 440 comparison clauses onto semantic version
// constraints. Release segments beyond major.minor.patch, epochs, and
// pre-release spellings without a hyphen are rejected.
type SemverParser struct{}

// ParseConstraint implements VersionParser.
func (SemverParser) ParseConstraint(text string) (*Constraint, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == AnyVersionText {
		return AnyVersion(), nil
	}

	var clauses []string
	for _, item := range strings.Split(text, ",") {
		clause, err := translateClause(strings.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	c, err := semver.NewConstraint(strings.Join(clauses, ", "))
	if err != nil {
		return nil, err
	}
	return &Constraint{raw: text, constraints: c}, nil
}

// operators in match order; longer spellings first
var operators = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func splitClause(clause string) (string, string) {
	for _, op := range operators {
		if strings.HasPrefix(clause, op) {
			return op, strings.TrimSpace(clause[len(op):])
		}
	}
	return "", clause
}

func translateClause(clause string) (string, error) {
	op, version := splitClause(clause)
	if version == "" {
		return "", fmt.Errorf("missing version in %q", clause)
	}

	switch op {
	case "":
		return "", fmt.Errorf("missing comparison operator in %q", clause)
	case "===":
		return "", errArbitraryEquality
	case "==", "!=":
		target := "="
		if op == "!=" {
			target = "!="
		}
		if prefix, ok := strings.CutSuffix(version, ".*"); ok {
			if _, err := semver.NewVersion(prefix); err != nil {
				return "", fmt.Errorf("invalid version %q: %w", version, err)
			}
			return target + version, nil
		}
		if err := checkVersion(version); err != nil {
			return "", err
		}
		return target + version, nil
	case "~=":
		return compatibleRelease(version)
	default:
		if err := checkVersion(version); err != nil {
			return "", err
		}
		return op + version, nil
	}
}

func checkVersion(version string) error {
	if strings.Contains(version, "*") {
		return fmt.Errorf("wildcard not allowed in %q", version)
	}
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	return nil
}

// compatibleRelease expands ~=X.Y to >=X.Y, <X+1 and ~=X.Y.Z to
// >=X.Y.Z, <X.Y+1.
func compatibleRelease(version string) (string, error) {
	if err := checkVersion(version); err != nil {
		return "", err
	}
	v, _ := semver.NewVersion(version)

	release := strings.TrimPrefix(version, "v")
	if idx := strings.IndexAny(release, "-+"); idx >= 0 {
		release = release[:idx]
	}

	var upper semver.Version
	switch strings.Count(release, ".") {
	case 1:
		upper = v.IncMajor()
	case 2:
		upper = v.IncMinor()
	default:
		return "", fmt.Errorf("compatible release %q needs at least two release segments", version)
	}
	return fmt.Sprintf(">=%s, <%s", version, upper.String()), nil
}
