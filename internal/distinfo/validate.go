package distinfo

import (
	"fmt"
	"regexp"

	"github.com/drahosp/luadist/internal/version"
)

// nameRe matches the character class shared by dist names and versions:
// lowercase alphanumeric plus ".:_-".
var nameRe = regexp.MustCompile(`^[a-z0-9.:_-]+$`)

// archTypeRe matches the character class for arch and type: alphanumeric.
var archTypeRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Validate enforces the name/arch/type character-class rules and checks
// that every depends/conflicts/provides entry parses as a well-formed
// constraint. It does not apply defaults; call ApplyDefaults first.
func Validate(d *DistInfo) error {
	if d.Name == "" {
		return fmt.Errorf("distinfo: name is required")
	}
	if !nameRe.MatchString(d.Name) {
		return fmt.Errorf("distinfo: invalid name %q", d.Name)
	}
	if d.Version == "" {
		return fmt.Errorf("distinfo: version is required")
	}
	if !nameRe.MatchString(d.Version) {
		return fmt.Errorf("distinfo: invalid version %q", d.Version)
	}
	if !archTypeRe.MatchString(d.Arch) {
		return fmt.Errorf("distinfo: invalid arch %q", d.Arch)
	}
	if !archTypeRe.MatchString(d.Type) {
		return fmt.Errorf("distinfo: invalid type %q", d.Type)
	}
	if err := validateConstraintSpec(d.Depends); err != nil {
		return fmt.Errorf("distinfo: depends: %w", err)
	}
	if err := validateConstraintSpec(d.Conflicts); err != nil {
		return fmt.Errorf("distinfo: conflicts: %w", err)
	}
	if err := validateConstraintSpec(d.Provides); err != nil {
		return fmt.Errorf("distinfo: provides: %w", err)
	}
	return nil
}

// validateConstraintSpec recursively checks that every entry of a
// constraint list parses into a NameConstraint with a non-empty name,
// descending through arch/type-keyed maps.
func validateConstraintSpec(s *ConstraintSpec) error {
	if s == nil {
		return nil
	}
	if s.IsKeyed() {
		for key, sub := range s.Keyed {
			if err := validateConstraintSpec(sub); err != nil {
				return fmt.Errorf("variant %q: %w", key, err)
			}
		}
		return nil
	}
	for _, entry := range s.List {
		nc := version.ParseConstraint(entry)
		if nc.Name == "" {
			return fmt.Errorf("malformed constraint %q", entry)
		}
	}
	return nil
}
