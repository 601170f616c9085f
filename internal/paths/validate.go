package paths

import (
	"fmt"
	"regexp"
)

// Contact identifiers double as directory names under the data root, so
// they are restricted to phone-number-like strings with no path
// metacharacters.
var numberRegexp = regexp.MustCompile(`^\+?[0-9][0-9 -]{0,30}$`)

// ValidateNumber checks that a contact identifier is safe to use as a
// directory name and plausibly E.164-like.
func ValidateNumber(number string) error {
	if !numberRegexp.MatchString(number) {
		return fmt.Errorf("invalid contact identifier %q: expected a phone-number-like string (e.g. +4479...)", number)
	}
	return nil
}
