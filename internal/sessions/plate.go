package sessions

import (
	"regexp"
	"strings"
)

var (
	legacyPlate   = regexp.MustCompile(`^[A-Z]{3}-?[0-9]{4}$`)
	mercosulPlate = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

// IsValidPlate accepts legacy plates (ABC1234, ABC-1234) and Mercosul
// plates (ABC1D23), in any letter case.
func IsValidPlate(raw string) bool {
	p := strings.ToUpper(strings.TrimSpace(raw))
	return legacyPlate.MatchString(p) || mercosulPlate.MatchString(p)
}

// NormalizePlate returns the storage form of a plate: upper case without
// the hyphen separator.
func NormalizePlate(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "-", "")
}
