package restock

import "strings"

// LocationRole is the allocation role of a location, derived from its code.
type LocationRole int

const (
	RoleNone LocationRole = iota
	RolePicking
	RoleReserve
)

func (r LocationRole) String() string {
	switch r {
	case RolePicking:
		return "picking"
	case RoleReserve:
		return "reserve"
	default:
		return "none"
	}
}

// Classifier resolves location codes such as "P-01-A" to a LocationRole.
type Classifier struct {
	picking  map[string]struct{}
	reserve  map[string]struct{}
	prefixes []string
}

// NewClassifier builds a classifier from level suffixes and extra reserve prefixes.
func NewClassifier(pickingLevels, reserveLevels, reservePrefixes []string) *Classifier {
	prefixes := make([]string, 0, len(reservePrefixes))
	for _, p := range reservePrefixes {
		if p = Normalize(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Classifier{
		picking:  toSet(pickingLevels),
		reserve:  toSet(reserveLevels),
		prefixes: prefixes,
	}
}

// Classify checks the trailing level segment first against picking, then
// against reserve, then the whole code against the reserve prefixes.
// A level present in both lists resolves to picking.
func (c *Classifier) Classify(location string) LocationRole {
	level := lastSegment(location)
	if _, ok := c.picking[level]; ok {
		return RolePicking
	}
	if _, ok := c.reserve[level]; ok {
		return RoleReserve
	}

	code := Normalize(location)
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(code, prefix) {
			return RoleReserve
		}
	}
	return RoleNone
}

// lastSegment returns the last non-empty "-" separated part, normalized.
func lastSegment(location string) string {
	parts := strings.Split(location, "-")
	for i := len(parts) - 1; i >= 0; i-- {
		if part := Normalize(parts[i]); part != "" {
			return part
		}
	}
	return ""
}
