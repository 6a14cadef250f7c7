package restock

// Config holds the tunable rule lists of one analysis run.
// An Engine copies it on construction, so callers may reuse or mutate
// their own value afterwards without affecting running analyses.
type Config struct {
	ValidStatuses    []string `json:"valid_statuses" mapstructure:"valid_statuses"`
	IgnoredLocations []string `json:"ignored_locations" mapstructure:"ignored_locations"`
	PickingLevels    []string `json:"picking_levels" mapstructure:"picking_levels"`
	ReserveLevels    []string `json:"reserve_levels" mapstructure:"reserve_levels"`
	ReservePrefixes  []string `json:"reserve_prefixes" mapstructure:"reserve_prefixes"`
}

// DefaultConfig returns the rule set used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ValidStatuses:    []string{"AVAILABLE", "DISPONIVEL", "OK"},
		IgnoredLocations: []string{"DOCK", "STAGE", "QUARANTINE", "RETURNS"},
		PickingLevels:    []string{"00", "01", "A"},
		ReserveLevels:    []string{"02", "03", "04", "05", "06", "B", "C", "D", "E"},
		ReservePrefixes:  []string{"PUL", "RES"},
	}
}

// Merge returns c with every non-empty list of override replacing its own.
func (c Config) Merge(override Config) Config {
	merged := c.clone()
	if len(override.ValidStatuses) > 0 {
		merged.ValidStatuses = cloneStrings(override.ValidStatuses)
	}
	if len(override.IgnoredLocations) > 0 {
		merged.IgnoredLocations = cloneStrings(override.IgnoredLocations)
	}
	if len(override.PickingLevels) > 0 {
		merged.PickingLevels = cloneStrings(override.PickingLevels)
	}
	if len(override.ReserveLevels) > 0 {
		merged.ReserveLevels = cloneStrings(override.ReserveLevels)
	}
	if len(override.ReservePrefixes) > 0 {
		merged.ReservePrefixes = cloneStrings(override.ReservePrefixes)
	}
	return merged
}

// IsZero reports whether no list is set.
func (c Config) IsZero() bool {
	return len(c.ValidStatuses) == 0 &&
		len(c.IgnoredLocations) == 0 &&
		len(c.PickingLevels) == 0 &&
		len(c.ReserveLevels) == 0 &&
		len(c.ReservePrefixes) == 0
}

func (c Config) clone() Config {
	return Config{
		ValidStatuses:    cloneStrings(c.ValidStatuses),
		IgnoredLocations: cloneStrings(c.IgnoredLocations),
		PickingLevels:    cloneStrings(c.PickingLevels),
		ReserveLevels:    cloneStrings(c.ReserveLevels),
		ReservePrefixes:  cloneStrings(c.ReservePrefixes),
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := Normalize(v)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}
