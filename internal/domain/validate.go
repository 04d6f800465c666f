package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const maxCalendarIDLen = 255

var (
	hhmmRe     = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)
	coordRe    = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)\s*,\s*([+-]?\d+(?:\.\d+)?)\s*$`)
	coordishRe = regexp.MustCompile(`^[\s+\-\d.,]+$`)
)

// IsValidHHMM reports whether value is a 24-hour HH:MM wall-clock time.
func IsValidHHMM(value string) bool {
	return hhmmRe.MatchString(strings.TrimSpace(value))
}

// ParseCalendarIDs splits a comma-separated calendar id list, trims each
// entry and dedups preserving first-seen order. Returns nil if the input is
// empty, contains no usable ids, or any id exceeds the length limit.
func ParseCalendarIDs(value string) []string {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}

	// Fullwidth commas and newlines also act as separators.
	text = strings.ReplaceAll(text, "，", ",")
	text = strings.ReplaceAll(text, "\n", ",")

	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(text, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if len(id) > maxCalendarIDLen {
			return nil
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// SerializeCalendarIDs renders a calendar id list into its stored form.
func SerializeCalendarIDs(ids []string) string {
	return strings.Join(ids, ", ")
}

// ParseStoredCalendarIDs is the lenient read-side parse of the stored column.
// A malformed stored value yields an empty list rather than an error.
func ParseStoredCalendarIDs(value string) []string {
	if value == "" {
		return nil
	}
	return ParseCalendarIDs(value)
}

// ParseLatLon parses a "lat,lon" decimal pair. ok is false when the input is
// not coordinate-shaped at all; err is non-nil when it is coordinate-shaped
// but out of range.
func ParseLatLon(value string) (lat, lon float64, ok bool, err error) {
	m := coordRe.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, false, nil
	}

	lat, _ = strconv.ParseFloat(m[1], 64)
	lon, _ = strconv.ParseFloat(m[2], 64)
	if lat < -90 || lat > 90 {
		return 0, 0, false, fmt.Errorf("latitude %v out of range -90..90", lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, false, fmt.Errorf("longitude %v out of range -180..180", lon)
	}
	return lat, lon, true, nil
}

// LooksLikeCoordinates reports whether the input resembles a coordinate pair,
// so malformed pairs can be rejected instead of geocoded as a place name.
func LooksLikeCoordinates(value string) bool {
	text := strings.TrimSpace(value)
	return strings.Contains(text, ",") && coordishRe.MatchString(text)
}

// LoadLocation resolves an IANA zone name, falling back to the given default
// and finally to UTC when neither resolves.
func LoadLocation(name, fallback string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc
	}
	return time.UTC
}
