package weather

import (
	"regexp"
	"strconv"
	"strings"
)

var coordinatePattern = regexp.MustCompile(`^(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)$`)

// ParseCoordinates reports whether raw is already a "lat,lon" pair.
// When it is, the returned Place carries both numbers and a "Coordinates: lat, lon" label.
func ParseCoordinates(raw string) (Place, bool) {
	m := coordinatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Place{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Place{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Place{}, false
	}

	return Place{
		DisplayName: "Coordinates: " + FormatCoordinate(lat) + ", " + FormatCoordinate(lon),
		Latitude:    lat,
		Longitude:   lon,
	}, true
}

// FormatCoordinate prints v the way the coordinate label has always shown it:
// the shortest round-trip form, a fractional part on whole numbers
// (40 -> "40.0"), and exponent notation below 1e-4 or from 1e16 on
// (0.00001 -> "1e-05").
func FormatCoordinate(v float64) string {
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err == nil && v != 0 && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
