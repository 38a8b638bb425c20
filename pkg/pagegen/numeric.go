package pagegen

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// NumericPolicy decides what an unparsable numeric cell turns into.
type NumericPolicy string

const (
	// NumericLenient coerces anything unparsable to 0 without reporting it.
	// It is the default, which means a typo in distance_km silently yields a
	// zero fare.
	NumericLenient NumericPolicy = "lenient"
	// NumericStrict returns a *NumericParseError instead.
	NumericStrict NumericPolicy = "strict"
)

var errNotFinite = errors.New("value is not finite")

// Parse converts value according to the policy. Surrounding whitespace is
// ignored. NaN and infinities count as unparsable.
func (p NumericPolicy) Parse(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errNotFinite
	}
	if err != nil {
		if p == NumericStrict {
			return 0, &NumericParseError{Value: value, Err: err}
		}
		return 0, nil
	}
	return v, nil
}

// ParseNumeric parses value under NumericLenient: ParseNumeric("abc") == 0.
func ParseNumeric(value string) float64 {
	v, _ := NumericLenient.Parse(value)
	return v
}

// BaseFare returns floor(distanceKm * perKmRate).
func BaseFare(distanceKm, perKmRate float64) int64 {
	return int64(math.Floor(distanceKm * perKmRate))
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
