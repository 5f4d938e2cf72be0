package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxYear is the largest year ParseYear accepts.
const MaxYear = 9999

// groupedNumber matches comma thousands grouping such as 1,000 or 12,345.67.
var groupedNumber = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)

var (
	trueValues  = map[string]bool{"true": true, "yes": true, "y": true, "1": true}
	falseValues = map[string]bool{"false": true, "no": true, "n": true, "0": true}
)

// ParseBool maps true/yes/y/1 and false/no/n/0 (case-insensitive) to a
// boolean. Anything else, including empty input, is unknown (nil).
func ParseBool(value string) *bool {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case trueValues[v]:
		b := true
		return &b
	case falseValues[v]:
		b := false
		return &b
	}
	return nil
}

// ParseDecimal parses a decimal amount. A leading currency sign and comma
// thousands grouping are tolerated; any other comma (1,29 or 1,2,3) is
// malformed. Empty, malformed, non-finite, and negative values yield nil.
func ParseDecimal(value string) *float64 {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "$")
	if strings.Contains(v, ",") {
		if !groupedNumber.MatchString(v) {
			return nil
		}
		v = strings.ReplaceAll(v, ",", "")
	}
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	return &f
}

// ParseYear parses a whole-number year in [1, MaxYear]. Fractional,
// malformed, and out-of-range values yield ok=false.
func ParseYear(value string) (int, bool) {
	f := ParseDecimal(value)
	if f == nil || *f != math.Trunc(*f) || *f < 1 || *f > MaxYear {
		return 0, false
	}
	return int(*f), true
}
