package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	apperrors "nucleval/internal/errors"
)

var (
	numeralPattern  = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))(?:[eE]([+-]?\d+))?(.*)$`)
	offsetPattern   = regexp.MustCompile(`^\+[A-Z]{1,2}$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
	absolutePattern = regexp.MustCompile(`^\d*\.\d+$`)
	asymPattern     = regexp.MustCompile(`^\+(\d+)-(\d+)$`)
	asymRevPattern  = regexp.MustCompile(`^-(\d+)\+(\d+)$`)
	upperOnly       = regexp.MustCompile(`^\+(\d+)$`)
	lowerOnly       = regexp.MustCompile(`^-(\d+)$`)
)

type qualifierSpec struct {
	kind      Kind
	inclusive bool
}

var qualifiers = map[string]qualifierSpec{
	"LT": {kind: UpperLimit},
	"LE": {kind: UpperLimit, inclusive: true},
	"GT": {kind: LowerLimit},
	"GE": {kind: LowerLimit, inclusive: true},
	"AP": {kind: Approximate},
	"CA": {kind: Calculated},
	"SY": {kind: Calculated},
	"?":  {kind: Unknown},
}

// symbol prefixes accepted in the value text, longest first
var symbolQualifiers = []struct {
	symbol string
	token  string
}{
	{"<=", "LE"},
	{">=", "GE"},
	{"<", "LT"},
	{">", "GT"},
	{"~", "AP"},
}

// Parse interprets a value text and an uncertainty text.
//
// It returns a PARSE error when the value text holds no numeral, when a
// qualifier appears without a numeral, or when the uncertainty text is
// malformed.
func Parse(valueText, uncertaintyText string) (Quantity, error) {
	v := strings.TrimSpace(valueText)
	u := strings.ToUpper(strings.Join(strings.Fields(uncertaintyText), ""))

	valueQualifier, v := splitQualifier(v)

	if v == "" {
		if valueQualifier != "" || isQualifier(u) {
			return Quantity{}, apperrors.NewParseError("qualifier without numeral", valueText+" "+uncertaintyText)
		}
		return Quantity{}, apperrors.NewParseError("no extractable numeral", valueText)
	}

	m := numeralPattern.FindStringSubmatch(v)
	if m == nil {
		return Quantity{}, apperrors.NewParseError("no extractable numeral", valueText)
	}
	mantissa, exponentText, rest := m[1], m[2], strings.TrimSpace(m[3])
	if rest != "" && !offsetPattern.MatchString(strings.ToUpper(rest)) {
		return Quantity{}, apperrors.NewParseError("unexpected text after numeral", valueText)
	}

	exponent := 0
	if exponentText != "" {
		e, err := strconv.Atoi(exponentText)
		if err != nil {
			return Quantity{}, apperrors.NewParseError("malformed exponent", valueText)
		}
		exponent = e
	}

	number := mantissa
	if exponentText != "" {
		number += "e" + exponentText
	}
	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return Quantity{}, apperrors.NewParseError("no extractable numeral", valueText)
	}

	q := Quantity{
		value:     value,
		hasValue:  true,
		kind:      Exact,
		offset:    strings.ToUpper(rest),
		sigDigits: countSignificant(mantissa),
		lsd:       exponent - decimalsOf(mantissa),
		hasLSD:    true,
		sci:       exponentText != "",
	}
	q.displayValue = canonicalValueText(mantissa, exponentText) + q.offset

	if valueQualifier != "" {
		if u != "" && u != valueQualifier {
			return Quantity{}, apperrors.NewParseError("conflicting qualifier and uncertainty", valueText+" "+uncertaintyText)
		}
		u = valueQualifier
	}

	if qual, ok := qualifiers[u]; ok {
		q.kind = qual.kind
		q.inclusive = qual.inclusive
		q.qualifier = u
		q.displayUncertainty = u
		return q, nil
	}

	q.displayUncertainty = u
	if err := q.applyUncertainty(u); err != nil {
		return Quantity{}, apperrors.NewParseError(err.Error(), uncertaintyText)
	}
	return q, nil
}

// MustParse is like Parse but panics on malformed text. Intended for tests
// and constant tables.
func MustParse(valueText, uncertaintyText string) Quantity {
	q, err := Parse(valueText, uncertaintyText)
	if err != nil {
		panic(err)
	}
	return q
}

type uncertaintyError string

func (e uncertaintyError) Error() string { return string(e) }

func (q *Quantity) applyUncertainty(u string) error {
	unit := pow10(q.lsd)
	switch {
	case u == "":
		q.kind = Unknown
	case digitsPattern.MatchString(u):
		n, _ := strconv.ParseFloat(u, 64)
		q.upper, q.lower = n*unit, n*unit
		q.hasUpper, q.hasLower = true, true
	case absolutePattern.MatchString(u):
		a, err := strconv.ParseFloat(u, 64)
		if err != nil {
			return uncertaintyError("malformed uncertainty")
		}
		q.upper, q.lower = a, a
		q.hasUpper, q.hasLower = true, true
	case asymPattern.MatchString(u):
		m := asymPattern.FindStringSubmatch(u)
		up, _ := strconv.ParseFloat(m[1], 64)
		lo, _ := strconv.ParseFloat(m[2], 64)
		q.upper, q.lower = up*unit, lo*unit
		q.hasUpper, q.hasLower = true, true
		q.displayUncertainty = "+" + m[1] + "-" + m[2]
	case asymRevPattern.MatchString(u):
		m := asymRevPattern.FindStringSubmatch(u)
		lo, _ := strconv.ParseFloat(m[1], 64)
		up, _ := strconv.ParseFloat(m[2], 64)
		q.upper, q.lower = up*unit, lo*unit
		q.hasUpper, q.hasLower = true, true
		q.displayUncertainty = "+" + m[2] + "-" + m[1]
	case upperOnly.MatchString(u):
		m := upperOnly.FindStringSubmatch(u)
		up, _ := strconv.ParseFloat(m[1], 64)
		q.upper, q.hasUpper = up*unit, true
	case lowerOnly.MatchString(u):
		m := lowerOnly.FindStringSubmatch(u)
		lo, _ := strconv.ParseFloat(m[1], 64)
		q.lower, q.hasLower = lo*unit, true
	default:
		return uncertaintyError("malformed uncertainty")
	}
	return nil
}

// splitQualifier removes a leading qualifier token or symbol from a value
// text and returns the qualifier in its two-letter form.
func splitQualifier(v string) (string, string) {
	for _, s := range symbolQualifiers {
		if strings.HasPrefix(v, s.symbol) {
			return s.token, strings.TrimSpace(v[len(s.symbol):])
		}
	}
	if len(v) >= 2 {
		head := strings.ToUpper(v[:2])
		if _, ok := qualifiers[head]; ok {
			tail := v[2:]
			if tail == "" || tail[0] == ' ' || (tail[0] >= '0' && tail[0] <= '9') || tail[0] == '.' {
				return head, strings.TrimSpace(tail)
			}
		}
	}
	return "", v
}

func isQualifier(u string) bool {
	_, ok := qualifiers[u]
	return ok
}

// decimalsOf returns the number of digits after the decimal point
func decimalsOf(mantissa string) int {
	i := strings.IndexByte(mantissa, '.')
	if i < 0 {
		return 0
	}
	return len(mantissa) - i - 1
}

// countSignificant counts digits from the first non-zero digit on
func countSignificant(mantissa string) int {
	count := 0
	started := false
	for _, r := range mantissa {
		if r < '0' || r > '9' {
			continue
		}
		if r != '0' {
			started = true
		}
		if started {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

func canonicalValueText(mantissa, exponent string) string {
	mantissa = strings.TrimPrefix(mantissa, "+")
	if exponent == "" {
		return mantissa
	}
	e, err := strconv.Atoi(exponent)
	if err != nil {
		return mantissa + "E" + exponent
	}
	return mantissa + "E" + strconv.Itoa(e)
}

func pow10(e int) float64 {
	return math.Pow10(e)
}
