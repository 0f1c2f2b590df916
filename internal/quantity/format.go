package quantity

import (
	"math"
	"strconv"
	"strings"
)

// FormatOptions controls rendering of a quantity to text
type FormatOptions struct {
	// ErrorLimit is the asymmetry, in percent of the value, above which
	// upper and lower uncertainties are rendered separately.
	ErrorLimit int
	// SmallError is a relative uncertainty below which the value is
	// rendered without an uncertainty. Zero disables the check.
	SmallError float64
}

// Rendered is the textual form of a quantity
type Rendered struct {
	Value       string `json:"value"`
	Uncertainty string `json:"uncertainty"`
}

const (
	sciUpper = 1e7
	sciLower = 1e-4
)

// Format renders the quantity with the given error limit percentage
func (q Quantity) Format(errorLimit int) Rendered {
	return q.FormatWith(FormatOptions{ErrorLimit: errorLimit})
}

// FormatWith renders the quantity with explicit options.
//
// The uncertainty is rounded to one significant digit when its leading
// digit is 2 or more and to two digits otherwise; the value is rounded to
// the decimal position of the uncertainty's last digit.
func (q Quantity) FormatWith(opts FormatOptions) Rendered {
	if !q.hasValue {
		return Rendered{}
	}
	sci := q.useScientific()

	if q.kind != Exact || (!q.hasUpper && !q.hasLower) {
		return Rendered{Value: q.valueText(sci), Uncertainty: q.qualifierText()}
	}

	sigma, _ := q.Sigma()
	if opts.SmallError > 0 && q.value != 0 && sigma/math.Abs(q.value) < opts.SmallError {
		return Rendered{Value: q.valueText(sci)}
	}

	switch {
	case q.hasUpper && q.hasLower && q.upper != q.lower && q.asymmetric(opts.ErrorLimit):
		small := math.Min(q.upper, q.lower)
		large := math.Max(q.upper, q.lower)
		var p int
		if small > 0 {
			_, p = roundUncertainty(small)
		} else {
			_, p = roundUncertainty(large)
		}
		up := scaled(q.upper, p)
		lo := scaled(q.lower, p)
		return Rendered{
			Value:       renderValue(q.value, p, sci) + q.offset,
			Uncertainty: "+" + unitText(up, p, sci) + "-" + unitText(lo, p, sci),
		}
	case q.hasUpper && q.hasLower:
		return q.renderSymmetric(math.Max(q.upper, q.lower), "", sci)
	case q.hasUpper:
		return q.renderSymmetric(q.upper, "+", sci)
	default:
		return q.renderSymmetric(q.lower, "-", sci)
	}
}

func (q Quantity) renderSymmetric(sigma float64, sign string, sci bool) Rendered {
	if sigma == 0 {
		return Rendered{Value: q.valueText(sci), Uncertainty: sign + "0"}
	}
	n, p := roundUncertainty(sigma)
	return Rendered{
		Value:       renderValue(q.value, p, sci) + q.offset,
		Uncertainty: sign + unitText(n, p, sci),
	}
}

// asymmetric reports whether the spread between the two sides, relative to
// the value, exceeds the error limit. A zero value has unbounded spread.
func (q Quantity) asymmetric(errorLimit int) bool {
	if errorLimit < 0 {
		errorLimit = 0
	}
	if q.value == 0 {
		return true
	}
	spread := math.Abs(q.upper-q.lower) / math.Abs(q.value) * 100
	return spread > float64(errorLimit)
}

func (q Quantity) useScientific() bool {
	if q.sci {
		return true
	}
	a := math.Abs(q.value)
	return a >= sciUpper || (a > 0 && a < sciLower)
}

func (q Quantity) qualifierText() string {
	switch q.kind {
	case LowerLimit:
		if q.inclusive {
			return "GE"
		}
		return "GT"
	case UpperLimit:
		if q.inclusive {
			return "LE"
		}
		return "LT"
	case Approximate:
		return "AP"
	case Calculated:
		if q.qualifier == "SY" {
			return "SY"
		}
		return "CA"
	default:
		return q.qualifier
	}
}

// valueText renders the value at its known precision, or in shortest form
// when the precision is unknown.
func (q Quantity) valueText(sci bool) string {
	if q.hasLSD {
		return renderValue(q.value, q.lsd, sci) + q.offset
	}
	return shortest(q.value, sci) + q.offset
}

// roundUncertainty rounds sigma to n·10^p with one significant digit when
// the leading digit is 2 or more, and two digits otherwise.
func roundUncertainty(sigma float64) (int64, int) {
	lead, e := leadingDigit(sigma)
	digits := 2
	if lead >= 2 {
		digits = 1
	}
	p := e - digits + 1
	n := int64(math.Round(clean(sigma * math.Pow10(-p))))
	if digits == 2 && n >= 20 {
		// 1.96 rounds up to 2.0, whose leading digit takes a single digit
		n = int64(math.Round(float64(n) / 10))
		p++
	}
	return n, p
}

// leadingDigit returns the first significant digit of |x| and its decimal
// exponent, computed on the decimal-cleaned value.
func leadingDigit(x float64) (int, int) {
	s := strconv.FormatFloat(math.Abs(x), 'e', 11, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	d := int(mant[0] - '0')
	if d == 0 {
		return 0, 0
	}
	return d, e
}

// clean drops binary noise beyond twelve significant digits
func clean(x float64) float64 {
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	c, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', 12, 64), 64)
	if err != nil {
		return x
	}
	return c
}

// scaled expresses x in units of 10^p, rounded half away from zero
func scaled(x float64, p int) int64 {
	return int64(math.Round(clean(x * math.Pow10(-p))))
}

// unitText renders an uncertainty of n·10^p. In fixed notation with p > 0
// the uncertainty is written out in the units of the value; otherwise the
// digit run applies to the value's last digits.
func unitText(n int64, p int, sci bool) string {
	if !sci && p > 0 {
		return strconv.FormatFloat(float64(n)*math.Pow10(p), 'f', 0, 64)
	}
	return strconv.FormatInt(n, 10)
}

// renderValue writes v rounded to the decimal position p
func renderValue(v float64, p int, sci bool) string {
	if sci {
		return renderScientific(v, p)
	}
	if p >= 0 {
		r := math.Round(clean(v*math.Pow10(-p))) * math.Pow10(p)
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	d := -p
	r := math.Round(clean(v*math.Pow10(d))) / math.Pow10(d)
	return strconv.FormatFloat(r, 'f', d, 64)
}

func renderScientific(v float64, p int) string {
	e := p
	if v != 0 {
		_, e = leadingDigit(v)
	}
	if e < p {
		e = p
	}
	for i := 0; i < 2; i++ {
		d := e - p
		m := math.Round(clean(v*math.Pow10(d-e))) / math.Pow10(d)
		if math.Abs(m) >= 10 {
			e++
			continue
		}
		return strconv.FormatFloat(m, 'f', d, 64) + "E" + strconv.Itoa(e)
	}
	return strconv.FormatFloat(v, 'E', -1, 64)
}

func shortest(v float64, sci bool) string {
	v = clean(v)
	if !sci {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	e, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(e)
}
