package quantity

import "math"

// Kind classifies how a quantity's uncertainty is expressed
type Kind int

const (
	// Exact is a value with a numeric statistical uncertainty
	Exact Kind = iota
	// Approximate is a value quoted as "about" (AP)
	Approximate
	// LowerLimit is a boundary the true value exceeds (GT, GE)
	LowerLimit
	// UpperLimit is a boundary the true value stays below (LT, LE)
	UpperLimit
	// Calculated is a derived or systematics value (CA, SY)
	Calculated
	// Unknown is a value without a usable uncertainty
	Unknown
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Approximate:
		return "approximate"
	case LowerLimit:
		return "lower_limit"
	case UpperLimit:
		return "upper_limit"
	case Calculated:
		return "calculated"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// IsLimit reports whether the value is a boundary rather than a measurement
func (k Kind) IsLimit() bool {
	return k == LowerLimit || k == UpperLimit
}

// DefaultErrorLimit is the error limit used to render derived quantities
// until a caller formats them with its own limit.
const DefaultErrorLimit = 25

// Quantity is an immutable measured value.
//
// The zero Quantity has no value.
type Quantity struct {
	value    float64
	upper    float64
	lower    float64
	hasValue bool
	hasUpper bool
	hasLower bool

	kind      Kind
	inclusive bool
	qualifier string
	offset    string

	displayValue       string
	displayUncertainty string

	sigDigits int
	lsd       int
	hasLSD    bool
	sci       bool
}

// Numeric is the numeric form of a quantity.
//
// For limit kinds Value is the boundary and both uncertainty sides are
// reported as absent, with Limit set, rather than dropped silently.
type Numeric struct {
	Value    float64
	Upper    float64
	Lower    float64
	HasUpper bool
	HasLower bool
	Kind     Kind
	Limit    bool
}

// FromNumeric builds an Exact quantity from a value and its two uncertainty
// sides. A nil side stays absent. Negative sides are taken by magnitude.
func FromNumeric(value float64, upper, lower *float64) Quantity {
	q := Quantity{value: value, hasValue: true, kind: Exact}
	if upper != nil {
		q.upper, q.hasUpper = math.Abs(*upper), true
	}
	if lower != nil {
		q.lower, q.hasLower = math.Abs(*lower), true
	}
	if !q.hasUpper && !q.hasLower {
		q.kind = Unknown
	}
	return q.withDisplay()
}

// Symmetric builds an Exact quantity with equal upper and lower uncertainty
func Symmetric(value, sigma float64) Quantity {
	sigma = math.Abs(sigma)
	return FromNumeric(value, &sigma, &sigma)
}

// Limit builds a LowerLimit or UpperLimit quantity. Other kinds are
// returned as Unknown values.
func Limit(kind Kind, value float64, inclusive bool) Quantity {
	q := Quantity{value: value, hasValue: true, kind: kind, inclusive: inclusive}
	if !kind.IsLimit() {
		q.kind = Unknown
		q.inclusive = false
	}
	return q.withDisplay()
}

// ApproximateValue builds an Approximate quantity
func ApproximateValue(value float64) Quantity {
	return Quantity{value: value, hasValue: true, kind: Approximate}.withDisplay()
}

// Value returns the numeric value and whether one is present
func (q Quantity) Value() (float64, bool) { return q.value, q.hasValue }

// Upper returns the upper uncertainty and whether it is present
func (q Quantity) Upper() (float64, bool) { return q.upper, q.hasUpper }

// Lower returns the lower uncertainty and whether it is present
func (q Quantity) Lower() (float64, bool) { return q.lower, q.hasLower }

// Kind returns the uncertainty kind
func (q Quantity) Kind() Kind { return q.kind }

// Inclusive reports whether a limit includes its boundary (GE, LE)
func (q Quantity) Inclusive() bool { return q.inclusive }

// DisplayValue returns the textual value
func (q Quantity) DisplayValue() string { return q.displayValue }

// DisplayUncertainty returns the textual uncertainty or qualifier
func (q Quantity) DisplayUncertainty() string { return q.displayUncertainty }

// SignificantDigits returns the number of significant digits in the value
// text, or 0 for values that were not parsed from text.
func (q Quantity) SignificantDigits() int { return q.sigDigits }

// IsZero reports whether the quantity has no value
func (q Quantity) IsZero() bool { return !q.hasValue }

// HasUncertainty reports whether at least one numeric uncertainty side is
// present on a statistical value.
func (q Quantity) HasUncertainty() bool {
	return q.kind == Exact && (q.hasUpper || q.hasLower)
}

// Sigma returns the larger of the present uncertainty sides.
func (q Quantity) Sigma() (float64, bool) {
	if !q.HasUncertainty() {
		return 0, false
	}
	switch {
	case q.hasUpper && q.hasLower:
		return math.Max(q.upper, q.lower), true
	case q.hasUpper:
		return q.upper, true
	default:
		return q.lower, true
	}
}

// ToNumeric converts the quantity to numeric form
func (q Quantity) ToNumeric() Numeric {
	n := Numeric{Value: q.value, Kind: q.kind, Limit: q.kind.IsLimit()}
	if n.Limit || q.kind != Exact {
		return n
	}
	n.Upper, n.HasUpper = q.upper, q.hasUpper
	n.Lower, n.HasLower = q.lower, q.hasLower
	return n
}

// Compare orders quantities by numeric value. Quantities without a value
// sort first.
func (q Quantity) Compare(other Quantity) int {
	switch {
	case !q.hasValue && !other.hasValue:
		return 0
	case !q.hasValue:
		return -1
	case !other.hasValue:
		return 1
	case q.value < other.value:
		return -1
	case q.value > other.value:
		return 1
	default:
		return 0
	}
}

// String renders the quantity as "value uncertainty"
func (q Quantity) String() string {
	if q.displayUncertainty == "" {
		return q.displayValue
	}
	return q.displayValue + " " + q.displayUncertainty
}

// withDisplay fills the display strings of a quantity built from numbers.
func (q Quantity) withDisplay() Quantity {
	r := q.FormatWith(FormatOptions{ErrorLimit: DefaultErrorLimit})
	q.displayValue = r.Value
	q.displayUncertainty = r.Uncertainty
	return q
}
