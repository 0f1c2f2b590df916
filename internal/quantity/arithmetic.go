package quantity

import (
	"math"
	"strings"

	apperrors "nucleval/internal/errors"
)

// Operation names an arithmetic operation
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// IsValid checks if the operation is known
func (o Operation) IsValid() bool {
	switch o {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

var operationSymbols = map[string]Operation{
	"+": OpAdd,
	"-": OpSubtract,
	"*": OpMultiply,
	"/": OpDivide,
}

// ParseOperation resolves an operation name or its symbol
func ParseOperation(s string) (Operation, error) {
	if op, ok := operationSymbols[s]; ok {
		return op, nil
	}
	op := Operation(strings.ToLower(s))
	if !op.IsValid() {
		return "", apperrors.NewValidationError("unknown operation "+s, nil)
	}
	return op, nil
}

// Apply runs the named operation on q and other
func (q Quantity) Apply(op Operation, other Quantity) (Quantity, error) {
	switch op {
	case OpAdd:
		return q.Add(other)
	case OpSubtract:
		return q.Subtract(other)
	case OpMultiply:
		return q.Multiply(other)
	case OpDivide:
		return q.Divide(other)
	default:
		return Quantity{}, apperrors.NewValidationError("unknown operation "+string(op), nil)
	}
}

// Add returns q + other. Upper and lower uncertainties add side by side.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	return combine(OpAdd, q, other)
}

// Subtract returns q - other. Like Add, upper and lower uncertainties add
// side by side.
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	return combine(OpSubtract, q, other)
}

// Multiply returns q * other. Relative uncertainties add per side.
func (q Quantity) Multiply(other Quantity) (Quantity, error) {
	return combine(OpMultiply, q, other)
}

// Divide returns q / other. It fails with a DIVISION error when other has a
// zero value.
func (q Quantity) Divide(other Quantity) (Quantity, error) {
	return combine(OpDivide, q, other)
}

// kindRank orders non-limit kinds; the combined kind is the highest rank.
var kindRank = map[Kind]int{
	Exact:       0,
	Unknown:     1,
	Calculated:  2,
	Approximate: 3,
}

// combine propagates values and uncertainties through op using the partial
// derivatives of the result with respect to each operand. A side of the
// result is absent when any operand side it depends on is absent.
func combine(op Operation, a, b Quantity) (Quantity, error) {
	if !a.hasValue || !b.hasValue {
		return Quantity{}, apperrors.NewValidationError(string(op)+": operand has no value", nil)
	}

	var value, da, db float64
	switch op {
	case OpAdd:
		value, da, db = a.value+b.value, 1, 1
	case OpSubtract:
		value, da, db = a.value-b.value, 1, -1
	case OpMultiply:
		value, da, db = a.value*b.value, b.value, a.value
	case OpDivide:
		if b.value == 0 {
			return Quantity{}, apperrors.NewDivisionByZeroError()
		}
		value, da, db = a.value/b.value, 1/b.value, -a.value/(b.value*b.value)
	default:
		return Quantity{}, apperrors.NewValidationError("unknown operation "+string(op), nil)
	}

	r := Quantity{value: value, hasValue: true}

	kind, inclusive, err := combineKinds(op, a, b)
	if err != nil {
		return Quantity{}, err
	}
	r.kind = kind
	r.inclusive = inclusive
	switch kind {
	case Calculated:
		r.qualifier = "CA"
	case Unknown:
		r.qualifier = "?"
	}

	if kind == Exact {
		upA, okUpA := side(a, da, true)
		upB, okUpB := side(b, db, true)
		loA, okLoA := side(a, da, false)
		loB, okLoB := side(b, db, false)
		if okUpA && okUpB {
			r.upper, r.hasUpper = upA+upB, true
		}
		if okLoA && okLoB {
			r.lower, r.hasLower = loA+loB, true
		}
		if !r.hasUpper && !r.hasLower {
			r.kind = Unknown
			r.qualifier = "?"
		}
	}

	r.precisionFrom(op, a, b)
	r.sci = a.sci || b.sci
	return r.withDisplay(), nil
}

// side returns the contribution of one operand to the upper (or lower)
// uncertainty of the result. Sides never cross: the upper side of the
// result is built from the upper sides of both operands.
func side(q Quantity, d float64, upper bool) (float64, bool) {
	if d == 0 {
		return 0, true
	}
	if upper {
		return q.upper * math.Abs(d), q.hasUpper
	}
	return q.lower * math.Abs(d), q.hasLower
}

// combineKinds resolves the kind of a result by fixed precedence. A limit
// combined with a non-limit keeps the limit, two limits of the same
// direction keep it, and a lower limit mixed with an upper limit is
// incompatible whatever the operation.
func combineKinds(op Operation, a, b Quantity) (Kind, bool, error) {
	ka, kb := a.kind, b.kind
	switch {
	case ka.IsLimit() && kb.IsLimit():
		if ka != kb {
			return Unknown, false, apperrors.NewQualifierError(string(op), ka.String(), kb.String())
		}
		return ka, a.inclusive && b.inclusive, nil
	case ka.IsLimit():
		return ka, a.inclusive, nil
	case kb.IsLimit():
		return kb, b.inclusive, nil
	}
	if kindRank[kb] > kindRank[ka] {
		return kb, false, nil
	}
	return ka, false, nil
}

// precisionFrom sets the result precision: the coarser decimal position for
// sums and differences, the fewer significant digits for products and
// quotients.
func (r *Quantity) precisionFrom(op Operation, a, b Quantity) {
	switch op {
	case OpAdd, OpSubtract:
		if a.hasLSD && b.hasLSD {
			r.lsd, r.hasLSD = max(a.lsd, b.lsd), true
		}
	default:
		if a.sigDigits == 0 || b.sigDigits == 0 || r.value == 0 {
			return
		}
		r.sigDigits = min(a.sigDigits, b.sigDigits)
		_, e := leadingDigit(r.value)
		r.lsd, r.hasLSD = e-r.sigDigits+1, true
	}
}
