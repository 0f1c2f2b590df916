package quantity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nucleval/internal/errors"
)

func ptr(f float64) *float64 { return &f }

// TestParse tests the textual notation
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		unc       string
		wantValue float64
		wantUpper *float64
		wantLower *float64
		wantKind  Kind
		inclusive bool
	}{
		{"digit run", "123.45", "12", 123.45, ptr(0.12), ptr(0.12), Exact, false},
		{"integer digit run", "150", "20", 150, ptr(20), ptr(20), Exact, false},
		{"scientific", "1.2E3", "3", 1200, ptr(300), ptr(300), Exact, false},
		{"small scientific", "1.23E-4", "5", 1.23e-4, ptr(5e-6), ptr(5e-6), Exact, false},
		{"asymmetric", "10.0", "+12-8", 10, ptr(1.2), ptr(0.8), Exact, false},
		{"asymmetric reversed", "10.0", "-8+12", 10, ptr(1.2), ptr(0.8), Exact, false},
		{"upper only", "12.3", "+5", 12.3, ptr(0.5), nil, Exact, false},
		{"lower only", "12.3", "-5", 12.3, nil, ptr(0.5), Exact, false},
		{"absolute decimal", "10.0", "0.5", 10, ptr(0.5), ptr(0.5), Exact, false},
		{"upper limit token", "5", "LT", 5, nil, nil, UpperLimit, false},
		{"inclusive upper limit", "5", "LE", 5, nil, nil, UpperLimit, true},
		{"lower limit token", "5", "gt", 5, nil, nil, LowerLimit, false},
		{"symbol upper limit", "<5", "", 5, nil, nil, UpperLimit, false},
		{"symbol inclusive lower limit", ">=2.0", "", 2, nil, nil, LowerLimit, true},
		{"symbol approximate", "~7", "", 7, nil, nil, Approximate, false},
		{"prefix approximate", "AP 7", "", 7, nil, nil, Approximate, false},
		{"calculated", "2.5", "CA", 2.5, nil, nil, Calculated, false},
		{"systematics", "3", "SY", 3, nil, nil, Calculated, false},
		{"questionable", "4.0", "?", 4, nil, nil, Unknown, false},
		{"no uncertainty", "4.0", "", 4, nil, nil, Unknown, false},
		{"offset", "1200+X", "5", 1200, ptr(5), ptr(5), Exact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.value, tt.unc)
			require.NoError(t, err)

			v, ok := q.Value()
			require.True(t, ok)
			assert.InDelta(t, tt.wantValue, v, 1e-12)
			assert.Equal(t, tt.wantKind, q.Kind())
			assert.Equal(t, tt.inclusive, q.Inclusive())

			up, hasUp := q.Upper()
			if tt.wantUpper == nil {
				assert.False(t, hasUp)
			} else {
				require.True(t, hasUp)
				assert.InDelta(t, *tt.wantUpper, up, 1e-12)
			}
			lo, hasLo := q.Lower()
			if tt.wantLower == nil {
				assert.False(t, hasLo)
			} else {
				require.True(t, hasLo)
				assert.InDelta(t, *tt.wantLower, lo, 1e-12)
			}
		})
	}
}

// TestParse_Errors tests malformed text
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		unc   string
	}{
		{"no numeral", "abc", "1"},
		{"empty", "", ""},
		{"qualifier without numeral in value", "LT", ""},
		{"qualifier without numeral", "", "GT"},
		{"malformed uncertainty", "12", "1x"},
		{"dangling sign", "12", "+3-"},
		{"trailing text", "12 keV", "3"},
		{"conflicting qualifiers", "<5", "GT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.value, tt.unc)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrParse)
		})
	}
}

// TestFormat_RoundTrip tests that parsed text renders back unchanged
func TestFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		value string
		unc   string
	}{
		{"123.45", "12"},
		{"123.45", "5"},
		{"0.0152", "14"},
		{"150", "20"},
		{"1.2E3", "3"},
		{"1.23E-4", "5"},
		{"10.0", "+12-8"},
		{"12.3", "+5"},
		{"12.3", "-5"},
		{"5", "LT"},
		{"2.0", "GE"},
		{"7", "AP"},
		{"2.5", "CA"},
		{"3", "SY"},
		{"4.0", "?"},
		{"1200+X", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.value+" "+tt.unc, func(t *testing.T) {
			q := MustParse(tt.value, tt.unc)
			r := q.Format(0)
			assert.Equal(t, tt.value, r.Value)
			assert.Equal(t, tt.unc, r.Uncertainty)
		})
	}
}

// TestRoundUncertainty tests the one-or-two significant digit rule
func TestRoundUncertainty(t *testing.T) {
	tests := []struct {
		sigma float64
		n     int64
		p     int
	}{
		{0.12, 12, -2},
		{0.25, 3, -1},
		{0.0149, 15, -3},
		{1.0, 10, -1},
		{0.96, 10, -1},
		{19.6, 2, 1},
		{350, 4, 2},
		{0.57735, 6, -1},
	}

	for _, tt := range tests {
		n, p := roundUncertainty(tt.sigma)
		assert.Equal(t, tt.n, n, "sigma %v", tt.sigma)
		assert.Equal(t, tt.p, p, "sigma %v", tt.sigma)
	}
}

// TestFormat tests rendering of numeric quantities
func TestFormat(t *testing.T) {
	tests := []struct {
		name       string
		q          Quantity
		errorLimit int
		smallError float64
		want       Rendered
	}{
		{"symmetric", Symmetric(11, 1/math.Sqrt(3)), 25, 0, Rendered{"11.0", "6"}},
		{"one digit", Symmetric(10.4567, 0.0234), 25, 0, Rendered{"10.46", "2"}},
		{"carry to next position", Symmetric(123.4, 19.6), 25, 0, Rendered{"120", "20"}},
		{"merged below limit", FromNumeric(10, ptr(1.2), ptr(0.8)), 25, 0, Rendered{"10.0", "12"}},
		{"kept above limit", FromNumeric(10, ptr(1.2), ptr(0.8)), 3, 0, Rendered{"10.0", "+12-8"}},
		{"zero value keeps sides", FromNumeric(0, ptr(0.3), ptr(0.1)), 99, 0, Rendered{"0.00", "+30-10"}},
		{"upper only", FromNumeric(5, ptr(0.3), nil), 25, 0, Rendered{"5.0", "+3"}},
		{"large magnitude", Symmetric(2.5e8, 3e6), 25, 0, Rendered{"2.50E8", "3"}},
		{"small error", Symmetric(1000, 0.001), 25, 1e-5, Rendered{"1000", ""}},
		{"upper limit", Limit(UpperLimit, 5, false), 25, 0, Rendered{"5", "LT"}},
		{"inclusive lower limit", Limit(LowerLimit, 5, true), 25, 0, Rendered{"5", "GE"}},
		{"approximate", ApproximateValue(7), 25, 0, Rendered{"7", "AP"}},
		{"no value", Quantity{}, 25, 0, Rendered{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.FormatWith(FormatOptions{ErrorLimit: tt.errorLimit, SmallError: tt.smallError})
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestArithmetic tests side-by-side uncertainty propagation
func TestArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		op        Operation
		a, b      Quantity
		wantValue float64
		wantUpper *float64
		wantLower *float64
	}{
		{"add", OpAdd, Symmetric(10, 1), Symmetric(5, 0.5), 15, ptr(1.5), ptr(1.5)},
		{"add asymmetric", OpAdd, FromNumeric(10, ptr(2), ptr(1)), FromNumeric(4, ptr(0.5), ptr(0.3)), 14, ptr(2.5), ptr(1.3)},
		{"subtract side by side", OpSubtract, FromNumeric(10, ptr(2), ptr(1)), FromNumeric(4, ptr(0.5), ptr(0.3)), 6, ptr(2.5), ptr(1.3)},
		{"multiply", OpMultiply, Symmetric(2, 0.1), Symmetric(3, 0.3), 6, ptr(0.9), ptr(0.9)},
		{"divide", OpDivide, Symmetric(6, 0.6), Symmetric(2, 0.2), 3, ptr(0.6), ptr(0.6)},
		{"add one-sided", OpAdd, FromNumeric(10, ptr(1), nil), Symmetric(5, 1), 15, ptr(2), nil},
		{"subtract one-sided", OpSubtract, Symmetric(10, 1), FromNumeric(5, ptr(0.5), nil), 5, ptr(1.5), nil},
		{"divide asymmetric", OpDivide, FromNumeric(8, ptr(0.8), ptr(0.4)), FromNumeric(2, ptr(0.1), ptr(0.2)), 4, ptr(0.6), ptr(0.6)},
		{"multiply by negative", OpMultiply, Symmetric(2, 0.1), FromNumeric(-3, ptr(0.3), nil), -6, ptr(0.9), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Apply(tt.op, tt.b)
			require.NoError(t, err)

			v, _ := got.Value()
			assert.InDelta(t, tt.wantValue, v, 1e-9)
			assert.Equal(t, Exact, got.Kind())

			up, hasUp := got.Upper()
			assert.Equal(t, tt.wantUpper != nil, hasUp)
			if tt.wantUpper != nil {
				assert.InDelta(t, *tt.wantUpper, up, 1e-9)
			}
			lo, hasLo := got.Lower()
			assert.Equal(t, tt.wantLower != nil, hasLo)
			if tt.wantLower != nil {
				assert.InDelta(t, *tt.wantLower, lo, 1e-9)
			}
		})
	}
}

// TestArithmetic_Algebra tests commutativity and associativity of Add
func TestArithmetic_Algebra(t *testing.T) {
	a := MustParse("10.2", "+3-2")
	b := MustParse("5.45", "12")
	c := MustParse("1.2E1", "4")

	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	assertClose(t, ab, ba)

	abc, err := ab.Add(c)
	require.NoError(t, err)
	bc, err := b.Add(c)
	require.NoError(t, err)
	abc2, err := a.Add(bc)
	require.NoError(t, err)
	assertClose(t, abc, abc2)

	mab, err := a.Multiply(b)
	require.NoError(t, err)
	mba, err := b.Multiply(a)
	require.NoError(t, err)
	assertClose(t, mab, mba)
}

func assertClose(t *testing.T, x, y Quantity) {
	t.Helper()
	xv, _ := x.Value()
	yv, _ := y.Value()
	assert.InDelta(t, xv, yv, 1e-9)
	xu, _ := x.Upper()
	yu, _ := y.Upper()
	assert.InDelta(t, xu, yu, 1e-9)
	xl, _ := x.Lower()
	yl, _ := y.Lower()
	assert.InDelta(t, xl, yl, 1e-9)
}

// TestArithmetic_Qualifiers tests kind propagation
func TestArithmetic_Qualifiers(t *testing.T) {
	exact := Symmetric(3, 0.1)
	lower := Limit(LowerLimit, 5, false)
	upper := Limit(UpperLimit, 5, true)
	approx := ApproximateValue(2)

	tests := []struct {
		name    string
		op      Operation
		a, b    Quantity
		want    Kind
		wantErr error
	}{
		{"lower plus exact", OpAdd, lower, exact, LowerLimit, nil},
		{"exact plus upper", OpAdd, exact, upper, UpperLimit, nil},
		{"exact minus lower", OpSubtract, exact, lower, LowerLimit, nil},
		{"lower minus exact", OpSubtract, lower, exact, LowerLimit, nil},
		{"lower times positive", OpMultiply, lower, exact, LowerLimit, nil},
		{"exact over upper", OpDivide, exact, upper, UpperLimit, nil},
		{"two approximate", OpAdd, approx, approx, Approximate, nil},
		{"approximate and exact", OpMultiply, approx, exact, Approximate, nil},
		{"lower plus upper", OpAdd, lower, upper, Unknown, apperrors.ErrIncompatibleQualifier},
		{"lower minus lower", OpSubtract, lower, lower, LowerLimit, nil},
		{"lower minus upper", OpSubtract, lower, upper, Unknown, apperrors.ErrIncompatibleQualifier},
		{"upper minus lower", OpSubtract, upper, lower, Unknown, apperrors.ErrIncompatibleQualifier},
		{"lower times upper", OpMultiply, lower, upper, Unknown, apperrors.ErrIncompatibleQualifier},
		{"lower over upper", OpDivide, lower, upper, Unknown, apperrors.ErrIncompatibleQualifier},
		{"divide by zero", OpDivide, exact, Symmetric(0, 1), Unknown, apperrors.ErrDivisionByZero},
		{"missing value", OpAdd, Quantity{}, exact, Unknown, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Apply(tt.op, tt.b)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind())
		})
	}
}

func TestLimitInclusivity(t *testing.T) {
	ge := Limit(LowerLimit, 5, true)
	gt := Limit(LowerLimit, 2, false)
	exact := Symmetric(1, 0.1)

	r, err := ge.Add(exact)
	require.NoError(t, err)
	assert.True(t, r.Inclusive())
	assert.Equal(t, "GE", r.DisplayUncertainty())

	r, err = ge.Add(gt)
	require.NoError(t, err)
	assert.Equal(t, LowerLimit, r.Kind())
	assert.False(t, r.Inclusive())
}

func TestArithmetic_Display(t *testing.T) {
	r, err := Symmetric(10, 1).Add(Symmetric(5, 0.5))
	require.NoError(t, err)
	assert.Equal(t, "15.0 15", r.String())
}

func TestToNumeric(t *testing.T) {
	n := MustParse("5", "LT").ToNumeric()
	assert.True(t, n.Limit)
	assert.Equal(t, 5.0, n.Value)
	assert.False(t, n.HasUpper)
	assert.False(t, n.HasLower)

	n = MustParse("10.0", "+12-8").ToNumeric()
	assert.False(t, n.Limit)
	assert.InDelta(t, 1.2, n.Upper, 1e-12)
	assert.InDelta(t, 0.8, n.Lower, 1e-12)
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(MustParse("5", "LT"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"value": 5,
		"upper_uncertainty": null,
		"lower_uncertainty": null,
		"kind": "upper_limit",
		"display_value": "5",
		"display_uncertainty": "LT",
		"significant_digits": 1
	}`, string(b))
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{in: "add", want: OpAdd},
		{in: "Multiply", want: OpMultiply},
		{in: "-", want: OpSubtract},
		{in: "/", want: OpDivide},
		{in: "pow", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			op, err := ParseOperation(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}
