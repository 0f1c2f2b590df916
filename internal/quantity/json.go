package quantity

import "encoding/json"

type quantityJSON struct {
	Value              *float64 `json:"value"`
	Upper              *float64 `json:"upper_uncertainty"`
	Lower              *float64 `json:"lower_uncertainty"`
	Kind               string   `json:"kind"`
	Inclusive          bool     `json:"inclusive,omitempty"`
	DisplayValue       string   `json:"display_value"`
	DisplayUncertainty string   `json:"display_uncertainty"`
	SignificantDigits  int      `json:"significant_digits,omitempty"`
}

// MarshalJSON encodes the numeric and display forms. Absent sides are null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	out := quantityJSON{
		Kind:               q.kind.String(),
		Inclusive:          q.inclusive,
		DisplayValue:       q.displayValue,
		DisplayUncertainty: q.displayUncertainty,
		SignificantDigits:  q.sigDigits,
	}
	if q.hasValue {
		v := q.value
		out.Value = &v
	}
	if q.hasUpper {
		u := q.upper
		out.Upper = &u
	}
	if q.hasLower {
		l := q.lower
		out.Lower = &l
	}
	return json.Marshal(out)
}
