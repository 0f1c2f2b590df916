package api

// Quantity is the JSON form of a parsed or computed quantity
type Quantity struct {
	Value              *float64 `json:"value"`
	UpperUncertainty   *float64 `json:"upper_uncertainty"`
	LowerUncertainty   *float64 `json:"lower_uncertainty"`
	Kind               string   `json:"kind"`
	Inclusive          bool     `json:"inclusive,omitempty"`
	DisplayValue       string   `json:"display_value"`
	DisplayUncertainty string   `json:"display_uncertainty"`
	SignificantDigits  int      `json:"significant_digits,omitempty"`
}

// Rendered is a quantity rendered to text
type Rendered struct {
	Value       string `json:"value"`
	Uncertainty string `json:"uncertainty"`
}

// QuantityResponse carries a quantity and its rendering
type QuantityResponse struct {
	Quantity Quantity `json:"quantity"`
	Rendered Rendered `json:"rendered"`
}

// AlignedGroup is one group of an alignment
type AlignedGroup struct {
	Indices   []int   `json:"indices"`
	Reference float64 `json:"reference"`
	Spread    float64 `json:"spread"`
	Residual  bool    `json:"residual,omitempty"`
}

// AlignResponse is the outcome of an alignment
type AlignResponse struct {
	Groups            []AlignedGroup `json:"groups"`
	Iterations        int            `json:"iterations"`
	Terminated        bool           `json:"terminated"`
	TerminationReason string         `json:"termination_reason"`
	Warnings          []string       `json:"warnings,omitempty"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
