package evaluation

import (
	"nucleval/internal/alignment"
	"nucleval/internal/averaging"
	"nucleval/internal/dataset"
)

// Dataset is one named source of records, ordered or not
type Dataset struct {
	Name    string           `json:"name" yaml:"name" validate:"required"`
	Records []dataset.Record `json:"records" yaml:"records" validate:"dive"`
}

// Overrides replace configured parameters for a single request.
// Zero values keep the configured setting.
type Overrides struct {
	ErrorLimit *int     `json:"error_limit,omitempty" yaml:"error_limit,omitempty"`
	Method     string   `json:"method,omitempty" yaml:"method,omitempty"`
	Tolerance  *float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
}

// Request asks for a full evaluation of a set of datasets
type Request struct {
	Datasets  []Dataset `json:"datasets" yaml:"datasets" validate:"required,min=1,dive"`
	Overrides `yaml:",inline"`
}

// GroupReport is the averaging outcome of one aligned group
type GroupReport struct {
	Index     int     `json:"index"`
	Reference float64 `json:"reference"`
	Residual  bool    `json:"residual,omitempty"`
	// Datasets lists the contributing datasets in request order.
	Datasets []string            `json:"datasets"`
	Points   []dataset.DataPoint `json:"points"`
	Result   *averaging.Result   `json:"result"`
}

// Report is the outcome of one evaluation run
type Report struct {
	Groups     []GroupReport `json:"groups"`
	Iterations int           `json:"iterations"`
	Terminated bool          `json:"terminated"`
	// TerminationReason is one of the alignment Reason constants.
	TerminationReason string `json:"termination_reason"`
	// Unaligned holds records that have neither a key nor a numeric value.
	Unaligned  []dataset.DataPoint `json:"unaligned,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
	Method     string              `json:"method"`
	ErrorLimit int                 `json:"error_limit"`
	Tolerance  float64             `json:"tolerance"`
}

// settings are the resolved parameters of one call
type settings struct {
	align  alignment.Options
	avg    averaging.Options
	method averaging.Method
}
