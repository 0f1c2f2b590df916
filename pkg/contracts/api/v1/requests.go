// Package api contains the JSON contracts of the nucleval HTTP API.
// Version v1 represents the current stable API version.
package api

// QuantityInput is a quantity in ENSDF-style text notation
type QuantityInput struct {
	Value       string `json:"value" validate:"required"`
	Uncertainty string `json:"uncertainty,omitempty"`
}

// ParseRequest asks for a quantity to be parsed
type ParseRequest struct {
	QuantityInput
	ErrorLimit *int `json:"error_limit,omitempty" validate:"omitempty,min=1,max=99"`
}

// FormatRequest asks for a numeric quantity to be rendered
type FormatRequest struct {
	Value      *float64 `json:"value" validate:"required"`
	Upper      *float64 `json:"upper_uncertainty,omitempty" validate:"omitempty,gte=0"`
	Lower      *float64 `json:"lower_uncertainty,omitempty" validate:"omitempty,gte=0"`
	ErrorLimit *int     `json:"error_limit,omitempty" validate:"omitempty,min=1,max=99"`
	SmallError float64  `json:"small_error,omitempty" validate:"gte=0"`
}

// ArithmeticRequest combines two quantities
type ArithmeticRequest struct {
	Left       QuantityInput `json:"left"`
	Operation  string        `json:"operation" validate:"required"`
	Right      QuantityInput `json:"right"`
	ErrorLimit *int          `json:"error_limit,omitempty" validate:"omitempty,min=1,max=99"`
}

// AlignRequest aligns series of non-decreasing keys
type AlignRequest struct {
	Series    [][]float64 `json:"series" validate:"required,min=1"`
	Tolerance *float64    `json:"tolerance,omitempty" validate:"omitempty,gte=0"`
}

// PointInput is one data point of an average request
type PointInput struct {
	ID          string `json:"id,omitempty"`
	Dataset     string `json:"dataset,omitempty"`
	Value       string `json:"value" validate:"required"`
	Uncertainty string `json:"uncertainty,omitempty"`
	Provenance  string `json:"provenance,omitempty"`
}

// AverageRequest averages one group of points
type AverageRequest struct {
	Name       string       `json:"name,omitempty"`
	Points     []PointInput `json:"points" validate:"required,min=1,dive"`
	Method     string       `json:"method,omitempty"`
	ErrorLimit *int         `json:"error_limit,omitempty" validate:"omitempty,min=1,max=99"`
}

// RecordInput is one record of a dataset
type RecordInput struct {
	ID          string   `json:"id,omitempty"`
	Key         *float64 `json:"key,omitempty"`
	Value       string   `json:"value" validate:"required"`
	Uncertainty string   `json:"uncertainty,omitempty"`
	Provenance  string   `json:"provenance,omitempty"`
}

// DatasetInput is a named list of records
type DatasetInput struct {
	Name    string        `json:"name" validate:"required"`
	Records []RecordInput `json:"records" validate:"dive"`
}

// EvaluateRequest runs a complete evaluation
type EvaluateRequest struct {
	Datasets   []DatasetInput `json:"datasets" validate:"required,min=1,dive"`
	Method     string         `json:"method,omitempty"`
	ErrorLimit *int           `json:"error_limit,omitempty" validate:"omitempty,min=1,max=99"`
	Tolerance  *float64       `json:"tolerance,omitempty" validate:"omitempty,gte=0"`
}
