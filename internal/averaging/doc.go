// Package averaging combines the data points of one group into an adopted
// value with a consistency diagnosis.
//
// Every call walks the same stages: points are collected, points without a
// usable uncertainty are filtered out (they stay in the report as
// reference-only), weights 1/σ² are computed from the larger uncertainty
// side, and the weighted mean is checked against the chi-square critical
// value at the configured confidence level. A consistent group is
// accepted; an inconsistent one is refined by the selected method.
//
// The methods form a closed set:
//
//	Weighted    inverse-variance weighted mean
//	Unweighted  arithmetic mean
//	LWM         limitation of relative statistical weight
//	NRM         normalized residuals, removing outliers one at a time
//	Rajeval     population and consistency tests, inflating discrepant points
//	EVM         expected value method
//	Bootstrap   median of resampled, smeared data sets
//	Iterative   Huber reweighting until a fixed point
//	Best        the single most precise point
//	Auto        weighted mean when consistent, otherwise the best refinement
//
// Each method reports the points it excluded or down-weighted so the
// narrative stays auditable.
package averaging
