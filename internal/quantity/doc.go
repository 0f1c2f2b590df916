// Package quantity implements measured values with asymmetric and qualified
// uncertainties, as written in evaluated nuclear structure data.
//
// # Notation
//
// A quantity is written as a value text and an uncertainty text. The
// uncertainty applies to the least-significant digits of the value:
//
//	"123.45" "12"     123.45 ± 0.12
//	"1.2E3"  "3"      1200 ± 300
//	"10.0"   "+12-8"  10.0 +1.2 -0.8
//	"5"      "LT"     below 5
//	"5"      "AP"     about 5
//
// Qualifiers LT, LE, GT, GE mark limits, AP marks an approximate value, CA and
// SY mark calculated or systematics values and "?" marks an uncertain one.
//
// # Rendering
//
// Format rounds the uncertainty to one significant digit when its leading
// digit is 2 or more and to two digits otherwise, then rounds the value to the
// same decimal position. The error limit (a percentage, typically 25, 35 or
// 99) decides when an asymmetric uncertainty is merged into a symmetric one.
//
// # Arithmetic
//
// Add, Subtract, Multiply and Divide propagate upper and lower uncertainties
// linearly and independently per side; they are reported ranges, not
// statistical standard deviations combined in quadrature. A limit combined
// with any other kind stays a limit; a lower limit mixed with an upper limit
// is an IncompatibleQualifier error.
//
// Quantity values are immutable; every operation returns a new value.
package quantity
