// Package config loads the evaluation service configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// Environment variables use the NUCLEVAL_ prefix followed by the section:
//
//	NUCLEVAL_SERVER_PORT=8080
//	NUCLEVAL_LOGGING_LEVEL=debug
//	NUCLEVAL_EVALUATION_ERROR_LIMIT=35
//	NUCLEVAL_EVALUATION_METHOD=lwm
//	NUCLEVAL_TELEMETRY_TRACE_EXPORTER=none
//
// NUCLEVAL_CONFIG names the YAML file when it is not passed explicitly.
//
// # Evaluation Parameters
//
// EvaluationConfig holds the thresholds the core needs. They are converted
// to immutable option values with AlignOptions and AveragingOptions and
// threaded through every call, so concurrent evaluations with different
// thresholds never share mutable state.
package config
