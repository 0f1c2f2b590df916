// Package http implements the HTTP surface of nucleval. Handlers are a
// thin layer over the quantity package and the evaluation service: they
// decode and validate JSON contracts from pkg/contracts/api/v1, call into
// the core, and render results or RFC 7807 problem details.
//
// # Routes
//
//	POST /api/v1/quantities/parse       parse a value and uncertainty
//	POST /api/v1/quantities/format      render a numeric quantity
//	POST /api/v1/quantities/arithmetic  combine two quantities
//	POST /api/v1/align                  align key series
//	POST /api/v1/average                average one group of points
//	POST /api/v1/evaluate               align and average datasets
//	GET  /healthz                       liveness
//	GET  /metrics                       Prometheus scrape
//
// The evaluate route accepts ?format=json|csv|xlsx and streams the report
// in the requested form.
//
// # Errors
//
// Every failure goes through errors.ErrorHandler so clients always receive
// application/problem+json with a stable type URI.
package http
