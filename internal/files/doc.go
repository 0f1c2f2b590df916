// Package files discovers and loads evaluation input from disk.
//
// An input path is either a request document or a directory. A request
// document (.yaml, .yml or .json) lists every dataset with optional
// overrides. A directory holds one dataset per file, named after the file
// stem, as YAML, JSON or CSV.
//
// CSV dataset files carry a header row. The value column is required; id,
// key, uncertainty and provenance are optional and matched
// case-insensitively:
//
//	id,key,value,uncertainty,provenance
//	a1,100,100.0,5,2005AB12
//	a2,,LT 200,,2011CD34
//
// Example usage:
//
//	loader := files.NewLoader("", logger)
//	req, err := loader.LoadRequest("data/levels")
package files
