// Package dataset turns raw records reported by source datasets into data
// points ready for averaging.
//
// A record that does not parse, or whose quantity carries no usable
// statistical uncertainty, still becomes a DataPoint. It is flagged as
// reference-only with a note so it can appear in report narratives without
// contributing to any mean.
package dataset
