// Package evaluation ties the core together. It aligns the records of
// several datasets on their keys, builds one collection per aligned group
// and averages the groups concurrently.
package evaluation
