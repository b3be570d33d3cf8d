// Package header derives a flat, unique list of column names from the
// header block of one report file.
//
// Two modes exist. Merge joins the non-missing fragments of every header
// row per column position with "_". Single takes one header row verbatim
// and appends a provenance column. Both modes then run the uniqueness pass:
// the Nth occurrence of a name (N >= 2) becomes "<name>_<N>". Suffixed names
// are not checked again against the original names, so an input of
// ["a", "a", "a_2"] yields ["a", "a_2", "a_2"].
package header
