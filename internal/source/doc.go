// Package source reads report files into raw records and splits them into
// the header block and the data region described by a layout.
//
// CSV files are parsed with encoding/csv; records keep the 0-indexed line on
// which they start so layouts address file lines even when blank lines are
// present. Files ending in .xlsx or .xlsm are read from a worksheet with
// excelize, where each worksheet row is one line.
package source
