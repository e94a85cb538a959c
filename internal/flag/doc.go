// Package flag defines the flag data model shared by the stores, the
// evaluator and the override API.
//
// A Record carries an ordered list of variations and the index served on
// the off path. Variation values are the sealed Value types in this package:
// Null, Bool, Int, Float, String, Array and Object. Unlike plain interface{}
// values they keep integers and floats apart, so a flag forced to 2 and a
// flag forced to 2.0 stay distinguishable after a round trip through JSON.
//
// This package imports nothing internal.
package flag
