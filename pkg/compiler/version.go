package compiler

// Version returns the current version of the converter, recorded in every
// compiled measurement row.
func Version() string { return "0.1.0" }
