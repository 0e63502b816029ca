package compiler

// Version constants for compiled output.
const (
	// Version is the compiler version reported by the VERSION() function.
	Version = "0.1.0"

	// IRVersion is the query IR schema version recorded with each
	// compilation.
	IRVersion = "1"
)
