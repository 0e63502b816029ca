package store

// Status is the outcome of one compilation.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Compilation is one row of the compilation log.
type Compilation struct {
	ID      string
	Seq     int64
	SQL     string
	SQLHash string
	Catalog string

	// SPARQL and Columns are set when Status is StatusOK.
	SPARQL  string
	Columns []string

	Status Status

	// ErrorCode, ErrorMessage and ErrorFragment are set when Status is
	// StatusError.
	ErrorCode     string
	ErrorMessage  string
	ErrorFragment string

	EngineVersion string
	IRVersion     string
}
