package cli

import (
	"errors"

	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// CLI error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeReadFailed  = "E003" // Input could not be read
	ErrCodeWriteFailed = "E004" // File write error
	ErrCodeNoCatalog   = "E005" // No catalog given
	ErrCodeStoreFailed = "E006" // Compilation log could not be opened or read

	// Catalog definition errors
	ErrCodeCatalogLoad = "E101" // Catalog file could not be loaded

	// Compilation errors
	ErrCodeSyntax              = "E201"
	ErrCodeTableNotFound       = "E202"
	ErrCodeColumnNotFound      = "E203"
	ErrCodeAmbiguousColumn     = "E204"
	ErrCodeAmbiguousReference  = "E205"
	ErrCodeUnsupported         = "E206"
	ErrCodeUnsupportedJoin     = "E207"
	ErrCodeUnsupportedFunction = "E208"
	ErrCodeArgumentCount       = "E209"
	ErrCodeInvalidIdentifier   = "E210"
	ErrCodeInvalidCatalog      = "E211"
	ErrCodeBuilderConsumed     = "E212"

	// Engine errors
	ErrCodeEngineNoCatalog = "E220"
	ErrCodeInvalidQuery    = "E221"
	ErrCodeRender          = "E222"
)

var sqlCodes = map[sqlerr.Code]string{
	sqlerr.CodeSyntaxError:          ErrCodeSyntax,
	sqlerr.CodeTableNotFound:        ErrCodeTableNotFound,
	sqlerr.CodeColumnNotFound:       ErrCodeColumnNotFound,
	sqlerr.CodeAmbiguousColumn:      ErrCodeAmbiguousColumn,
	sqlerr.CodeAmbiguousReference:   ErrCodeAmbiguousReference,
	sqlerr.CodeUnsupportedConstruct: ErrCodeUnsupported,
	sqlerr.CodeUnsupportedJoinKind:  ErrCodeUnsupportedJoin,
	sqlerr.CodeUnsupportedFunction:  ErrCodeUnsupportedFunction,
	sqlerr.CodeWrongArgumentCount:   ErrCodeArgumentCount,
	sqlerr.CodeInvalidIdentifier:    ErrCodeInvalidIdentifier,
	sqlerr.CodeInvalidCatalog:       ErrCodeInvalidCatalog,
	sqlerr.CodeBuilderConsumed:      ErrCodeBuilderConsumed,
}

var runtimeCodes = map[engine.RuntimeErrorCode]string{
	engine.ErrCodeNoCatalog:    ErrCodeEngineNoCatalog,
	engine.ErrCodeInvalidQuery: ErrCodeInvalidQuery,
	engine.ErrCodeRender:       ErrCodeRender,
}

// compileErrorInfo maps a Prepare error to its CLI code, message and
// details.
func compileErrorInfo(err error) (code, message string, details map[string]string) {
	var se *sqlerr.Error
	if errors.As(err, &se) {
		details = map[string]string{"kind": string(se.Code)}
		if se.Keyword != "" {
			details["keyword"] = se.Keyword
		}
		if se.Fragment != "" {
			details["fragment"] = se.Fragment
		}
		if c, ok := sqlCodes[se.Code]; ok {
			return c, se.Message, details
		}
		return ErrCodeGeneric, se.Message, details
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		details = map[string]string{"kind": string(re.Code)}
		for k, v := range re.Details {
			details[k] = v
		}
		if c, ok := runtimeCodes[re.Code]; ok {
			return c, re.Message, details
		}
	}
	return ErrCodeGeneric, err.Error(), nil
}
