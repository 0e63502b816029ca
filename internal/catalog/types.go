package catalog

import (
	"fmt"
	"strings"

	"github.com/roach88/rdfsql/internal/queryir"
)

// SQLType is the SQL type code a column reports to clients.
type SQLType int

const (
	TypeOther SQLType = iota
	TypeVarchar
	TypeChar
	TypeInteger
	TypeBigInt
	TypeSmallInt
	TypeTinyInt
	TypeDecimal
	TypeNumeric
	TypeDouble
	TypeFloat
	TypeReal
	TypeBoolean
	TypeDate
	TypeTime
	TypeTimestamp
)

var sqlTypeNames = map[SQLType]string{
	TypeOther:     "OTHER",
	TypeVarchar:   "VARCHAR",
	TypeChar:      "CHAR",
	TypeInteger:   "INTEGER",
	TypeBigInt:    "BIGINT",
	TypeSmallInt:  "SMALLINT",
	TypeTinyInt:   "TINYINT",
	TypeDecimal:   "DECIMAL",
	TypeNumeric:   "NUMERIC",
	TypeDouble:    "DOUBLE",
	TypeFloat:     "FLOAT",
	TypeReal:      "REAL",
	TypeBoolean:   "BOOLEAN",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeTimestamp: "TIMESTAMP",
}

// String returns the upper-case SQL type name.
func (t SQLType) String() string {
	if s, ok := sqlTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SQLType(%d)", int(t))
}

// ParseSQLType parses a SQL type name case-insensitively. INT, STRING and
// TEXT are accepted as aliases.
func ParseSQLType(s string) (SQLType, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case "INT":
		return TypeInteger, nil
	case "STRING", "TEXT":
		return TypeVarchar, nil
	case "DATETIME":
		return TypeTimestamp, nil
	case "BOOL":
		return TypeBoolean, nil
	}
	for t, name := range sqlTypeNames {
		if name == u {
			return t, nil
		}
	}
	return TypeOther, fmt.Errorf("unknown SQL type %q", s)
}

// LiteralKind returns the literal kind values of this type compile to.
func (t SQLType) LiteralKind() queryir.LiteralKind {
	switch t {
	case TypeInteger, TypeBigInt, TypeSmallInt, TypeTinyInt:
		return queryir.LitInteger
	case TypeDecimal, TypeNumeric:
		return queryir.LitDecimal
	case TypeDouble, TypeFloat, TypeReal:
		return queryir.LitDouble
	case TypeBoolean:
		return queryir.LitBoolean
	case TypeDate:
		return queryir.LitDate
	case TypeTime:
		return queryir.LitTime
	case TypeTimestamp:
		return queryir.LitTimestamp
	default:
		return queryir.LitString
	}
}

// IsNumeric reports whether values of this type are numbers.
func (t SQLType) IsNumeric() bool {
	switch t.LiteralKind() {
	case queryir.LitInteger, queryir.LitDecimal, queryir.LitDouble:
		return true
	}
	return false
}

// SQLTypeOf returns the type reported for a literal of kind k.
func SQLTypeOf(k queryir.LiteralKind) SQLType {
	switch k {
	case queryir.LitString:
		return TypeVarchar
	case queryir.LitInteger:
		return TypeInteger
	case queryir.LitDecimal:
		return TypeDecimal
	case queryir.LitDouble:
		return TypeDouble
	case queryir.LitBoolean:
		return TypeBoolean
	case queryir.LitDate:
		return TypeDate
	case queryir.LitTime:
		return TypeTime
	case queryir.LitTimestamp:
		return TypeTimestamp
	default:
		return TypeOther
	}
}
