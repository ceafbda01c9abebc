// Package schema infers SQLite column types from tabular data and
// reconciles a freshly inferred schema against an existing table.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a destination SQLite column type tag.
type Type int

const (
	TypeInteger Type = iota
	TypeReal
	TypeBoolean
	TypeText
)

// String returns the SQLite type name for the tag.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// ParseType maps a declared SQLite type name back to a tag. Unknown
// declarations fall back to TEXT, mirroring SQLite's own affinity rules.
func ParseType(s string) Type {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT":
		return TypeInteger
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL":
		return TypeReal
	case "BOOLEAN", "BOOL":
		return TypeBoolean
	default:
		return TypeText
	}
}

// InferType classifies a column's values into exactly one type tag.
// The checks run in order: integer, then float, then boolean, else text.
// Integer must precede float so "1" stays INTEGER, and boolean must
// precede the text fallthrough so true/false columns are not demoted.
// Empty values are NULLs and do not participate; an all-empty column
// is TEXT.
func InferType(values []string) Type {
	seen := false
	allInt, allFloat, allBool := true, true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, err := strconv.ParseBool(v); err != nil {
				allBool = false
			}
		}
	}
	switch {
	case !seen:
		return TypeText
	case allInt:
		return TypeInteger
	case allFloat:
		return TypeReal
	case allBool:
		return TypeBoolean
	default:
		return TypeText
	}
}

// Column is a named, typed column.
type Column struct {
	Name string
	Type Type
}

// Schema is an ordered set of columns. Order follows the CSV header.
type Schema []Column

// Infer derives a schema from a header row and data rows. Every header
// column gets exactly one type tag; rows shorter than the header
// contribute NULLs for the missing columns.
func Infer(header []string, rows [][]string) Schema {
	s := make(Schema, 0, len(header))
	for i, name := range header {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		s = append(s, Column{Name: name, Type: InferType(values)})
	}
	return s
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// String renders the schema as "name TYPE, name TYPE" for display.
func (s Schema) String() string {
	var b strings.Builder
	for i, c := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", c.Name, c.Type)
	}
	return b.String()
}

// Coerce converts a raw CSV value to a Go value matching the declared
// column type. Empty strings become NULL. A value that cannot be
// represented in the declared type is an error; the caller treats it
// as an insertion failure.
func (c Column) Coerce(raw string) (any, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	switch c.Type {
	case TypeInteger:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not an integer", c.Name, raw)
		}
		return n, nil
	case TypeReal:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not a number", c.Name, raw)
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not a boolean", c.Name, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}
