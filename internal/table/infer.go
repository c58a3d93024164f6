package table

import (
	"strconv"

	"congressdata/internal/flatten"
)

const (
	TypeBoolean = "BOOLEAN"
	TypeBigint  = "BIGINT"
	TypeDouble  = "DOUBLE"
	TypeVarchar = "VARCHAR"
)

type kinds struct {
	boolean bool
	integer bool
	double  bool
	text    bool
}

// InferTypes looks at every value of every record, not a sample, since optional fields are
// often null for thousands of rows before the first populated one. Integers mixed with
// doubles widen to DOUBLE, any other mix (and all-null columns) become VARCHAR.
func InferTypes(columns []string, records []flatten.Record) map[string]string {
	seen := make(map[string]*kinds, len(columns))
	for _, c := range columns {
		seen[c] = &kinds{}
	}

	for _, r := range records {
		for _, c := range columns {
			k := seen[c]
			switch flatten.Scalar(r[c]).(type) {
			case nil:
			case bool:
				k.boolean = true
			case int64:
				k.integer = true
			case float64:
				k.double = true
			default:
				k.text = true
			}
		}
	}

	out := make(map[string]string, len(columns))
	for _, c := range columns {
		k := seen[c]
		switch {
		case k.text:
			out[c] = TypeVarchar
		case k.boolean && !k.integer && !k.double:
			out[c] = TypeBoolean
		case k.boolean:
			out[c] = TypeVarchar
		case k.double:
			out[c] = TypeDouble
		case k.integer:
			out[c] = TypeBigint
		default:
			out[c] = TypeVarchar
		}
	}
	return out
}

// coerce converts a value to what its inferred column type will accept.
func coerce(v any, typ string) any {
	v = flatten.Scalar(v)
	if v == nil {
		return nil
	}
	switch typ {
	case TypeVarchar:
		switch t := v.(type) {
		case string:
			return t
		case bool:
			return strconv.FormatBool(t)
		case int64:
			return strconv.FormatInt(t, 10)
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case TypeDouble:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	}
	return v
}
