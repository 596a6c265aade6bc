package types

import (
	"sort"
	"strconv"
	"strings"

	"github.com/colbase/colbase/pkg/typerr"
)

// simpleTypes maps bare type names to their constructors. Parameterized
// names (Nullable, Array, FixedString) are handled by CreateDataType.
var simpleTypes = map[string]func() DataType{
	"Int8":     NewInt8,
	"Int16":    NewInt16,
	"Int32":    NewInt32,
	"Int64":    NewInt64,
	"UInt8":    NewUInt8,
	"UInt16":   NewUInt16,
	"UInt32":   NewUInt32,
	"UInt64":   NewUInt64,
	"Float32":  NewFloat32,
	"Float64":  NewFloat64,
	"Date":     NewDate,
	"DateTime": NewDateTime,
	"String":   NewString,
}

// SimpleTypeNames lists the non-parameterized type names in sorted order.
func SimpleTypeNames() []string {
	names := make([]string, 0, len(simpleTypes))
	for name := range simpleTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateDataType resolves a type name such as "Int32", "Nullable(String)"
// or "Array(Nullable(FixedString(16)))" into its descriptor. Names
// round-trip: CreateDataType(t.Name()) yields an equivalent descriptor.
func CreateDataType(name string) (DataType, error) {
	name = strings.TrimSpace(name)
	if ctor, ok := simpleTypes[name]; ok {
		return ctor(), nil
	}

	outer, arg, ok := splitParam(name)
	if !ok {
		return nil, typerr.Malformedf("unknown type name %q", name)
	}
	switch outer {
	case "Nullable":
		inner, err := CreateDataType(arg)
		if err != nil {
			return nil, err
		}
		return NewNullable(inner)
	case "Array":
		elem, err := CreateDataType(arg)
		if err != nil {
			return nil, err
		}
		return NewArray(elem), nil
	case "FixedString":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, typerr.Malformedf("bad FixedString length %q", arg)
		}
		return NewFixedString(n)
	default:
		return nil, typerr.Malformedf("unknown type name %q", name)
	}
}

// splitParam breaks "Outer(arg)" into its parts; reports false when the
// name is not of that shape.
func splitParam(name string) (outer, arg string, ok bool) {
	open := strings.IndexByte(name, '(')
	if open <= 0 || !strings.HasSuffix(name, ")") {
		return "", "", false
	}
	return name[:open], name[open+1 : len(name)-1], true
}
