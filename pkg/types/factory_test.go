package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbase/colbase/pkg/typerr"
)

func TestCreateDataTypeSimpleNames(t *testing.T) {
	for _, name := range SimpleTypeNames() {
		dt, err := CreateDataType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, dt.Name())
	}
}

func TestCreateDataTypeComposite(t *testing.T) {
	tests := []string{
		"Nullable(Int32)",
		"Array(String)",
		"FixedString(16)",
		"Array(Nullable(FixedString(8)))",
		"Nullable(Array(Array(UInt64)))",
	}
	for _, name := range tests {
		dt, err := CreateDataType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, dt.Name(), "names must round-trip")
	}
}

func TestCreateDataTypeTrimsSpace(t *testing.T) {
	dt, err := CreateDataType("  Nullable( Int32 )  ")
	require.NoError(t, err)
	assert.Equal(t, "Nullable(Int32)", dt.Name())
}

func TestCreateDataTypeRejectsUnknown(t *testing.T) {
	for _, name := range []string{
		"",
		"Bogus",
		"Nullable",
		"Nullable()",
		"Array(Bogus)",
		"FixedString(x)",
		"FixedString(0)",
		"Nullable(Nullable(Int8))",
		"(Int8)",
		"Int8)",
	} {
		_, err := CreateDataType(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, typerr.IsMalformed(err), "name %q: got %v", name, err)
	}
}

func TestSimpleTypeNamesSortedAndComplete(t *testing.T) {
	names := SimpleTypeNames()
	require.Len(t, names, 13)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "Int64")
	assert.Contains(t, names, "DateTime")
	assert.Contains(t, names, "String")
}
