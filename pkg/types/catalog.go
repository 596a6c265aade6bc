package types

import "math"

// Constructors for the numeric family. Each call returns a fresh
// descriptor; since descriptors are immutable the instances are freely
// shareable afterwards.

func NewInt8() DataType {
	return newSigned[int8]("Int8", 1)
}

func NewInt16() DataType {
	return newSigned[int16]("Int16", 2)
}

func NewInt32() DataType {
	return newSigned[int32]("Int32", 4)
}

func NewInt64() DataType {
	return newSigned[int64]("Int64", 8)
}

func NewUInt8() DataType {
	return newUnsigned[uint8]("UInt8", 1)
}

func NewUInt16() DataType {
	return newUnsigned[uint16]("UInt16", 2)
}

func NewUInt32() DataType {
	return newUnsigned[uint32]("UInt32", 4)
}

func NewUInt64() DataType {
	return newUnsigned[uint64]("UInt64", 8)
}

func NewFloat32() DataType {
	return newFloat[float32]("Float32", 4,
		func(v float32) uint64 { return uint64(math.Float32bits(v)) },
		func(bits uint64) float32 { return math.Float32frombits(uint32(bits)) })
}

func NewFloat64() DataType {
	return newFloat[float64]("Float64", 8,
		math.Float64bits,
		math.Float64frombits)
}
