package sql

import "fmt"

// Type is a concrete data type an expression can carry. The type-coercion
// ruleset (an external collaborator per spec.md §1) is the only component
// that reasons about implicit conversion between types; the analyzer
// itself only asks whether two types are equal or numeric.
type Type interface {
	fmt.Stringer
	Equals(other Type) bool
}

type primitiveType struct{ name string }

func (t *primitiveType) String() string { return t.name }
func (t *primitiveType) Equals(other Type) bool {
	o, ok := other.(*primitiveType)
	return ok && o.name == t.name
}

var (
	NullType    Type = &primitiveType{"null"}
	UnknownType Type = &primitiveType{"unknown"}
	BooleanType Type = &primitiveType{"boolean"}
	ByteType    Type = &primitiveType{"tinyint"}
	IntType     Type = &primitiveType{"int"}
	BigIntType  Type = &primitiveType{"bigint"}
	DoubleType  Type = &primitiveType{"double"}
	StringType  Type = &primitiveType{"varchar"}
	DateType    Type = &primitiveType{"date"}
	TimestampType Type = &primitiveType{"timestamp"}
)

// IsNumber reports whether t is one of the built-in numeric types.
func IsNumber(t Type) bool {
	switch t {
	case ByteType, IntType, BigIntType, DoubleType:
		return true
	}
	if _, ok := t.(*DecimalType); ok {
		return true
	}
	return false
}

// DecimalType is a fixed-precision decimal, kept distinct from the
// primitive numeric types because UpCast legality (§4.L) treats
// precision/scale narrowing specially.
type DecimalType struct {
	Precision int
	Scale     int
}

func (t *DecimalType) String() string { return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale) }
func (t *DecimalType) Equals(other Type) bool {
	o, ok := other.(*DecimalType)
	return ok && o.Precision == t.Precision && o.Scale == t.Scale
}

// StructField names one member of a StructType.
type StructField struct {
	Name string
	Type Type
}

// StructType models a nested record, resolved by ExtractValue's field
// getter (§4.E) and used by CreateStruct's implicit field naming (§4.M).
type StructType struct {
	Fields []StructField
}

func (t *StructType) String() string { return "struct" }
func (t *StructType) Equals(other Type) bool {
	o, ok := other.(*StructType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != o.Fields[i].Name || !f.Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (t *StructType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ArrayType models a homogeneous array, resolved by ExtractValue's index
// getter.
type ArrayType struct{ Elem Type }

func (t *ArrayType) String() string { return "array<" + t.Elem.String() + ">" }
func (t *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && o.Elem.Equals(t.Elem)
}

// MapType models a key/value map, resolved by ExtractValue's lookup getter.
type MapType struct{ Key, Value Type }

func (t *MapType) String() string { return "map<" + t.Key.String() + "," + t.Value.String() + ">" }
func (t *MapType) Equals(other Type) bool {
	o, ok := other.(*MapType)
	return ok && o.Key.Equals(t.Key) && o.Value.Equals(t.Value)
}
