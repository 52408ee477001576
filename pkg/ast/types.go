package ast

import "fmt"

// Base is the scalar element type underlying every shader type.
type Base int

const (
	BaseInvalid Base = iota
	BaseInt
	BaseBool
	BaseFloat
)

func (b Base) String() string {
	switch b {
	case BaseInt:
		return "int"
	case BaseBool:
		return "bool"
	case BaseFloat:
		return "float"
	}
	return "<unresolved>"
}

// Type is one cell of the base × dimension grid. The zero value is Invalid
// and stands for "not yet inferred" or "could not be typed".
type Type struct {
	base Base
	dim  int
}

var Invalid Type

// Pre-defined types
var (
	TypeInt   = Type{BaseInt, 1}
	TypeIvec2 = Type{BaseInt, 2}
	TypeIvec3 = Type{BaseInt, 3}
	TypeIvec4 = Type{BaseInt, 4}
	TypeBool  = Type{BaseBool, 1}
	TypeBvec2 = Type{BaseBool, 2}
	TypeBvec3 = Type{BaseBool, 3}
	TypeBvec4 = Type{BaseBool, 4}
	TypeFloat = Type{BaseFloat, 1}
	TypeVec2  = Type{BaseFloat, 2}
	TypeVec3  = Type{BaseFloat, 3}
	TypeVec4  = Type{BaseFloat, 4}
)

var typeNames = map[Base][5]string{
	BaseInt:   {"", "int", "ivec2", "ivec3", "ivec4"},
	BaseBool:  {"", "bool", "bvec2", "bvec3", "bvec4"},
	BaseFloat: {"", "float", "vec2", "vec3", "vec4"},
}

// NewType returns the grid cell for base and dim. It panics on values outside
// the grid.
func NewType(base Base, dim int) Type {
	if _, ok := typeNames[base]; !ok || dim < 1 || dim > 4 {
		panic(fmt.Sprintf("ast: no type for base %v with dimension %d", base, dim))
	}
	return Type{base, dim}
}

// ParseType maps a type name such as "ivec3" to its Type.
func ParseType(name string) (Type, bool) {
	for base, names := range typeNames {
		for dim := 1; dim <= 4; dim++ {
			if names[dim] == name {
				return Type{base, dim}, true
			}
		}
	}
	return Invalid, false
}

func (t Type) IsValid() bool { return t.base != BaseInvalid }

// Dim is the vector width, 1 for scalars.
func (t Type) Dim() int { return t.dim }

func (t Type) Base() Base { return t.base }

// Scalar is the dimension-1 type with the same base.
func (t Type) Scalar() Type {
	if !t.IsValid() {
		return Invalid
	}
	return Type{t.base, 1}
}

func (t Type) IsScalar() bool { return t.IsValid() && t.dim == 1 }
func (t Type) IsVector() bool { return t.IsValid() && t.dim > 1 }

func (t Type) String() string {
	if !t.IsValid() {
		return "<unresolved>"
	}
	return typeNames[t.base][t.dim]
}
