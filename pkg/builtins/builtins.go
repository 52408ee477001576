// Package builtins describes the shader variables every program can use
// without declaring them, and the ARB resources they stand for.
package builtins

import (
	"errors"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/token"
)

type Class int

const (
	Result    Class = iota // write-only hardware outputs
	Attribute              // read-only per-fragment inputs
	Uniform                // read-only constants
)

func (c Class) String() string {
	switch c {
	case Result:
		return "result"
	case Attribute:
		return "attribute"
	case Uniform:
		return "uniform"
	}
	return "unknown"
}

// Variable is one predefined shader variable.
type Variable struct {
	Name     string
	Type     ast.Type
	Class    Class
	Resource string // ARB register or state binding
}

// Variables lists every predefined variable in declaration order.
var Variables = []Variable{
	{"gl_FragColor", ast.TypeVec4, Result, "result.color"},
	{"gl_FragDepth", ast.TypeBool, Result, "result.depth"},
	{"gl_FragCoord", ast.TypeVec4, Attribute, "fragment.position"},
	{"gl_TexCoord", ast.TypeVec4, Attribute, "fragment.texcoord"},
	{"gl_Color", ast.TypeVec4, Attribute, "fragment.color"},
	{"gl_Secondary", ast.TypeVec4, Attribute, "fragment.color.secondary"},
	{"gl_FogFragCoord", ast.TypeVec4, Attribute, "fragment.fogcoord"},
	{"gl_Light_Half", ast.TypeVec4, Uniform, "state.light[0].half"},
	{"gl_Light_Ambient", ast.TypeVec4, Uniform, "state.lightmodel.ambient"},
	{"gl_Material_Shininess", ast.TypeVec4, Uniform, "state.material.shininess"},
	{"env1", ast.TypeVec4, Uniform, "program.env[1]"},
	{"env2", ast.TypeVec4, Uniform, "program.env[2]"},
	{"env3", ast.TypeVec4, Uniform, "program.env[3]"},
}

var byName = func() map[string]Variable {
	m := make(map[string]Variable, len(Variables))
	for _, v := range Variables {
		m[v.Name] = v
	}
	return m
}()

// Lookup returns the predefined variable called name.
func Lookup(name string) (Variable, bool) {
	v, ok := byName[name]
	return v, ok
}

// Resource maps a predefined variable name to its ARB resource.
func Resource(name string) (string, bool) {
	v, ok := byName[name]
	return v.Resource, ok
}

// Declaration builds the tree declaration for v with its class qualifiers.
func (v Variable) Declaration() *ast.Declaration {
	decl := ast.NewDeclaration(token.Span{}, v.Name, token.Span{}, v.Type, nil, false)
	decl.Predefined = true
	switch v.Class {
	case Result:
		decl.IsWriteOnly = true
	case Attribute:
		decl.IsReadOnly = true
	case Uniform:
		decl.IsConst = true
		decl.IsReadOnly = true
	}
	return decl
}

var ErrAlreadyInjected = errors.New("builtins: predefined variables already injected")

// Inject front-inserts the predefined declarations into the outermost scope,
// ahead of every user declaration. Injecting twice would declare every name a
// second time, so a second call returns ErrAlreadyInjected and leaves root
// untouched.
func Inject(root *ast.Scope) error {
	if Injected(root) {
		return ErrAlreadyInjected
	}
	decls := make([]*ast.Declaration, 0, len(Variables)+len(root.Decls))
	for _, v := range Variables {
		decls = append(decls, v.Declaration())
	}
	root.Decls = append(decls, root.Decls...)
	return nil
}

// Injected reports whether root already starts with the predefined declarations.
func Injected(root *ast.Scope) bool {
	return len(root.Decls) > 0 && root.Decls[0].Predefined
}
