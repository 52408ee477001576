// Package ir holds the instruction list produced by code generation. Every
// instruction maps to exactly one line of ARB fragment-program assembly.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

type Op int

const (
	OpTemp Op = iota
	OpParam
	OpMov
	OpAdd
	OpSub
	OpMul
	OpRcp
	OpPow
	OpSlt
	OpSge
	OpMin
	OpMax
	OpRsq
	OpDp3
	OpLit
	OpAbs
	OpFlr
	OpCmp
)

var opNames = [...]string{
	OpTemp:  "TEMP",
	OpParam: "PARAM",
	OpMov:   "MOV",
	OpAdd:   "ADD",
	OpSub:   "SUB",
	OpMul:   "MUL",
	OpRcp:   "RCP",
	OpPow:   "POW",
	OpSlt:   "SLT",
	OpSge:   "SGE",
	OpMin:   "MIN",
	OpMax:   "MAX",
	OpRsq:   "RSQ",
	OpDp3:   "DP3",
	OpLit:   "LIT",
	OpAbs:   "ABS",
	OpFlr:   "FLR",
	OpCmp:   "CMP",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Value is an instruction operand.
type Value interface {
	isValue()
	String() string
}

// Register names a TEMP or PARAM slot, or a fixed resource such as
// result.color.
type Register struct{ Name string }

// Component selects one of x, y, z, w from a register.
type Component struct {
	Reg   Value
	Index int
}

// Const is a scalar literal.
type Const struct{ Value float64 }

// Tuple is a brace-delimited literal vector.
type Tuple struct{ Values []float64 }

// Neg negates its operand.
type Neg struct{ Value Value }

func (*Register) isValue()  {}
func (*Component) isValue() {}
func (*Const) isValue()     {}
func (*Tuple) isValue()     {}
func (*Neg) isValue()       {}

func (r *Register) String() string { return r.Name }

func (c *Component) String() string {
	return c.Reg.String() + "." + ComponentLetter(c.Index)
}

func (c *Const) String() string { return FormatFloat(c.Value) }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = FormatFloat(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (n *Neg) String() string { return "-" + n.Value.String() }

var componentLetters = [...]string{"x", "y", "z", "w"}

// ComponentLetter maps 0..3 to x, y, z, w. Any other index is a caller bug.
func ComponentLetter(index int) string {
	if index < 0 || index >= len(componentLetters) {
		panic(fmt.Sprintf("ir: component index %d outside 0..3", index))
	}
	return componentLetters[index]
}

// FormatFloat prints v as a plain decimal that always carries a fraction,
// e.g. 2 → "2.0", 0.25 → "0.25".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type Instruction struct {
	Op     Op
	Result Value
	Args   []Value
}

func (i *Instruction) String() string {
	switch i.Op {
	case OpTemp:
		return fmt.Sprintf("TEMP %s;", i.Result)
	case OpParam:
		return fmt.Sprintf("PARAM %s = %s;", i.Result, i.Args[0])
	}
	var sb strings.Builder
	sb.WriteString(i.Op.String())
	sb.WriteByte(' ')
	sb.WriteString(i.Result.String())
	for _, a := range i.Args {
		sb.WriteString(", ")
		sb.WriteString(a.String())
	}
	sb.WriteByte(';')
	return sb.String()
}

type Program struct {
	Instructions []*Instruction
	TempCount    int
}

func (p *Program) Emit(op Op, result Value, args ...Value) *Instruction {
	instr := &Instruction{Op: op, Result: result, Args: args}
	p.Instructions = append(p.Instructions, instr)
	return instr
}

// Count returns how many instructions use op.
func (p *Program) Count(op Op) int {
	n := 0
	for _, instr := range p.Instructions {
		if instr.Op == op {
			n++
		}
	}
	return n
}
