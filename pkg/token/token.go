package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Illegal
	Ident
	IntNumber
	FloatNumber
	True
	False
	Const
	If
	Else
	TypeName
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma
	Dot
	Eq
	Plus
	Minus
	Star
	Slash
	Caret
	EqEq
	Neq
	Lt
	Gt
	Gte
	Lte
	AndAnd
	OrOr
	Not
)

var KeywordMap = map[string]Type{
	"const": Const,
	"if":    If,
	"else":  Else,
	"true":  True,
	"false": False,
	"int":   TypeName,
	"ivec2": TypeName,
	"ivec3": TypeName,
	"ivec4": TypeName,
	"bool":  TypeName,
	"bvec2": TypeName,
	"bvec3": TypeName,
	"bvec4": TypeName,
	"float": TypeName,
	"vec2":  TypeName,
	"vec3":  TypeName,
	"vec4":  TypeName,
}

var typeStrings = map[Type]string{
	EOF:         "end of file",
	Illegal:     "illegal character",
	Ident:       "identifier",
	IntNumber:   "integer literal",
	FloatNumber: "float literal",
	True:        "'true'",
	False:       "'false'",
	Const:       "'const'",
	If:          "'if'",
	Else:        "'else'",
	TypeName:    "type name",
	LParen:      "'('",
	RParen:      "')'",
	LBrace:      "'{'",
	RBrace:      "'}'",
	LBracket:    "'['",
	RBracket:    "']'",
	Semi:        "';'",
	Comma:       "','",
	Dot:         "'.'",
	Eq:          "'='",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Caret:       "'^'",
	EqEq:        "'=='",
	Neq:         "'!='",
	Lt:          "'<'",
	Gt:          "'>'",
	Gte:         "'>='",
	Lte:         "'<='",
	AndAnd:      "'&&'",
	OrOr:        "'||'",
	Not:         "'!'",
}

func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Pos is a 1-based line/column position in a source file.
type Pos struct {
	Line   int
	Column int
}

// Span is the source range a node or diagnostic covers. End is exclusive.
type Span struct {
	FileIndex int
	Start     Pos
	End       Pos
}

// Span returns the range covered by the token itself.
func (t Token) Span() Span {
	return Span{
		FileIndex: t.FileIndex,
		Start:     Pos{Line: t.Line, Column: t.Column},
		End:       Pos{Line: t.Line, Column: t.Column + t.Len},
	}
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	out := a
	if b.Start.before(out.Start) {
		out.Start = b.Start
	}
	if out.End.before(b.End) {
		out.End = b.End
	}
	return out
}

func (s Span) IsValid() bool { return s.Start.Line > 0 }

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

func (p Pos) before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column < q.Column)
}
