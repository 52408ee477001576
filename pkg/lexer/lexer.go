// Package lexer turns shader source into tokens. Lexical errors are recorded
// as Syntax diagnostics and lexing continues with the next character.
package lexer

import (
	"strconv"
	"unicode"

	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/token"
)

var singleChar = map[rune]token.Type{
	'(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
	';': token.Semi, ',': token.Comma, '.': token.Dot,
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '^': token.Caret,
	'!': token.Not, '=': token.Eq, '<': token.Lt, '>': token.Gt,
}

// doubleChar holds operators spelled with two characters; the first rune of
// && and || is not a token on its own.
var doubleChar = map[[2]rune]token.Type{
	{'!', '='}: token.Neq,
	{'=', '='}: token.EqEq,
	{'<', '='}: token.Lte,
	{'>', '='}: token.Gte,
	{'&', '&'}: token.AndAnd,
	{'|', '|'}: token.OrOr,
}

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
	diags     *diag.List
}

// mark is the position a token starts at.
type mark struct{ pos, line, column int }

func NewLexer(source []rune, fileIndex int, cfg *config.Config, diags *diag.List) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg, diags: diags}
}

// Tokenize lexes the whole source and returns the tokens followed by EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) Next() token.Token {
	l.skipTrivia()
	m := l.mark()
	if l.isAtEnd() {
		return l.token(token.EOF, "", m)
	}

	ch := l.peek()
	switch {
	case unicode.IsLetter(ch) || ch == '_':
		return l.word(m)
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peekNext())):
		return l.number(m)
	}

	if typ, ok := doubleChar[[2]rune{ch, l.peekNext()}]; ok {
		l.advance()
		l.advance()
		return l.token(typ, "", m)
	}
	l.advance()
	if typ, ok := singleChar[ch]; ok {
		return l.token(typ, "", m)
	}
	tok := l.token(token.Illegal, string(ch), m)
	l.diags.Errorf(diag.Syntax, tok.Span(), "Unexpected character: '%c'", ch)
	return tok
}

func (l *Lexer) mark() mark { return mark{l.pos, l.line, l.column} }

func (l *Lexer) token(typ token.Type, value string, m mark) token.Token {
	return token.Token{
		Type: typ, Value: value, FileIndex: l.fileIndex,
		Line: m.line, Column: m.column, Len: l.pos - m.pos,
	}
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() {
	if l.isAtEnd() {
		return
	}
	if l.source[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) skipDigits() {
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
}

// skipTrivia skips whitespace, block comments and, when enabled, line comments.
func (l *Lexer) skipTrivia() {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.advance()
		case ch == '/' && l.peekNext() == '*':
			l.blockComment()
		case ch == '/' && l.peekNext() == '/' && l.cfg.IsFeatureEnabled(config.FeatCComments):
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) blockComment() {
	m := l.mark()
	l.advance()
	l.advance()
	opener := l.token(token.Illegal, "", m)
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.diags.Errorf(diag.Syntax, opener.Span(), "Unterminated block comment")
}

// word lexes an identifier, a keyword or a type name. Only type names keep
// their spelling in Value.
func (l *Lexer) word(m mark) token.Token {
	for ch := l.peek(); unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'; ch = l.peek() {
		l.advance()
	}
	text := string(l.source[m.pos:l.pos])
	typ, isKeyword := token.KeywordMap[text]
	switch {
	case !isKeyword:
		return l.token(token.Ident, text, m)
	case typ == token.TypeName:
		return l.token(typ, text, m)
	}
	return l.token(typ, "", m)
}

// number lexes decimal integers and floats ("1", "1.5", ".5", "2.", "1e3").
// Literals that do not fit in 32 bits are reported and replaced by 0.
func (l *Lexer) number(m mark) token.Token {
	typ := token.IntNumber
	l.skipDigits()
	if l.peek() == '.' {
		typ = token.FloatNumber
		l.advance()
		l.skipDigits()
	}
	if ch := l.peek(); ch == 'e' || ch == 'E' {
		typ = token.FloatNumber
		l.advance()
		if ch := l.peek(); ch == '+' || ch == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.peek()) {
			tok := l.token(typ, "0", m)
			l.diags.Errorf(diag.Syntax, tok.Span(), "Malformed floating-point literal: exponent has no digits")
			return tok
		}
		l.skipDigits()
	}

	text := string(l.source[m.pos:l.pos])
	tok := l.token(typ, text, m)
	var err error
	if typ == token.FloatNumber {
		_, err = strconv.ParseFloat(text, 32)
	} else {
		_, err = strconv.ParseInt(text, 10, 32)
	}
	if err != nil {
		if typ == token.FloatNumber {
			l.diags.Errorf(diag.Syntax, tok.Span(), "Invalid floating-point literal: %s", text)
		} else {
			l.diags.Errorf(diag.Syntax, tok.Span(), "Integer constant out of range: %s", text)
		}
		tok.Value = "0"
	}
	return tok
}
