// Package frontend is the lexer/parser stand-in for the external
// scanner and predictive parser that spec.md §1 and §6 describe as
// collaborators outside the compiler core. It implements exactly the
// "From the parser" contract of spec.md §6: an *ast.Node of kind Prog
// whose children are StructDecl/ImplDef/FuncDef in source order, with
// Id/Type/IntLit/FloatLit leaves carrying exact lexemes.
//
// Grounded on the teacher's compiler/tokenizer.go (TokenType enum,
// keyword map, Tokenizer.Reset/Tokenize over a bufio.Reader) and
// compiler/parser.go plus compiler/internal/expression.go's
// precedence-climbing expression builder.
package frontend

import "fmt"

type TokenType int

const (
	EOF TokenType = iota

	KwStruct
	KwInherits
	KwImpl
	KwFunc
	KwLet
	KwIf
	KwElse
	KwWhile
	KwRead
	KwWrite
	KwReturn
	KwPublic
	KwPrivate
	KwInteger
	KwFloat
	KwVoid
	KwNot

	Identifier
	IntLiteral
	FloatLiteral

	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Colon
	Semicolon
	Comma
	Dot

	Plus
	Minus
	Star
	Slash
	And
	Or

	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	Assign
)

var keywords = map[string]TokenType{
	"struct":   KwStruct,
	"inherits": KwInherits,
	"impl":     KwImpl,
	"func":     KwFunc,
	"let":      KwLet,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"read":     KwRead,
	"write":    KwWrite,
	"return":   KwReturn,
	"public":   KwPublic,
	"private":  KwPrivate,
	"integer":  KwInteger,
	"float":    KwFloat,
	"void":     KwVoid,
	"not":      KwNot,
}

var tokenNames = map[TokenType]string{
	EOF: "EOF", KwStruct: "struct", KwInherits: "inherits", KwImpl: "impl",
	KwFunc: "func", KwLet: "let", KwIf: "if", KwElse: "else", KwWhile: "while",
	KwRead: "read", KwWrite: "write", KwReturn: "return", KwPublic: "public",
	KwPrivate: "private", KwInteger: "integer", KwFloat: "float", KwVoid: "void",
	KwNot: "not", Identifier: "id", IntLiteral: "intlit", FloatLiteral: "floatlit",
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	Colon: ":", Semicolon: ";", Comma: ",", Dot: ".", Plus: "+", Minus: "-",
	Star: "*", Slash: "/", And: "&", Or: "|", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	Eq: "==", Ne: "<>", Assign: ":=",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one classified lexeme with its source line (spec.md §1:
// "the lexical scanner... delivers a stream of classified tokens with
// line numbers").
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}
