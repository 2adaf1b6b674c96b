package irparse

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // x, L0
	TokenTemp   // t1
	TokenGlobal // _main
	TokenInt    // 42
	TokenString // "hello"

	// Keywords
	TokenIf     // if
	TokenGoto   // goto
	TokenCall   // call
	TokenReturn // return
	TokenTrue   // true
	TokenFalse  // false

	// Operators
	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenAndAnd // &&
	TokenOrOr   // ||
	TokenNot    // !
	TokenAssign // =
	TokenEq     // ==
	TokenNe     // !=
	TokenLt     // <
	TokenLe     // <=
	TokenGt     // >
	TokenGe     // >=

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenComma    // ,
	TokenColon    // :
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenIllegal:  "ILLEGAL",
	TokenIdent:    "IDENT",
	TokenTemp:     "TEMP",
	TokenGlobal:   "GLOBAL",
	TokenInt:      "INT",
	TokenString:   "STRING",
	TokenIf:       "if",
	TokenGoto:     "goto",
	TokenCall:     "call",
	TokenReturn:   "return",
	TokenTrue:     "true",
	TokenFalse:    "false",
	TokenPlus:     "+",
	TokenMinus:    "-",
	TokenStar:     "*",
	TokenSlash:    "/",
	TokenAndAnd:   "&&",
	TokenOrOr:     "||",
	TokenNot:      "!",
	TokenAssign:   "=",
	TokenEq:       "==",
	TokenNe:       "!=",
	TokenLt:       "<",
	TokenLe:       "<=",
	TokenGt:       ">",
	TokenGe:       ">=",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBrace:   "{",
	TokenRBrace:   "}",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenComma:    ",",
	TokenColon:    ":",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"if":     TokenIf,
	"goto":   TokenGoto,
	"call":   TokenCall,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// LookupIdent classifies an identifier-shaped word
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if ident[0] == '_' {
		return TokenGlobal
	}
	if isTempName(ident) {
		return TokenTemp
	}
	return TokenIdent
}

// isTempName reports whether s has the form t<digits>
func isTempName(s string) bool {
	if len(s) < 2 || s[0] != 't' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
