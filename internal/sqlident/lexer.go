package sqlident

import (
	"strings"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
	err     *ParseError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Err returns the first lexical error, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// atEOF distinguishes end of input from a literal NUL byte.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.atEOF() {
		return Token{Type: TOKEN_EOF, Pos: pos}
	}

	switch ch := l.ch; {
	case ch == '\'':
		lit, ok := l.readQuoted('\'')
		if !ok {
			l.fail(pos, "unterminated string literal")
		}
		return Token{Type: TOKEN_STRING, Literal: lit, Pos: pos}
	case ch == '"' || ch == '`':
		lit, ok := l.readQuoted(ch)
		if !ok {
			l.fail(pos, "unterminated quoted identifier")
		}
		return Token{Type: TOKEN_IDENT, Literal: lit, Pos: pos}
	case isLetter(ch) || ch == '_':
		lit := l.readIdentifier()
		return Token{Type: LookupIdent(strings.ToLower(lit)), Literal: lit, Pos: pos}
	case isDigit(ch):
		return Token{Type: TOKEN_NUMBER, Literal: l.readNumber(), Pos: pos}
	case ch == '?':
		l.readChar()
		return Token{Type: TOKEN_PARAM, Literal: "?", Pos: pos}
	case ch == '$' || ch == '@' || (ch == ':' && l.peekChar() != ':'):
		return Token{Type: TOKEN_PARAM, Literal: l.readParam(), Pos: pos}
	case ch == ':':
		l.readChar()
		l.readChar()
		return Token{Type: TOKEN_DCOLON, Literal: "::", Pos: pos}
	}

	tok := Token{Pos: pos, Literal: string(l.ch)}
	switch l.ch {
	case '*':
		tok.Type = TOKEN_STAR
	case '.':
		tok.Type = TOKEN_DOT
	case ',':
		tok.Type = TOKEN_COMMA
	case ';':
		tok.Type = TOKEN_SEMICOLON
	case '(':
		tok.Type = TOKEN_LPAREN
	case ')':
		tok.Type = TOKEN_RPAREN
	case '+', '-', '/', '%', '=', '^', '~', '&':
		tok.Type = TOKEN_OPERATOR
	case '<', '>', '!', '|':
		tok.Type = TOKEN_OPERATOR
		if next := l.peekChar(); next == '=' || next == '>' || next == '|' {
			l.readChar()
			tok.Literal += string(l.ch)
		}
	default:
		tok.Type = TOKEN_ILLEGAL
	}

	l.readChar()
	return tok
}

func (l *Lexer) fail(pos Position, msg string) {
	if l.err == nil {
		l.err = &ParseError{Pos: pos, Message: msg}
	}
}

// skipWhitespaceAndComments skips whitespace and comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		// -- line comment
		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		// /* block comment */
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}

		break
	}
}

// skipBlockComment skips a block comment.
func (l *Lexer) skipBlockComment() {
	pos := l.currentPos()
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for {
		if l.atEOF() {
			l.fail(pos, "unterminated block comment")
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return
		}
		l.readChar()
	}
}

// readQuoted reads a literal delimited by quote. A doubled quote is an
// escaped quote: 'it”s' -> it's. It reports false when input ends first.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.atEOF() {
			return result.String(), false
		}
		if l.ch == quote {
			if l.peekChar() == quote {
				result.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String(), true
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readParam reads a bind parameter: $1, :name or @name.
func (l *Lexer) readParam() string {
	start := l.pos
	l.readChar() // skip sigil
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is an ASCII letter or part of a multi-byte
// UTF-8 sequence, so non-ASCII identifiers stay whole.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= 0x80
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, ending with TOKEN_EOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens, l.Err()
}
