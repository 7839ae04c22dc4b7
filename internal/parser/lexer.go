package parser

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenSymbol
)

type token struct {
	typ    tokenType
	text   string // source casing preserved; quotes stripped
	line   int    // 1-based
	offset int    // byte offset into the input
	quoted bool
}

// keyword returns the uppercased text for case-insensitive matching.
func (t token) keyword() string {
	return strings.ToUpper(t.text)
}

func (t token) is(kw string) bool {
	return t.typ == tokenIdent && !t.quoted && t.keyword() == kw
}

func (t token) isSymbol(s string) bool {
	return t.typ == tokenSymbol && t.text == s
}

// lex tokenizes DDL text. Comments (-- and /* */) and whitespace are
// skipped. It never fails: anything unrecognized becomes a one-rune
// symbol token so the parser can report and recover.
func lex(input string) []token {
	var tokens []token
	line := 1
	i := 0
	n := len(input)

	for i < n {
		c := input[i]

		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '-' && i+1 < n && input[i+1] == '-':
			for i < n && input[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && input[i+1] == '*':
			i += 2
			for i < n {
				if input[i] == '\n' {
					line++
				}
				if input[i] == '*' && i+1 < n && input[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
		case c == '\'':
			start := i
			startLine := line
			i++
			var sb strings.Builder
			for i < n {
				if input[i] == '\'' {
					// '' escapes a quote inside the literal
					if i+1 < n && input[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				if input[i] == '\n' {
					line++
				}
				sb.WriteByte(input[i])
				i++
			}
			tokens = append(tokens, token{typ: tokenString, text: sb.String(), line: startLine, offset: start})
		case c == '"':
			start := i
			i++
			j := i
			for j < n && input[j] != '"' {
				j++
			}
			tokens = append(tokens, token{typ: tokenIdent, text: input[i:j], line: line, offset: start, quoted: true})
			i = j
			if i < n {
				i++ // closing quote
			}
		case isIdentStart(rune(c)):
			start := i
			for i < n && isIdentPart(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{typ: tokenIdent, text: input[start:i], line: line, offset: start})
		case c >= '0' && c <= '9':
			start := i
			for i < n && (input[i] >= '0' && input[i] <= '9') {
				i++
			}
			tokens = append(tokens, token{typ: tokenNumber, text: input[start:i], line: line, offset: start})
		default:
			tokens = append(tokens, token{typ: tokenSymbol, text: string(c), line: line, offset: i})
			i++
		}
	}

	tokens = append(tokens, token{typ: tokenEOF, line: line, offset: n})
	return tokens
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
