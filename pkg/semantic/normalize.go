package semantic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokens splits an identifier into folded tokens.
//
//	"lastName"     -> [last name]
//	"LAST_NAME"    -> [last name]
//	"XMLParser"    -> [xml parser]
//	"e-mail addr"  -> [e mail addr]
func Tokens(s string) []string {
	s = norm.NFKC.String(s)
	raw := tokenizeCamelCase(s)

	fold := cases.Fold()
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = fold.String(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Key returns the normalized lookup key of an identifier: its folded tokens
// joined without separators. "last_name", "lastName" and "Last Name" share
// the key "lastname".
func Key(s string) string {
	return strings.Join(Tokens(s), "")
}

// singular strips a naive English plural suffix. It returns s unchanged
// when no rule applies.
func singular(s string) string {
	switch {
	case len(s) > 3 && strings.HasSuffix(s, "ies"):
		return s[:len(s)-3] + "y"
	case len(s) > 1 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	}
	return s
}

// tokenizeCamelCase splits a CamelCase, snake_case or kebab-case string.
//   - "OrderID"      -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser"    -> ["XML", "Parser"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator reports whether r splits tokens. Anything that is neither a
// letter nor a digit separates.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token starts at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// lower -> Upper: "orderID" splits before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prev) {
		return true
	}

	// end of acronym: "XMLParser" splits before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	return isUpper && isPrevUpper && hasNextLower
}
