package matching

import (
	"regexp"
	"unicode/utf8"

	"github.com/standardbeagle/termshield/internal/index"
)

// Words joined by an apostrophe or hyphen stay one token ("x-ray", "Crohn's").
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['\-][\p{L}\p{N}]+)*`)

// Token is a word located in the scanned text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into word tokens with byte offsets.
func Tokenize(text string) []Token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return tokens
}

func isAbbreviationToken(tok string) bool { return index.IsAbbreviation(tok) }

func runeLen(s string) int { return utf8.RuneCountInString(s) }
