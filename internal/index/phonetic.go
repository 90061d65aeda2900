package index

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// MaxPhoneticKeyLen bounds the length of a phonetic key.
const MaxPhoneticKeyLen = 8

// Grapheme substitutions applied in order. Multi-letter clusters come before
// the single letters they contain.
var phoneticRules = []struct{ from, to string }{
	{"ph", "f"},
	{"x", "ks"},
	{"ae", "e"},
	{"oe", "e"},
	{"ck", "k"},
	{"qu", "kw"},
	{"ce", "se"},
	{"ci", "si"},
	{"cy", "sy"},
	{"c", "k"},
	{"z", "s"},
	{"y", "i"},
	{"th", "t"},
	{"rrh", "r"},
	{"rh", "r"},
	{"gh", "g"},
}

// PhoneticKey reduces s to a sound-alike code: ASCII letters only, the
// substitution table applied, vowels after the first letter dropped, runs
// collapsed and the result clipped to MaxPhoneticKeyLen.
//
//	PhoneticKey("hemorrhage") == PhoneticKey("hemorrage") == "hmrg"
func PhoneticKey(s string) string {
	letters := asciiLetters(s)
	if letters == "" {
		return ""
	}
	for _, r := range phoneticRules {
		letters = strings.ReplaceAll(letters, r.from, r.to)
	}

	var b strings.Builder
	b.Grow(MaxPhoneticKeyLen)
	var last byte
	for i := 0; i < len(letters) && b.Len() < MaxPhoneticKeyLen; i++ {
		c := letters[i]
		if i > 0 && isVowel(c) {
			continue
		}
		if c == last {
			continue
		}
		b.WriteByte(c)
		last = c
	}
	return b.String()
}

// metaphoneCodes returns the Double Metaphone primary and secondary codes of
// s, skipping empty ones.
func metaphoneCodes(s string) []string {
	letters := asciiLetters(s)
	if len(letters) < 2 {
		return nil
	}
	p, sec := matchr.DoubleMetaphone(letters)
	var codes []string
	if p != "" {
		codes = append(codes, p)
	}
	if sec != "" && sec != p {
		codes = append(codes, sec)
	}
	return codes
}

func asciiLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if 'a' <= c && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
