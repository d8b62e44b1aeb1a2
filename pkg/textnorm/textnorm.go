// Package textnorm turns noisy scraped article text into a canonical cleaned
// form. Clean preserves Unicode; ToASCII additionally folds the result down to
// plain ASCII for the article body field.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Invisible and formatting code points that leak from web copy. The set is
// fixed, not locale-sensitive; it covers the artifacts seen in the corpus
// (e.g. "PakisSHYtan" from an embedded U+00AD).
var invisibleRunes = []rune{
	'\u00AD', // soft hyphen
	'\u200B', // zero width space
	'\u200C', // zero width non-joiner
	'\u200D', // zero width joiner
	'\u2060', // word joiner
	'\uFEFF', // BOM / zero width no-break space
	'\u2028', // line separator
	'\u2029', // paragraph separator
	'\u034F', // combining grapheme joiner
	'\u180E', // Mongolian vowel separator
	'\u200E', // left-to-right mark
	'\u200F', // right-to-left mark
	'\u202A', '\u202B', '\u202C', '\u202D', '\u202E', // embedding/override marks
	'\u2066', '\u2067', '\u2068', '\u2069', // directional isolates
	'\u2061', '\u2062', '\u2063', '\u2064', // invisible operators
}

var invisibleSet = func() map[rune]struct{} {
	set := make(map[rune]struct{}, len(invisibleRunes))
	for _, r := range invisibleRunes {
		set[r] = struct{}{}
	}
	return set
}()

const adsSnippet = `(adsbygoogle=window.adsbygoogle||[]).push({});`

var (
	reHTMLShy      = regexp.MustCompile(`(?i)&shy;|&#173;`)
	reLiteralShy   = regexp.MustCompile(`(?i)([\p{L}\p{N}_])shy([\p{L}\p{N}_])`)
	reInnerHyphen  = regexp.MustCompile(`([\p{L}\p{N}_])[\x{00AD}\x{2010}\x{2011}]([\p{L}\p{N}_])`)
	reNewlinesTabs = regexp.MustCompile(`[\n\t]+`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Smart punctuation folded to ASCII equivalents before the NFKD pass, so
// quotes and dashes survive the fold instead of being dropped.
var smartPunct = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote / apostrophe
	'‚': "'",   // single low-9 quote
	'‛': "'",   // single high-reversed-9 quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'„': `"`,   // double low-9 quote
	'…': "...", // ellipsis
	'–': "-",   // en dash
	'—': "-",   // em dash
	'−': "-",   // minus sign
	'·': "-",   // middle dot
	'•': "-",   // bullet
	'«': `"`,   // left guillemet
	'»': `"`,   // right guillemet
	'\u00A0': " ", // NBSP
	'‐': "-",   // hyphen
	'‑': "-",   // non-breaking hyphen
}

var asciiOnly = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// stripInvisible deletes the fixed invisible set, maps NBSP to a regular
// space, and applies NFKC to fold compatibility presentation forms.
func stripInvisible(s string) string {
	s = strings.Map(func(r rune) rune {
		if _, drop := invisibleSet[r]; drop {
			return -1
		}
		if r == '\u00A0' {
			return ' '
		}
		return r
	}, s)
	return norm.NFKC.String(s)
}

// Clean is the canonical text normalization: pure, deterministic, and total
// over any input string.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	// Standardize literal escape sequences left behind by scrapers.
	s = unescapeLiterals(s)

	// HTML entity forms of the soft hyphen, then the literal "shy" token when
	// it leaked into the middle of a word. Token boundaries are left alone.
	s = reHTMLShy.ReplaceAllString(s, "")
	s = replaceUntilStable(reLiteralShy, s, "${1}${2}")

	s = stripInvisible(s)

	// Discretionary hyphens strictly between word characters; real hyphens in
	// compounds at token boundaries are kept.
	s = replaceUntilStable(reInnerHyphen, s, "${1}${2}")

	s = strings.ReplaceAll(s, adsSnippet, "")

	s = reNewlinesTabs.ReplaceAllString(s, " ")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// ToASCII folds cleaned text to an ASCII-safe representation: smart
// punctuation mapped to plain equivalents, then NFKD decomposition with all
// remaining non-ASCII runes dropped.
func ToASCII(s string) string {
	if s == "" {
		return ""
	}
	s = stripInvisible(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := smartPunct[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	folded, _, err := transform.String(asciiOnly, b.String())
	if err != nil {
		// NFKD over valid UTF-8 does not fail; guard for malformed input.
		folded = b.String()
	}
	return strings.TrimSpace(reWhitespace.ReplaceAllString(folded, " "))
}

// replaceUntilStable reapplies the replacement until a fixed point, since the
// patterns consume their boundary characters and adjacent matches overlap.
func replaceUntilStable(re *regexp.Regexp, s, repl string) string {
	for {
		out := re.ReplaceAllString(s, repl)
		if out == s {
			return out
		}
		s = out
	}
}

// unescapeLiterals decodes backslash escape sequences that appear literally
// in scraped text. Fail-soft: anything that is not a valid escape is kept
// as close to the original bytes as possible.
func unescapeLiterals(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\'', '\\', '/':
			b.WriteByte(next)
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 'u':
			if i+6 <= len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 6
					continue
				}
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
