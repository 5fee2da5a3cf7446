package textanalysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	thaiNikhahit = '\u0E4D'
	thaiSaraAa   = '\u0E32'
	thaiSaraAm   = '\u0E33'
)

var invisibleRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1},
		{Lo: 0x200B, Hi: 0x200D, Stride: 1},
		{Lo: 0x2060, Hi: 0x2060, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
	LatinOffset: 1,
}

// Normalize makes Thai text canonical before pattern matching: NFC
// composition, invisible characters dropped, decomposed SARA AM recomposed,
// repeated combining marks collapsed and whitespace runs squeezed.
func Normalize(text string) string {
	t := transform.Chain(norm.NFC, runes.Remove(runes.In(invisibleRunes)))
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}

	out = composeSaraAm(out)
	out = collapseRepeatedMarks(out)

	return strings.Join(strings.Fields(out), " ")
}

func isThaiCombining(r rune) bool {
	switch {
	case r == '\u0E31':
		return true
	case r >= '\u0E34' && r <= '\u0E3A':
		return true
	case r >= '\u0E47' && r <= '\u0E4E':
		return true
	}
	return false
}

func isThaiTone(r rune) bool {
	return r >= '\u0E48' && r <= '\u0E4B'
}

// composeSaraAm turns NIKHAHIT + SARA AA (optionally with a tone mark typed
// in between) into SARA AM, keeping the tone mark on the consonant.
func composeSaraAm(s string) string {
	if !strings.ContainsRune(s, thaiNikhahit) {
		return s
	}

	in := []rune(s)
	out := make([]rune, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i] == thaiNikhahit {
			if i+1 < len(in) && in[i+1] == thaiSaraAa {
				out = append(out, thaiSaraAm)
				i++
				continue
			}
			if i+2 < len(in) && isThaiTone(in[i+1]) && in[i+2] == thaiSaraAa {
				out = append(out, in[i+1], thaiSaraAm)
				i += 2
				continue
			}
		}
		out = append(out, in[i])
	}
	return string(out)
}

func collapseRepeatedMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune = -1
	for _, r := range s {
		if r == prev && isThaiCombining(r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
