package textanalysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	eventKeywordPattern = regexp.MustCompile(`(?i)(?:\b[A-Za-z0-9_]+\s?)+(?:Camp|Competition|Event|Festival|Conference|Meetup|Workshop|Talks|Program|Coding|ค่าย|IT)`)
	wordRunPattern      = regexp.MustCompile(`(?:\b[A-Za-z0-9_]+\s?)+`)
)

// MatchEventKeyword returns the first run of words ending in an event keyword
// ("Robotics Workshop", "Summer Coding"). A match may not begin directly after
// a numeral or a numeral followed by a space.
func MatchEventKeyword(text string) (string, bool) {
	return findAtWordStart(eventKeywordPattern, text, func(start int) bool {
		return !followsNumeral(text, start)
	})
}

// ExtractEventName returns a short topic: the keyword-anchored match when
// there is one, otherwise the first run of words. It is empty only when the
// text holds no word characters at all.
func ExtractEventName(text string) string {
	if name, ok := MatchEventKeyword(text); ok {
		return name
	}
	name, _ := findAtWordStart(wordRunPattern, text, nil)
	return name
}

// findAtWordStart returns the leftmost match of re that begins on a word
// boundary of the full text and passes accept. Word boundaries are judged on
// Unicode letters and digits, so Latin text glued to Thai script is not a
// word start.
func findAtWordStart(re *regexp.Regexp, text string, accept func(start int) bool) (string, bool) {
	offset := 0
	for offset < len(text) {
		loc := re.FindStringIndex(text[offset:])
		if loc == nil {
			return "", false
		}

		start, end := offset+loc[0], offset+loc[1]
		if startsWord(text, start) && (accept == nil || accept(start)) {
			return strings.TrimSpace(text[start:end]), true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return "", false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func startsWord(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(prev)
}

func followsNumeral(text string, i int) bool {
	prev, size := utf8.DecodeLastRuneInString(text[:i])
	if size == 0 {
		return false
	}
	if unicode.IsDigit(prev) {
		return true
	}
	if prev != ' ' {
		return false
	}
	before, size := utf8.DecodeLastRuneInString(text[:i-size])
	return size > 0 && unicode.IsDigit(before)
}
