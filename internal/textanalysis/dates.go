package textanalysis

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markusmobius/go-dateparser"
)

// DateParser turns a free-form date expression into a time. Ambiguous values
// resolve relative to now.
type DateParser interface {
	ParseDate(text string, now time.Time) (time.Time, error)
}

var errNoDate = errors.New("no date found")

// FreeformDateParser parses free text with go-dateparser, preferring future
// interpretations of values without a year.
type FreeformDateParser struct{}

// ParseDate implements DateParser. Panics raised by the parser are returned
// as errors.
func (FreeformDateParser) ParseDate(text string, now time.Time) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = time.Time{}, fmt.Errorf("date parser panic: %v", r)
		}
	}()

	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Future,
	}

	dt, err := dateparser.Parse(cfg, text)
	if err != nil {
		return time.Time{}, err
	}
	if dt.Time.IsZero() {
		return time.Time{}, errNoDate
	}
	return dt.Time, nil
}

// dateShape is one deadline pattern plus a check that a parsed time still
// carries the numbers the pattern captured. The free-form parser clamps
// impossible days to the end of the month, which the check catches.
type dateShape struct {
	pattern    *regexp.Regexp
	consistent func(m []string, t time.Time) bool
}

// deadlineShapes are tried in order; the first one that yields a date wins
var deadlineShapes = []dateShape{
	{
		pattern:    regexp.MustCompile(`(?i)\b(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\b`),
		consistent: dayMatches(1),
	},
	{
		pattern:    regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\b`),
		consistent: dayMatches(1),
	},
	{
		// day and month order is left to the parser
		pattern: regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`),
		consistent: func(m []string, t time.Time) bool {
			a, b := atoi(m[1]), atoi(m[2])
			d, mo := t.Day(), int(t.Month())
			return (a == d && b == mo) || (a == mo && b == d)
		},
	},
	{
		pattern: regexp.MustCompile(`\b(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})\b`),
		consistent: func(m []string, t time.Time) bool {
			return atoi(m[3]) == t.Day() && atoi(m[2]) == int(t.Month())
		},
	},
}

type shapedMatch struct {
	shape  dateShape
	groups []string
}

func dayMatches(group int) func([]string, time.Time) bool {
	return func(m []string, t time.Time) bool {
		return atoi(m[group]) == t.Day()
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// maxFreeformRunes bounds the whole-text fallback parse
const maxFreeformRunes = 120

// ExtractDeadline finds a deadline in free text. Thai month names are
// translated first, then the shaped patterns are tried in order. A shaped
// match is pinned to the current year; if that puts it before today it moves
// to next year. A shaped match naming a day its month does not have (31 Feb)
// is no date. Without a usable shaped match the whole text is parsed as a last
// resort and returned unchanged; texts longer than maxFreeformRunes skip that
// step.
func ExtractDeadline(parser DateParser, text string, now time.Time) *time.Time {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = TranslateThaiMonths(text)

	var matched []shapedMatch
	for _, shape := range deadlineShapes {
		m := shape.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		matched = append(matched, shapedMatch{shape: shape, groups: m})

		parsed, err := parser.ParseDate(m[0], now)
		if err != nil || !shape.consistent(m, parsed) {
			continue
		}

		if d, ok := pinToCurrentYear(parsed, now); ok {
			return &d
		}
	}

	if utf8.RuneCountInString(text) > maxFreeformRunes {
		return nil
	}

	parsed, err := parser.ParseDate(text, now)
	if err != nil {
		return nil
	}

	// a clamped day from the whole-text parse is rejected the same way
	for _, sm := range matched {
		if !sm.shape.consistent(sm.groups, parsed) {
			return nil
		}
	}

	d := dateOnly(parsed)
	return &d
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// pinToCurrentYear keeps dates that already fall in the current year and
// otherwise moves them into it, rolling forward a year when the result has
// already passed. Dates that do not exist in the target year are rejected.
func pinToCurrentYear(parsed, now time.Time) (time.Time, bool) {
	d := dateOnly(parsed)
	if d.Year() == now.Year() {
		return d, true
	}

	forced := time.Date(now.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if forced.Day() != d.Day() {
		return time.Time{}, false
	}

	if forced.Before(dateOnly(now)) {
		next := time.Date(now.Year()+1, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if next.Day() == d.Day() {
			forced = next
		}
	}

	return forced, true
}

var thaiDatePattern = regexp.MustCompile(`(\d{1,2})\s+(\S+)\s+(\d{4})`)

// ParseThaiDate parses "<day> <Thai month> <Buddhist year>", e.g.
// "11 มกราคม 2568". It returns nil when the text does not hold such a triple
// or the triple is not a valid calendar date.
func ParseThaiDate(text string) *time.Time {
	m := thaiDatePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	month, ok := thaiMonthNumbers[m[2]]
	if !ok {
		return nil
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}
	year -= buddhistEraOffset

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return nil
	}
	return &d
}
