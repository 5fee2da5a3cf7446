package textanalysis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

// stubDateParser answers from a fixed table and records every input
type stubDateParser struct {
	results map[string]time.Time
	calls   []string
}

func (s *stubDateParser) ParseDate(text string, _ time.Time) (time.Time, error) {
	s.calls = append(s.calls, text)
	if t, ok := s.results[text]; ok {
		return t, nil
	}
	return time.Time{}, errors.New("unparseable")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseThaiDate_BuddhistYear(t *testing.T) {
	got := ParseThaiDate("11 มกราคม 2568")
	require.NotNil(t, got)
	assert.Equal(t, date(2025, time.January, 11), *got)
}

func TestParseThaiDate_Abbreviation(t *testing.T) {
	got := ParseThaiDate("ปิดรับสมัคร 5 ก.พ. 2569")
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.February, 5), *got)
}

func TestParseThaiDate_InvalidCalendarDate(t *testing.T) {
	assert.Nil(t, ParseThaiDate("31 เมษายน 2568"))
	assert.Nil(t, ParseThaiDate("29 กุมภาพันธ์ 2569"))
}

func TestParseThaiDate_UnknownMonth(t *testing.T) {
	assert.Nil(t, ParseThaiDate("11 January 2568"))
	assert.Nil(t, ParseThaiDate("no date here"))
}

func TestTranslateThaiMonths(t *testing.T) {
	assert.Equal(t, "ปิดรับ 11 January 2568", TranslateThaiMonths("ปิดรับ 11 มกราคม 2568"))
	assert.Equal(t, "3 Mar - 4 March", TranslateThaiMonths("3 มี.ค. - 4 มีนาคม"))
}

func TestExtractDeadline_FutureWithoutYear(t *testing.T) {
	got := ExtractDeadline(FreeformDateParser{}, "Apply before 15 Mar", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2027, time.March, 15), *got)
}

func TestExtractDeadline_FutureWithinCurrentYear(t *testing.T) {
	now := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	got := ExtractDeadline(FreeformDateParser{}, "Apply before 15 Mar", now)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.March, 15), *got)
}

func TestExtractDeadline_PatternPriority(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"20 December": date(2026, time.December, 20),
		"1/11/2026":   date(2026, time.January, 11),
	}}

	got := ExtractDeadline(parser, "register 1/11/2026 until 20 December", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.December, 20), *got)
	assert.Equal(t, []string{"20 December"}, parser.calls)
}

func TestExtractDeadline_ThaiMonthSubstituted(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"30 November": date(2026, time.November, 30),
	}}

	got := ExtractDeadline(parser, "รับสมัครถึง 30 พฤศจิกายน นี้", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.November, 30), *got)
}

func TestExtractDeadline_ForcesCurrentYear(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"2568-12-01": date(2568, time.December, 1),
	}}

	got := ExtractDeadline(parser, "deadline 2568-12-01", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.December, 1), *got)
}

func TestExtractDeadline_ForcedPastDateRollsForward(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"11 January": date(2568, time.January, 11),
	}}

	got := ExtractDeadline(parser, "11 January 2568", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2027, time.January, 11), *got)
}

func TestExtractDeadline_CurrentYearKeptEvenIfPast(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"1 May": date(2026, time.May, 1),
	}}

	got := ExtractDeadline(parser, "closed on 1 May", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.May, 1), *got)
}

func TestExtractDeadline_FallsThroughFailedPattern(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"2026/11/20": date(2026, time.November, 20),
	}}

	got := ExtractDeadline(parser, "32 Dec or 2026/11/20", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.November, 20), *got)
}

func TestExtractDeadline_ImpossibleCalendarDate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "day and short month", text: "31 Feb"},
		{name: "day month year", text: "Apply 31/02/2026 now"},
		{name: "year month day", text: "closes 2026-04-31"},
		{name: "day and long month", text: "ends 31 September"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ExtractDeadline(FreeformDateParser{}, tt.text, testNow))
		})
	}
}

func TestExtractDeadline_ClampedShapeFallsThrough(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"31 Feb":     date(2027, time.February, 28),
		"2026/11/20": date(2026, time.November, 20),
	}}

	got := ExtractDeadline(parser, "31 Feb or 2026/11/20", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.November, 20), *got)
}

func TestExtractDeadline_ClampedWholeTextRejected(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"31 Feb":           date(2027, time.February, 28),
		"deadline: 31 Feb": date(2027, time.February, 28),
	}}

	assert.Nil(t, ExtractDeadline(parser, "deadline: 31 Feb", testNow))
	assert.Equal(t, []string{"31 Feb", "deadline: 31 Feb"}, parser.calls)
}

func TestExtractDeadline_NumericDateEitherOrder(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"05/11/2026": date(2026, time.May, 11),
	}}

	got := ExtractDeadline(parser, "due 05/11/2026", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.May, 11), *got)
}

func TestExtractDeadline_WholeTextFallback(t *testing.T) {
	parser := &stubDateParser{results: map[string]time.Time{
		"next friday": time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC),
	}}

	got := ExtractDeadline(parser, "next friday", testNow)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, time.October, 16), *got)
}

func TestExtractDeadline_NoDate(t *testing.T) {
	parser := &stubDateParser{}

	assert.Nil(t, ExtractDeadline(parser, "Robotics Workshop for everyone", testNow))
	assert.Nil(t, ExtractDeadline(parser, "   ", testNow))
}

func TestExtractDeadline_LongTextSkipsWholeTextParse(t *testing.T) {
	parser := &stubDateParser{}
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}

	assert.Nil(t, ExtractDeadline(parser, long, testNow))
	assert.Empty(t, parser.calls)
}

func TestPinToCurrentYear_LeapDay(t *testing.T) {
	_, ok := pinToCurrentYear(date(2028, time.February, 29), testNow)
	assert.False(t, ok)
}
