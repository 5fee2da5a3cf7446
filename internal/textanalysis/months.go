package textanalysis

import (
	"strings"
	"time"
)

// thaiMonth is one row of the Thai month-name table. Full names come before
// abbreviations so that substitution never leaves a partial full name behind.
type thaiMonth struct {
	Thai    string
	English string
	Month   time.Month
}

var thaiMonths = []thaiMonth{
	{"มกราคม", "January", time.January},
	{"กุมภาพันธ์", "February", time.February},
	{"มีนาคม", "March", time.March},
	{"เมษายน", "April", time.April},
	{"พฤษภาคม", "May", time.May},
	{"มิถุนายน", "June", time.June},
	{"กรกฎาคม", "July", time.July},
	{"สิงหาคม", "August", time.August},
	{"กันยายน", "September", time.September},
	{"ตุลาคม", "October", time.October},
	{"พฤศจิกายน", "November", time.November},
	{"ธันวาคม", "December", time.December},

	{"ม.ค.", "Jan", time.January},
	{"ก.พ.", "Feb", time.February},
	{"มี.ค.", "Mar", time.March},
	{"เม.ย.", "Apr", time.April},
	{"พ.ค.", "May", time.May},
	{"มิ.ย.", "Jun", time.June},
	{"ก.ค.", "Jul", time.July},
	{"ส.ค.", "Aug", time.August},
	{"ก.ย.", "Sep", time.September},
	{"ต.ค.", "Oct", time.October},
	{"พ.ย.", "Nov", time.November},
	{"ธ.ค.", "Dec", time.December},
}

var thaiMonthNumbers = func() map[string]time.Month {
	m := make(map[string]time.Month, len(thaiMonths))
	for _, tm := range thaiMonths {
		m[tm.Thai] = tm.Month
	}
	return m
}()

var thaiMonthReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(thaiMonths)*2)
	for _, tm := range thaiMonths {
		pairs = append(pairs, tm.Thai, tm.English)
	}
	return strings.NewReplacer(pairs...)
}()

// TranslateThaiMonths rewrites Thai month names and abbreviations to English
func TranslateThaiMonths(text string) string {
	return thaiMonthReplacer.Replace(text)
}

// buddhistEraOffset is the difference between Buddhist-era and Gregorian years
const buddhistEraOffset = 543
