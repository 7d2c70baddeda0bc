package sources

import (
	"regexp"
	"strconv"
	"time"
)

// Absolute timestamps on all four sites are Indonesian local time.
var wib = time.FixedZone("WIB", 7*60*60)

// "5 menit yang lalu", "2 jam yang lalu", ...
var relativeRe = regexp.MustCompile(`(\d+)\s+(menit|jam|hari|minggu)\s+yang\s+lalu`)

// EmitenNews only ever shows minute/hour/day phrases.
var emitenRelativeRe = regexp.MustCompile(`(\d+)\s+(menit|jam|hari)\s+yang\s+lalu`)

var relativeUnits = map[string]time.Duration{
	"menit":  time.Minute,
	"jam":    time.Hour,
	"hari":   24 * time.Hour,
	"minggu": 7 * 24 * time.Hour,
}

var indonesianMonths = map[string]time.Month{
	"Januari":   time.January,
	"Februari":  time.February,
	"Maret":     time.March,
	"April":     time.April,
	"Mei":       time.May,
	"Juni":      time.June,
	"Juli":      time.July,
	"Agustus":   time.August,
	"September": time.September,
	"Oktober":   time.October,
	"November":  time.November,
	"Desember":  time.December,
}

var englishMonths = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// parseRelative resolves an Indonesian relative time phrase against now.
// An unknown unit contributes a zero offset.
func parseRelative(re *regexp.Regexp, text string, now time.Time) (time.Time, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n, _ := strconv.Atoi(m[1])
	return now.Add(-time.Duration(n) * relativeUnits[m[2]]), true
}

// "12 Januari 2026 / 14:30" — Kontan's listing metadata format.
var kontanAbsRe = regexp.MustCompile(`(\d{1,2})\s+(\w+)\s+(\d{4})\s*/\s*(\d{1,2}):(\d{2})`)

func parseKontanDate(text string, now time.Time) time.Time {
	if text == "" {
		return now
	}
	if m := kontanAbsRe.FindStringSubmatch(text); m != nil {
		return absTime(m[1], indonesianMonths[m[2]], m[3], m[4], m[5])
	}
	return now
}

// "12 January 2026 14:30" — Bisnis search results use English month names.
var bisnisAbsRe = regexp.MustCompile(`(\d{1,2})\s+(\w+)\s+(\d{4})\s+(\d{1,2}):(\d{2})`)

func parseBisnisDate(text string, now time.Time) time.Time {
	if text == "" {
		return now
	}
	if ts, ok := parseRelative(relativeRe, text, now); ok {
		return ts
	}
	if m := bisnisAbsRe.FindStringSubmatch(text); m != nil {
		return absTime(m[1], englishMonths[m[2]], m[3], m[4], m[5])
	}
	return now
}

func parseCNBCDate(text string, now time.Time) time.Time {
	if text == "" {
		return now
	}
	if ts, ok := parseRelative(relativeRe, text, now); ok {
		return ts
	}
	return now
}

// "30/08/2026, 14:05 WIB" — checked before the relative phrase because the
// absolute form also contains digits the relative pattern could nibble on.
var emitenAbsRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4}),\s+(\d{2}):(\d{2})\s+WIB`)

func parseEmitenDate(text string, now time.Time) time.Time {
	if text == "" {
		return now
	}
	if m := emitenAbsRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[2])
		return absTime(m[1], time.Month(month), m[3], m[4], m[5])
	}
	if ts, ok := parseRelative(emitenRelativeRe, text, now); ok {
		return ts
	}
	return now
}

// absTime assembles a WIB timestamp from matched date fragments. A month
// that failed its table lookup comes through as zero and falls back to
// January, mirroring how the sites themselves render malformed dates.
func absTime(day string, month time.Month, year, hour, minute string) time.Time {
	if month == 0 {
		month = time.January
	}
	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	h, _ := strconv.Atoi(hour)
	min, _ := strconv.Atoi(minute)
	return time.Date(y, month, d, h, min, 0, 0, wib)
}
