package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reHHMM = regexp.MustCompile(`^(\d{1,3}):(\d{2})$`)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Parse reads a schedule string.
//
// Supported forms:
//   - "every 24h", "every 90m", "every 02:30" (2h30m), "every 7d"
//   - "at Monday 09:00", "at fri 17:30"
//   - "cron 0 */6 * * *", "cron @daily"
//
// Without a kind word, input with whitespace or a leading '@' is read as
// cron and anything else as an interval.
func Parse(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, invalid(raw, "schedule required", nil)
	}

	word, rest := splitWord(s)
	switch strings.ToLower(strings.TrimSuffix(word, ":")) {
	case "every", "interval":
		return parseEvery(rest)
	case "at", "weekly":
		return parseAt(rest)
	case "cron":
		return Cron(rest)
	}

	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return Cron(s)
	}
	return parseEvery(s)
}

// MustParse is Parse for package-level literals and tests.
func MustParse(raw string) Spec {
	s, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func splitWord(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func parseEvery(v string) (Spec, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Spec{}, invalid(v, "interval required", nil)
	}
	if m := reHHMM.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Spec{}, invalid(v, "minutes must be 0-59", nil)
		}
		return Every(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return Spec{}, invalid(v, "invalid day count", err)
		}
		return Every(time.Duration(n) * 24 * time.Hour)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Spec{}, invalid(v, "use a duration like '55m' or '24h', or HH:MM", err)
	}
	return Every(d)
}

func parseAt(v string) (Spec, error) {
	fields := strings.Fields(v)
	if len(fields) != 2 {
		return Spec{}, invalid(v, "expected '<weekday> HH:MM'", nil)
	}
	wd, ok := weekdays[strings.ToLower(fields[0])]
	if !ok {
		return Spec{}, invalid(v, "unknown weekday "+strconv.Quote(fields[0]), nil)
	}
	hour, minute, err := parseClock(fields[1])
	if err != nil {
		return Spec{}, invalid(v, "invalid time of day", err)
	}
	return At(wd, hour, minute)
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
