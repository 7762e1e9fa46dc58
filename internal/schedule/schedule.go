// Package schedule computes the next fire time of a job.
//
// Three kinds are supported: a fixed interval (Every), a weekly slot on a
// weekday at a time of day (At) and a five-field cron expression (Cron).
// Parameters are validated by the constructors so that Next never fails.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind identifies the schedule flavour.
type Kind int

const (
	KindNone Kind = iota
	KindEvery
	KindAt
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindEvery:
		return "every"
	case KindAt:
		return "at"
	case KindCron:
		return "cron"
	default:
		return "none"
	}
}

// Standard five-field parser; descriptors like @daily are allowed.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Spec is an immutable, validated schedule. The zero value is not usable.
type Spec struct {
	kind     Kind
	interval time.Duration
	weekday  time.Weekday
	hour     int
	minute   int
	expr     string
	cron     cron.Schedule
}

// Every fires at from + interval.
func Every(interval time.Duration) (Spec, error) {
	if interval <= 0 {
		return Spec{}, invalid(interval.String(), "interval must be > 0", nil)
	}
	return Spec{kind: KindEvery, interval: interval}, nil
}

// At fires weekly on weekday at hour:minute in the location of the anchor time.
func At(weekday time.Weekday, hour, minute int) (Spec, error) {
	input := fmt.Sprintf("%s %02d:%02d", weekday, hour, minute)
	if weekday < time.Sunday || weekday > time.Saturday {
		return Spec{}, invalid(input, "weekday out of range", nil)
	}
	if hour < 0 || hour > 23 {
		return Spec{}, invalid(input, "hour must be 0-23", nil)
	}
	if minute < 0 || minute > 59 {
		return Spec{}, invalid(input, "minute must be 0-59", nil)
	}
	return Spec{kind: KindAt, weekday: weekday, hour: hour, minute: minute}, nil
}

// Cron parses a standard five-field expression.
func Cron(expr string) (Spec, error) {
	expr = strings.Join(strings.Fields(expr), " ")
	if expr == "" {
		return Spec{}, invalid(expr, "cron expression required", nil)
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Spec{}, invalid(expr, "malformed cron expression", err)
	}
	// robfig gives up after five years; such a spec would never fire.
	if sched.Next(time.Now()).IsZero() {
		return Spec{}, invalid(expr, "cron expression never fires", nil)
	}
	return Spec{kind: KindCron, expr: expr, cron: sched}, nil
}

// Kind reports the schedule flavour.
func (s Spec) Kind() Kind {
	return s.kind
}

// Interval is set for KindEvery.
func (s Spec) Interval() time.Duration {
	return s.interval
}

// Weekday is set for KindAt.
func (s Spec) Weekday() time.Weekday {
	return s.weekday
}

// TimeOfDay is set for KindAt.
func (s Spec) TimeOfDay() (hour, minute int) {
	return s.hour, s.minute
}

// Expr is set for KindCron.
func (s Spec) Expr() string {
	return s.expr
}

func (s Spec) IsZero() bool {
	return s.kind == KindNone
}

// Validate reports whether s came from one of the constructors.
func (s Spec) Validate() error {
	switch s.kind {
	case KindEvery, KindAt:
		return nil
	case KindCron:
		if s.cron == nil {
			return invalid(s.expr, "cron schedule not parsed", nil)
		}
		return nil
	default:
		return invalid("", "schedule required", nil)
	}
}

// Next returns the next fire time after from. It is pure: the same from
// always yields the same result. A zero Spec returns the zero time.
func (s Spec) Next(from time.Time) time.Time {
	switch s.kind {
	case KindEvery:
		return from.Add(s.interval)
	case KindAt:
		return nextWeekly(from, s.weekday, s.hour, s.minute)
	case KindCron:
		if s.cron == nil {
			return time.Time{}
		}
		return s.cron.Next(from)
	default:
		return time.Time{}
	}
}

// nextWeekly returns the earliest slot strictly after from. A from that
// sits exactly on the slot moves to the following week.
func nextWeekly(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	loc := from.Location()
	y, m, d := from.Date()
	days := (int(weekday) - int(from.Weekday()) + 7) % 7
	next := time.Date(y, m, d+days, hour, minute, 0, 0, loc)
	if !next.After(from) {
		next = time.Date(y, m, d+days+7, hour, minute, 0, 0, loc)
	}
	return next
}

// String renders the canonical form accepted by Parse.
func (s Spec) String() string {
	switch s.kind {
	case KindEvery:
		return "every " + formatInterval(s.interval)
	case KindAt:
		return fmt.Sprintf("at %s %02d:%02d", s.weekday, s.hour, s.minute)
	case KindCron:
		return "cron " + s.expr
	default:
		return ""
	}
}

func formatInterval(d time.Duration) string {
	out := d.String()
	if strings.HasSuffix(out, "m0s") {
		out = strings.TrimSuffix(out, "0s")
	}
	if strings.HasSuffix(out, "h0m") {
		out = strings.TrimSuffix(out, "0m")
	}
	return out
}

// Preview lists the next n fire times starting from from. It returns nil
// when n is not positive.
func Preview(s Spec, from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	t := from
	for i := 0; i < n; i++ {
		t = s.Next(t)
		if t.IsZero() {
			break
		}
		out = append(out, t)
	}
	return out
}
