package dql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// toDate coerces a value to a date the way the date function does:
// dates pass through, the relative words resolve against the evaluator's
// clock, other strings parse generically, numbers are epoch milliseconds.
func (ev *Evaluator) toDate(v Value) (time.Time, bool) {
	switch v.Kind {
	case KindDate:
		return v.Data.(time.Time), true
	case KindString:
		now := ev.now()
		switch strings.ToLower(v.Data.(string)) {
		case "now":
			return now, true
		case "today":
			return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
		case "tomorrow":
			d := now.AddDate(0, 0, 1)
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), true
		case "yesterday":
			d := now.AddDate(0, 0, -1)
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()), true
		}
		return parseDateString(v.Data.(string))
	case KindNumber:
		return time.UnixMilli(int64(v.Data.(float64))).UTC(), true
	default:
		return time.Time{}, false
	}
}

// DateFunc converts its argument to a date, null on failure.
type DateFunc struct{}

func (f *DateFunc) Name() string  { return "date" }
func (f *DateFunc) MinArity() int { return 1 }
func (f *DateFunc) MaxArity() int { return 1 }
func (f *DateFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	t, ok := ev.toDate(args[0])
	if !ok {
		return Null, nil
	}
	return DateVal(t), nil
}

// DateFormatFunc formats a date by substituting each of the tokens
// YYYY, YY, MM, DD, HH, mm, ss once.
type DateFormatFunc struct{}

func (f *DateFormatFunc) Name() string  { return "dateformat" }
func (f *DateFormatFunc) MinArity() int { return 2 }
func (f *DateFormatFunc) MaxArity() int { return 2 }
func (f *DateFormatFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	t, ok := ev.toDate(args[0])
	if !ok {
		return Null, nil
	}
	format, ok := args[1].str()
	if !ok {
		return Null, nil
	}

	out := format
	out = strings.Replace(out, "YYYY", fmt.Sprintf("%04d", t.Year()), 1)
	out = strings.Replace(out, "YY", fmt.Sprintf("%02d", t.Year()%100), 1)
	out = strings.Replace(out, "MM", fmt.Sprintf("%02d", int(t.Month())), 1)
	out = strings.Replace(out, "DD", fmt.Sprintf("%02d", t.Day()), 1)
	out = strings.Replace(out, "HH", fmt.Sprintf("%02d", t.Hour()), 1)
	out = strings.Replace(out, "mm", fmt.Sprintf("%02d", t.Minute()), 1)
	out = strings.Replace(out, "ss", fmt.Sprintf("%02d", t.Second()), 1)
	return Str(out), nil
}

var durPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(weeks?|wks?|days?|hours?|hrs?|minutes?|mins?|seconds?|secs?|w|d|h|m|s)\b`)

// durUnitSeconds maps a duration unit to seconds.
func durUnitSeconds(unit string) float64 {
	switch unit[0] {
	case 'w':
		return 7 * 24 * 3600
	case 'd':
		return 24 * 3600
	case 'h':
		return 3600
	case 'm':
		// "m", "min", "mins", "minutes"
		return 60
	case 's':
		return 1
	default:
		return 0
	}
}

// DurFunc sums every duration occurrence in a string ("1w 2d 3h") into a
// total number of seconds. Non-string input yields 0.
type DurFunc struct{}

func (f *DurFunc) Name() string  { return "dur" }
func (f *DurFunc) MinArity() int { return 1 }
func (f *DurFunc) MaxArity() int { return 1 }
func (f *DurFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		return Num(0), nil
	}

	total := 0.0
	for _, m := range durPattern.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += n * durUnitSeconds(strings.ToLower(m[2]))
	}
	return Num(total), nil
}
