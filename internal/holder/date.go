package holder

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// Date is the `to_date` intrinsic's holder: the user format translated to
// its C strftime equivalent (spec §4.9), then to a Go reference-time
// layout via go-strftime.Layout, plus whether parse failures should be
// suppressed rather than reported through the execution context.
type Date struct {
	goLayout       string
	strftimeFormat string
	SuppressErrors bool
}

// strftimeTranslation maps the user-visible tokens (spec §4.9 example:
// "YYYY-MM-DD HH:MI:SS") to C strftime directives. "HH24" is listed before
// "HH" so the longer token is replaced whole.
var strftimeTranslation = []struct{ from, to string }{
	{"YYYY", "%Y"},
	{"MM", "%m"},
	{"DD", "%d"},
	{"HH24", "%H"},
	{"HH", "%H"},
	{"MI", "%M"},
	{"SS", "%S"},
}

// NewDate translates a user-visible date/time format to its strftime
// equivalent, then to a Go parse layout via go-strftime.Layout, and stores
// the suppress-errors flag.
func NewDate(userFormat string, suppressErrors bool) *Date {
	strf := userFormat
	for _, t := range strftimeTranslation {
		strf = replaceAll(strf, t.from, t.to)
	}
	return &Date{goLayout: strftime.Layout(strf), strftimeFormat: strf, SuppressErrors: suppressErrors}
}

func replaceAll(s, old, new string) string {
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			return s
		}
		s = s[:idx] + new + s[idx+len(old):]
	}
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// Parse parses value per the translated layout and returns
// milliseconds-since-epoch. On failure it returns ok=false; the caller is
// responsible for consulting SuppressErrors before reporting through the
// execution context (spec §4.9, §7).
func (d *Date) Parse(value string) (millis int64, ok bool) {
	t, err := time.Parse(d.goLayout, value)
	if err != nil {
		return 0, false
	}
	return t.UTC().UnixMilli(), true
}

// FormatForDebug renders millis in the holder's configured format, via
// go-strftime's C89 strftime implementation, for error messages and logs
// (spec §4.9).
func (d *Date) FormatForDebug(millis int64) string {
	t := time.UnixMilli(millis).UTC()
	return strftime.Format(d.strftimeFormat, t)
}
