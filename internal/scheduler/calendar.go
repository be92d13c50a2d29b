package scheduler

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scmhub/calendar"
)

// DefaultMIC is the National Stock Exchange of India.
const DefaultMIC = "xnse"

// TradingCalendar reports exchange trading days.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// NewTradingCalendar loads the calendar for an ISO 10383 MIC. Unknown MICs
// fall back to a Monday to Friday week in Asia/Kolkata.
func NewTradingCalendar(mic string) *TradingCalendar {
	if mic == "" {
		mic = DefaultMIC
	}
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
	}

	log.Warn().Str("mic", mic).Msg("no exchange calendar, using Mon-Fri fallback")
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &TradingCalendar{Fallback: true, Timezone: loc}
}

// IsTradingDay reports whether the exchange trades on date.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}
	if tc.Fallback || tc.Calendar == nil {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
