package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Every snapshot
// timestamp is reported in this zone.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time.Time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// ParsePublishedIST parses a provider publish timestamp and converts it to IST.
// RFC 3339 is tried first, then the "Z"-less variant some feeds emit.
func ParsePublishedIST(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.In(IST), nil
}

// IsTradingHoliday checks if the given date is an NSE trading holiday.
// This list should be updated annually.
func IsTradingHoliday(t time.Time) bool {
	_, isHoliday := nseHolidays2026[t.In(IST).Format("2006-01-02")]
	return isHoliday
}

// NSE Trading Holidays for 2026 (update annually).
var nseHolidays2026 = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}

// MarketStatus returns the current NSE session label.
func MarketStatus() string {
	return MarketStatusAt(NowIST())
}

// MarketStatusAt returns the NSE session label at t. Indices and movers only
// move while the session is OPEN; outside it the cached values are the last close.
func MarketStatusAt(t time.Time) string {
	t = t.In(IST)

	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if holiday, ok := nseHolidays2026[t.Format("2006-01-02")]; ok {
		return "CLOSED (" + holiday + ")"
	}

	day := func(h, m int) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), h, m, 0, 0, IST)
	}

	switch {
	case t.Before(day(9, 0)):
		return "PRE-MARKET"
	case t.Before(day(9, 15)):
		return "PRE-OPEN SESSION"
	case !t.After(day(15, 30)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
