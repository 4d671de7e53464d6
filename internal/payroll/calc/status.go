package calc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusDayOff  Status = "DAY_OFF"
	StatusHoliday Status = "HOLIDAY"
	StatusLeave   Status = "LEAVE"
	StatusWFH     Status = "WFH"
	StatusHalfDay Status = "HALF_DAY"
	StatusSP      Status = "SP"
)

var Statuses = []Status{
	StatusPresent,
	StatusAbsent,
	StatusDayOff,
	StatusHoliday,
	StatusLeave,
	StatusWFH,
	StatusHalfDay,
	StatusSP,
}

// Keys are normalized with normalizeKey.
var statusAliases = map[string]Status{
	"present":      StatusPresent,
	"absent":       StatusAbsent,
	"dayoff":       StatusDayOff,
	"off":          StatusDayOff,
	"restday":      StatusDayOff,
	"holiday":      StatusHoliday,
	"leave":        StatusLeave,
	"onleave":      StatusLeave,
	"wfh":          StatusWFH,
	"workfromhome": StatusWFH,
	"halfday":      StatusHalfDay,
	"sp":           StatusSP,
}

// normalizeKey lowercases v and drops whitespace, '_' and '-', so "Day Off",
// "day_off" and "DAY-OFF" all become "dayoff".
func normalizeKey(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, v)
}

// ParseStatus is the single normalization point for attendance statuses.
func ParseStatus(v string) (Status, error) {
	if s, ok := statusAliases[normalizeKey(v)]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, v)
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

var (
	multiplierFull           = decimal.NewFromInt(1)
	multiplierHalf           = decimal.RequireFromString("0.5")
	multiplierRegularHoliday = decimal.RequireFromString("1.3")
	multiplierSpecialHoliday = decimal.NewFromInt(2)
)

// Multiplier returns the fraction of the daily rate earned for s. A status
// outside the closed set earns the full rate. HOLIDAY needs a holiday type.
func (s Status) Multiplier(holiday HolidayType) (decimal.Decimal, error) {
	switch s {
	case StatusPresent, StatusWFH, StatusSP:
		return multiplierFull, nil
	case StatusHalfDay:
		return multiplierHalf, nil
	case StatusAbsent, StatusDayOff, StatusLeave:
		return decimal.Zero, nil
	case StatusHoliday:
		switch holiday {
		case HolidayRegular:
			return multiplierRegularHoliday, nil
		case HolidaySpecial:
			return multiplierSpecialHoliday, nil
		case "":
			return decimal.Zero, ErrHolidayTypeRequired
		default:
			return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownHolidayType, string(holiday))
		}
	default:
		return multiplierFull, nil
	}
}

type HolidayType string

const (
	HolidayRegular HolidayType = "REGULAR"
	HolidaySpecial HolidayType = "SPECIAL"
)

var holidayAliases = map[string]HolidayType{
	"regular":                  HolidayRegular,
	"regularholiday":           HolidayRegular,
	"legal":                    HolidayRegular,
	"legalholiday":             HolidayRegular,
	"special":                  HolidaySpecial,
	"specialholiday":           HolidaySpecial,
	"specialnonworking":        HolidaySpecial,
	"specialnonworkingholiday": HolidaySpecial,
}

func ParseHolidayType(v string) (HolidayType, error) {
	key := normalizeKey(v)
	if key == "" {
		return "", ErrHolidayTypeRequired
	}
	if h, ok := holidayAliases[key]; ok {
		return h, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHolidayType, v)
}

func (h HolidayType) Valid() bool {
	return h == HolidayRegular || h == HolidaySpecial
}
