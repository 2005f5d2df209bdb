package service

import (
	"strings"
	"sync"
	"time"

	"github.com/rickar/cal/v2"
)

// Calendars holds one business calendar per country, built on first use.
type Calendars struct {
	mu        sync.Mutex
	calendars map[string]*cal.BusinessCalendar
}

func NewCalendars() *Calendars {
	return &Calendars{calendars: make(map[string]*cal.BusinessCalendar)}
}

// Get returns the business calendar for a two-letter country code. Unknown
// countries get weekends plus New Year and Christmas.
func (c *Calendars) Get(countryCode string) *cal.BusinessCalendar {
	country := strings.ToUpper(countryCode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if bc, ok := c.calendars[country]; ok {
		return bc
	}
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(holidaysFor(country)...)
	c.calendars[country] = bc
	return bc
}

// NextWorkdays returns n workdays after from, in from's location.
func (c *Calendars) NextWorkdays(countryCode string, from time.Time, n int) []time.Time {
	bc := c.Get(countryCode)
	day := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, from.Location())
	out := make([]time.Time, 0, n)
	for len(out) < n {
		day = day.AddDate(0, 0, 1)
		if bc.IsWorkday(day) {
			out = append(out, day)
		}
	}
	return out
}

func fixed(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: month, Day: day, Func: cal.CalcDayOfMonth}
}

// weekday is the offset-th weekday of month; a negative offset counts from
// the end of the month.
func weekday(name string, month time.Month, wd time.Weekday, offset int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: month, Weekday: wd, Offset: offset, Func: cal.CalcWeekdayOffset}
}

func easter(name string, offset int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Offset: offset, Func: cal.CalcEasterOffset}
}

func holidaysFor(country string) []*cal.Holiday {
	newYear := fixed("New Year's Day", time.January, 1)
	christmas := fixed("Christmas Day", time.December, 25)

	switch country {
	case "US":
		return []*cal.Holiday{
			newYear,
			weekday("Memorial Day", time.May, time.Monday, -1),
			fixed("Independence Day", time.July, 4),
			weekday("Labor Day", time.September, time.Monday, 1),
			weekday("Thanksgiving Day", time.November, time.Thursday, 4),
			christmas,
		}
	case "DE":
		return []*cal.Holiday{
			newYear,
			easter("Karfreitag", -2),
			easter("Ostermontag", 1),
			fixed("Tag der Arbeit", time.May, 1),
			fixed("Tag der Deutschen Einheit", time.October, 3),
			christmas,
			fixed("Zweiter Weihnachtstag", time.December, 26),
		}
	case "FR":
		return []*cal.Holiday{
			newYear,
			easter("Lundi de Pâques", 1),
			fixed("Fête du Travail", time.May, 1),
			fixed("Victoire 1945", time.May, 8),
			fixed("Fête nationale", time.July, 14),
			fixed("Assomption", time.August, 15),
			fixed("Toussaint", time.November, 1),
			fixed("Armistice", time.November, 11),
			christmas,
		}
	case "GB":
		return []*cal.Holiday{
			newYear,
			easter("Good Friday", -2),
			easter("Easter Monday", 1),
			christmas,
			fixed("Boxing Day", time.December, 26),
		}
	}
	return []*cal.Holiday{newYear, christmas}
}
