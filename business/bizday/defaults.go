package bizday

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

const (
	defaultYearsBack  = 1
	defaultYearsAhead = 2
)

// DefaultConfig builds the calendar used when a caller has no custom policy: United
// States federal holidays with Saturday and Sunday weekends. Floating and observed
// holiday dates are expanded over a window of years around the current year, callers
// scheduling further out should use ConfigForYears directly.
func DefaultConfig() Config {
	year := time.Now().Year()
	return ConfigForYears(year-defaultYearsBack, year+defaultYearsAhead)
}

// ConfigForYears builds the default United States federal holiday calendar with the
// floating and shifted observance dates expanded for every year from firstYear
// through lastYear inclusive. A fresh Config is built on every call so callers are
// free to append their own holidays to it.
func ConfigForYears(firstYear int, lastYear int) Config {
	holidays := []Holiday{
		Recurring(time.January, 1, "New Year's Day"),
		Recurring(time.June, 19, "Juneteenth"),
		Recurring(time.July, 4, "Independence Day"),
		Recurring(time.December, 25, "Christmas Day"),
	}
	for year := firstYear; year <= lastYear; year++ {
		for _, fed := range federalHolidayDefs() {
			actual, observed := fed.def.Calc(year)
			if observed.IsZero() {
				//not observed in this year, Juneteenth begins in 2021
				continue
			}
			if fed.floating {
				holidays = append(holidays, Fixed(observed.Year(), observed.Month(), observed.Day(), fed.name))
				continue
			}
			//fixed date holidays are covered by the recurring entries above, only an
			//observance shifted off a weekend needs its own entry
			if !sameDate(observed, actual) {
				holidays = append(holidays,
					Fixed(observed.Year(), observed.Month(), observed.Day(), fed.name+" (observed)"))
			}
		}
	}
	return Config{
		Holidays: holidays,
		Weekend:  DefaultWeekend,
	}
}

type federalHolidayDef struct {
	name     string
	floating bool
	def      *cal.Holiday
}

//federalHolidayDefs lists the federal holidays the default calendar observes
func federalHolidayDefs() []federalHolidayDef {
	return []federalHolidayDef{
		{name: "New Year's Day", def: us.NewYear},
		{name: "Martin Luther King Jr. Day", floating: true, def: us.MlkDay},
		{name: "Memorial Day", floating: true, def: us.MemorialDay},
		{name: "Juneteenth", def: us.Juneteenth},
		{name: "Independence Day", def: us.IndependenceDay},
		{name: "Labor Day", floating: true, def: us.LaborDay},
		{name: "Thanksgiving Day", floating: true, def: us.ThanksgivingDay},
		{name: "Christmas Day", def: us.ChristmasDay},
	}
}
