package validation

import "github.com/ecoleta/ecoleta-go/internal/model"

// LeadBusinessDays is how many business days a pickup must be booked ahead.
const LeadBusinessDays = 2

// AddBusinessDays returns the date on which the n-th business day after from
// is counted. Counting starts the day after from; Saturdays and Sundays are
// skipped. Holidays are not considered.
func AddBusinessDays(from model.Date, n int) model.Date {
	d := from
	for counted := 0; counted < n; {
		d = d.AddDays(1)
		if d.IsBusinessDay() {
			counted++
		}
	}
	return d
}

// MinimumLeadDate is the earliest suggested date accepted on today.
func MinimumLeadDate(today model.Date) model.Date {
	return AddBusinessDays(today, LeadBusinessDays)
}
