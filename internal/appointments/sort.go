package appointments

import "sort"

// SortByDateTime orders appointments by (date, time) ascending. Rows with a
// missing or unparseable date sort last; ties on date are broken by raw time
// string comparison. The sort is stable so equal rows keep their order.
func SortByDateTime(list []Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		return lessByDateTime(list[i], list[j])
	})
}

func lessByDateTime(a, b Appointment) bool {
	aValid := ValidDate(a.Date)
	bValid := ValidDate(b.Date)
	if aValid != bValid {
		return aValid
	}
	if !aValid {
		return false
	}
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Time < b.Time
}
