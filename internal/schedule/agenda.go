package schedule

import (
	"sort"
	"time"

	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/patients"
)

// Slot source tags.
const (
	SourceConfirmed = "confirmed"
	SourceRecurring = "recurring"
)

// AgendaSlot is one renderable entry in a day: either a persisted
// appointment or a projected recurring occurrence with no row yet.
type AgendaSlot struct {
	Time          string              `json:"time"`
	PatientID     int64               `json:"patient_id"`
	PatientName   string              `json:"patient_name"`
	Source        string              `json:"source"`
	AppointmentID int64               `json:"appointment_id,omitempty"`
	Status        appointments.Status `json:"status,omitempty"`
}

// TimeGroup bundles slots that share an identical time string, rendered as
// simultaneously booked.
type TimeGroup struct {
	Time  string       `json:"time"`
	Slots []AgendaSlot `json:"slots"`
}

// Day is one column of the weekly agenda.
type Day struct {
	Date    string      `json:"date"`
	Weekday int         `json:"weekday"`
	Groups  []TimeGroup `json:"groups"`
}

// BuildWeek assembles seven days starting at weekStart. Confirmed slots come
// from persisted appointments and resolve their patient against allPatients,
// so a past appointment for a deactivated patient still renders. Recurring
// slots are projected for active patients that have no confirmed slot that
// day. Slots sort by (time, patient name); identical times collapse into one
// collision group.
//
// Read-only: the inputs are never mutated and nothing is written anywhere.
// Materializing discovered recurring slots is the reconciler's job.
func BuildWeek(weekStart time.Time, activePatients, allPatients []patients.Patient, appts []appointments.Appointment) [7]Day {
	byID := make(map[int64]*patients.Patient, len(allPatients))
	for i := range allPatients {
		byID[allPatients[i].ID] = &allPatients[i]
	}

	byDate := make(map[string][]appointments.Appointment, len(appts))
	for _, row := range appts {
		byDate[row.Date] = append(byDate[row.Date], row)
	}

	var week [7]Day
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		key := DateKey(day)

		var slots []AgendaSlot
		confirmed := make(map[int64]bool)
		for _, row := range byDate[key] {
			name := ""
			if p, ok := byID[row.PatientID]; ok {
				name = p.Name
			}
			slots = append(slots, AgendaSlot{
				Time:          row.Time,
				PatientID:     row.PatientID,
				PatientName:   name,
				Source:        SourceConfirmed,
				AppointmentID: row.ID,
				Status:        row.Status,
			})
			confirmed[row.PatientID] = true
		}

		for j := range activePatients {
			p := &activePatients[j]
			if confirmed[p.ID] {
				continue
			}
			slot, due := ProjectDue(p, day)
			if !due {
				continue
			}
			slots = append(slots, AgendaSlot{
				Time:        slot.Time,
				PatientID:   p.ID,
				PatientName: p.Name,
				Source:      SourceRecurring,
			})
		}

		sort.SliceStable(slots, func(a, b int) bool {
			if slots[a].Time != slots[b].Time {
				return slots[a].Time < slots[b].Time
			}
			return slots[a].PatientName < slots[b].PatientName
		})

		week[i] = Day{
			Date:    key,
			Weekday: int(day.Weekday()),
			Groups:  groupByTime(slots),
		}
	}
	return week
}

func groupByTime(slots []AgendaSlot) []TimeGroup {
	var groups []TimeGroup
	for _, s := range slots {
		if n := len(groups); n > 0 && groups[n-1].Time == s.Time {
			groups[n-1].Slots = append(groups[n-1].Slots, s)
			continue
		}
		groups = append(groups, TimeGroup{Time: s.Time, Slots: []AgendaSlot{s}})
	}
	return groups
}
