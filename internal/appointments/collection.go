package appointments

import "sync"

// Collection is the in-memory appointment set owned by a session. It is the
// single mutation point for session-cached appointments and always keeps its
// rows in (date, time) order.
type Collection struct {
	mu   sync.RWMutex
	rows []Appointment
}

// NewCollection builds a collection from an initial row set.
func NewCollection(rows []Appointment) *Collection {
	copied := make([]Appointment, len(rows))
	copy(copied, rows)
	SortByDateTime(copied)
	return &Collection{rows: copied}
}

// All returns a snapshot of the rows in sorted order.
func (c *Collection) All() []Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Appointment, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of cached rows.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Insert adds rows and restores sort order.
func (c *Collection) Insert(rows ...Appointment) {
	if len(rows) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, rows...)
	SortByDateTime(c.rows)
}

// Replace swaps the row with the same id for the storage layer's
// authoritative version, re-sorting in case date or time changed.
func (c *Collection) Replace(row Appointment) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].ID == row.ID {
			c.rows[i] = row
			SortByDateTime(c.rows)
			return true
		}
	}
	return false
}

// Reset replaces the cached rows with a freshly loaded set.
func (c *Collection) Reset(rows []Appointment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append([]Appointment(nil), rows...)
	SortByDateTime(c.rows)
}

// Remove deletes the row with the given id.
func (c *Collection) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.rows {
		if c.rows[i].ID == id {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			return true
		}
	}
	return false
}

// HasPatientDay reports whether the patient already has a row on the date.
func (c *Collection) HasPatientDay(patientID int64, date string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, row := range c.rows {
		if row.PatientID == patientID && row.Date == date {
			return true
		}
	}
	return false
}

// HasSlot reports whether any patient occupies the exact (date, time) slot.
func (c *Collection) HasSlot(date, t string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, row := range c.rows {
		if row.Date == date && row.Time == t {
			return true
		}
	}
	return false
}

// ByDate returns the rows for one calendar day, in time order.
func (c *Collection) ByDate(date string) []Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Appointment
	for _, row := range c.rows {
		if row.Date == date {
			out = append(out, row)
		}
	}
	return out
}
