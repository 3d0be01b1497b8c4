package patients

import (
	"sort"
	"strings"
	"sync"
)

// Roster is the in-memory patient state for a session, split into the active
// and deactivated partitions the rest of the system consults. Both slices
// stay alphabetically sorted by name and are only mutated through the
// methods below.
type Roster struct {
	mu       sync.RWMutex
	active   []Patient
	inactive []Patient
}

// NewRoster builds a roster from pre-partitioned patient sets.
func NewRoster(active, inactive []Patient) *Roster {
	r := &Roster{
		active:   append([]Patient(nil), active...),
		inactive: append([]Patient(nil), inactive...),
	}
	sortByName(r.active)
	sortByName(r.inactive)
	return r
}

// Reset replaces both partitions with freshly loaded sets.
func (r *Roster) Reset(active, inactive []Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = append([]Patient(nil), active...)
	r.inactive = append([]Patient(nil), inactive...)
	sortByName(r.active)
	sortByName(r.inactive)
}

// Active returns a snapshot of the active partition.
func (r *Roster) Active() []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Patient(nil), r.active...)
}

// Inactive returns a snapshot of the deactivated partition.
func (r *Roster) Inactive() []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Patient(nil), r.inactive...)
}

// All returns both partitions merged; used when resolving historical
// appointments whose patient has since been deactivated.
func (r *Roster) All() []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Patient, 0, len(r.active)+len(r.inactive))
	out = append(out, r.active...)
	out = append(out, r.inactive...)
	return out
}

// Add inserts a new active patient, keeping name order.
func (r *Roster) Add(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = append(r.active, p)
	sortByName(r.active)
}

// Replace swaps the stored patient with the authoritative row returned by
// storage, in whichever partition holds it.
func (r *Roster) Replace(p Patient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.active {
		if r.active[i].ID == p.ID {
			r.active[i] = p
			sortByName(r.active)
			return true
		}
	}
	for i := range r.inactive {
		if r.inactive[i].ID == p.ID {
			r.inactive[i] = p
			sortByName(r.inactive)
			return true
		}
	}
	return false
}

// MoveToInactive moves the patient from the active to the deactivated
// partition. Only called after storage confirms the deactivation; on storage
// failure the roster is left untouched.
func (r *Roster) MoveToInactive(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.active {
		if r.active[i].ID == id {
			p := r.active[i]
			p.IsActive = false
			r.active = append(r.active[:i], r.active[i+1:]...)
			r.inactive = append(r.inactive, p)
			sortByName(r.inactive)
			return true
		}
	}
	return false
}

// MoveToActive is the reverse of MoveToInactive.
func (r *Roster) MoveToActive(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.inactive {
		if r.inactive[i].ID == id {
			p := r.inactive[i]
			p.IsActive = true
			r.inactive = append(r.inactive[:i], r.inactive[i+1:]...)
			r.active = append(r.active, p)
			sortByName(r.active)
			return true
		}
	}
	return false
}

// ActiveCount returns the size of the active partition (quota checks).
func (r *Roster) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

func sortByName(list []Patient) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
}
