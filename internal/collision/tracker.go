package collision

import (
	"strings"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/internal/hash"
)

// Tracker detects duplicate SAS names. Names are compared case-insensitively: the
// upper-cased name is hashed, and names with equal hashes are confirmed with a
// case-folded comparison so that hash collisions are never reported as duplicates.
type Tracker struct {
	names        map[uint64][]string // hash → names seen with that hash
	order        []string            // names in tracking order
	hasCollision bool                // two different names shared a hash
}

// NewTracker creates a new name tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64][]string),
		order: make([]string, 0),
	}
}

// Track records a name.
//
// Returns:
//   - error: ErrInvalidName if the name is empty, ErrDuplicateName if an equal name
//     (ignoring case) was tracked before
func (t *Tracker) Track(name string) error {
	if name == "" {
		return errs.ErrInvalidName
	}

	id := hash.NameID(name)
	for _, existing := range t.names[id] {
		if strings.EqualFold(existing, name) {
			return errs.ErrDuplicateName
		}
	}
	if len(t.names[id]) > 0 {
		t.hasCollision = true
	}

	t.names[id] = append(t.names[id], name)
	t.order = append(t.order, name)

	return nil
}

// Contains reports whether an equal name (ignoring case) was tracked.
func (t *Tracker) Contains(name string) bool {
	for _, existing := range t.names[hash.NameID(name)] {
		if strings.EqualFold(existing, name) {
			return true
		}
	}

	return false
}

// HasCollision returns true if two different names produced the same hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in tracking order.
func (t *Tracker) Names() []string {
	return t.order
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Reset clears all tracked names and collision state.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}
	t.order = t.order[:0]
	t.hasCollision = false
}
