package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrHoldNotFound is returned when resuming or deleting an unknown hold id.
var ErrHoldNotFound = errors.New("suspended order not found")

// Hold is one suspended order: an immutable snapshot with its own id and
// creation time.
type Hold struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// HoldList keeps suspended orders in insertion order for stable display.
// Ids are random UUIDs rather than wall-clock timestamps so rapid repeated
// suspension cannot collide.
type HoldList struct {
	holds []Hold
}

// NewHoldList creates an empty hold list.
func NewHoldList() *HoldList {
	return &HoldList{}
}

// Suspend stores a snapshot and returns the new hold. The live cart is not
// touched; resetting it stays with the caller.
func (h *HoldList) Suspend(s Snapshot) Hold {
	hold := Hold{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Snapshot:  s,
	}
	h.holds = append(h.holds, hold)
	return hold
}

// Resume removes and returns the hold with the given id. Resume is one-shot:
// there is no peek.
func (h *HoldList) Resume(id string) (Hold, error) {
	for i, hold := range h.holds {
		if hold.ID == id {
			h.holds = append(h.holds[:i], h.holds[i+1:]...)
			return hold, nil
		}
	}
	return Hold{}, ErrHoldNotFound
}

// Delete discards a hold without resuming it.
func (h *HoldList) Delete(id string) error {
	for i, hold := range h.holds {
		if hold.ID == id {
			h.holds = append(h.holds[:i], h.holds[i+1:]...)
			return nil
		}
	}
	return ErrHoldNotFound
}

// List returns all current holds in insertion order.
func (h *HoldList) List() []Hold {
	out := make([]Hold, len(h.holds))
	copy(out, h.holds)
	return out
}
