package domain

import "time"

type BFSStatus string

const (
	BFSStatusInProgress         BFSStatus = "IN_PROGRESS"
	BFSStatusPersonnelSelection BFSStatus = "PERSONNEL_SELECTION"
	BFSStatusFSIApproved        BFSStatus = "FSI_APPROVED"
)

// BFS is a Before Flying Service record for one aircraft service instance.
type BFS struct {
	ID                 int64      `json:"id"`
	AircraftID         int64      `json:"aircraft_id"`
	ServiceDate        time.Time  `json:"service_date"`
	Status             BFSStatus  `json:"status"`
	FSIInitial         Signature  `json:"fsi_initial"`
	Slots              TradeSlots `json:"slots"`
	PersonnelAdded     bool       `json:"personnel_added"`
	SupervisorRequired bool       `json:"supervisor_required"`
	FSIFinal           Signature  `json:"fsi_final"`
	Before             Readings   `json:"readings_before"`
	Remarks            string     `json:"remarks,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Assignment is the personnel an FSI attaches to a BFS record. Trades absent
// from Users keep their current assignee.
type Assignment struct {
	Users              map[Trade]int64
	SupervisorRequired bool
}

func (b *BFS) Slot(t Trade) *TradeSlot {
	return &b.Slots[t]
}

// Assign applies a to the record's slots. Moving a slot to a different user
// clears the previous user's signature.
func (b *BFS) Assign(a Assignment) {
	for t, userID := range a.Users {
		if userID == 0 || t >= tradeCount {
			continue
		}
		slot := b.Slot(t)
		if slot.Assigned != userID {
			slot.Signature = Signature{}
		}
		slot.Assigned = userID
	}
	b.SupervisorRequired = a.SupervisorRequired
}

// UnsignedAssignments returns the assigned slots still waiting for a
// signature. The supervisor slot counts only when a supervisor is required.
func (b *BFS) UnsignedAssignments() []Trade {
	var pending []Trade
	for _, t := range Tradesmen {
		if s := b.Slots[t]; s.HasAssignee() && !s.Signed() {
			pending = append(pending, t)
		}
	}
	if sup := b.Slots[TradeSupervisor]; b.SupervisorRequired && !sup.Signed() {
		pending = append(pending, TradeSupervisor)
	}
	return pending
}

// Assignees lists every assigned user keyed by trade.
func (b *BFS) Assignees() map[Trade]int64 {
	out := make(map[Trade]int64)
	for i, s := range b.Slots {
		if s.HasAssignee() {
			out[Trade(i)] = s.Assigned
		}
	}
	return out
}
