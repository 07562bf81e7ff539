package domain

// BFSState is the workflow position of a BFS record. The persisted status
// label IN_PROGRESS covers two states, told apart by PersonnelAdded.
type BFSState uint8

const (
	BFSStateCreated BFSState = iota
	BFSStatePersonnelSelection
	BFSStateAwaitingSignatures
	BFSStateApproved
)

func (s BFSState) String() string {
	switch s {
	case BFSStateCreated:
		return "created"
	case BFSStatePersonnelSelection:
		return "personnel_selection"
	case BFSStateAwaitingSignatures:
		return "awaiting_signatures"
	case BFSStateApproved:
		return "approved"
	default:
		return "unknown"
	}
}

// Status is the label persisted for s.
func (s BFSState) Status() BFSStatus {
	switch s {
	case BFSStatePersonnelSelection:
		return BFSStatusPersonnelSelection
	case BFSStateApproved:
		return BFSStatusFSIApproved
	default:
		return BFSStatusInProgress
	}
}

type BFSEvent uint8

const (
	EventFSIAuthenticate BFSEvent = iota
	EventAssignPersonnel
	EventSignTrade
	EventSignSupervisor
	EventApproveFSI
)

func (e BFSEvent) String() string {
	switch e {
	case EventFSIAuthenticate:
		return "fsi_initial_auth"
	case EventAssignPersonnel:
		return "assign_personnel"
	case EventSignTrade:
		return "sign_tradesman"
	case EventSignSupervisor:
		return "sign_supervisor"
	case EventApproveFSI:
		return "sign_fsi"
	default:
		return "unknown"
	}
}

var bfsTransitions = map[BFSEvent]map[BFSState]BFSState{
	EventFSIAuthenticate: {
		BFSStateCreated: BFSStatePersonnelSelection,
	},
	EventAssignPersonnel: {
		BFSStatePersonnelSelection: BFSStateAwaitingSignatures,
		BFSStateAwaitingSignatures: BFSStateAwaitingSignatures,
	},
	EventSignTrade: {
		BFSStateAwaitingSignatures: BFSStateAwaitingSignatures,
	},
	EventSignSupervisor: {
		BFSStateAwaitingSignatures: BFSStateAwaitingSignatures,
	},
	EventApproveFSI: {
		BFSStatePersonnelSelection: BFSStateApproved,
		BFSStateAwaitingSignatures: BFSStateApproved,
	},
}

var bfsRejections = map[BFSEvent]*Error{
	EventFSIAuthenticate: ErrAlreadyAuthenticated,
	EventAssignPersonnel: ErrFSINotAuthenticated,
	EventSignTrade:       ErrPersonnelNotAssigned,
	EventSignSupervisor:  ErrPersonnelNotAssigned,
	EventApproveFSI:      ErrFSINotInitialized,
}

// Next returns the state reached by applying e to s, or the precondition
// error describing why e is not allowed from s.
func (s BFSState) Next(e BFSEvent) (BFSState, error) {
	if to, ok := bfsTransitions[e][s]; ok {
		return to, nil
	}
	if s == BFSStateApproved && e != EventFSIAuthenticate {
		return s, ErrBFSClosed
	}
	if rej, ok := bfsRejections[e]; ok {
		return s, rej.With("%s not allowed in state %s", e, s)
	}
	return s, ErrInvalidInput.With("unknown BFS event %d", uint8(e))
}

// State derives the workflow state from the persisted fields.
func (b *BFS) State() BFSState {
	switch {
	case b.Status == BFSStatusFSIApproved:
		return BFSStateApproved
	case b.Status == BFSStatusPersonnelSelection:
		return BFSStatePersonnelSelection
	case b.PersonnelAdded:
		return BFSStateAwaitingSignatures
	case b.FSIInitial.Signed():
		return BFSStatePersonnelSelection
	default:
		return BFSStateCreated
	}
}

// Enter moves the record into s.
func (b *BFS) Enter(s BFSState) {
	b.Status = s.Status()
	if s == BFSStateAwaitingSignatures {
		b.PersonnelAdded = true
	}
}
