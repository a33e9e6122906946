package workflow

import "github.com/garyjia/courier-billing/internal/domain/entity"

// State is an invoice header lifecycle state
type State string

const (
	StateDraft     State = State(entity.InvoiceStatusDraft)
	StateSent      State = State(entity.InvoiceStatusSent)
	StatePaid      State = State(entity.InvoiceStatusPaid)
	StateCancelled State = State(entity.InvoiceStatusCancelled)
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSent:      true,
	StatePaid:      true,
	StateCancelled: true,
}

var terminalStates = map[State]bool{
	StatePaid:      true,
	StateCancelled: true,
}

// IsTerminal returns true if no further transitions leave the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// Status converts the state to the persisted header status
func (s State) Status() entity.InvoiceStatus {
	return entity.InvoiceStatus(s)
}
