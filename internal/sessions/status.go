package sessions

// State is the lifecycle position of a vehicle, derived from its session
type State string

const (
	StateNone           State = "NONE"
	StateActiveUnparked State = "ACTIVE_UNPARKED"
	StateActiveParked   State = "ACTIVE_PARKED"
	StateClosed         State = "CLOSED"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsActive reports whether the vehicle is still inside the garage
func (s State) IsActive() bool {
	return s == StateActiveUnparked || s == StateActiveParked
}
