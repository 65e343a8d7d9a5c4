package services

import "fmt"

// StateConflictError is returned when an operation's precondition on the
// current status is not met. The current status is echoed to the caller.
type StateConflictError struct {
	Entity    string
	ID        uint
	Current   string
	Attempted string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %d is %q, cannot %s", e.Entity, e.ID, e.Current, e.Attempted)
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// CapacityError is returned when a student's credit balance cannot cover a
// requested series of bookings.
type CapacityError struct {
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient credit: %d classes available, %d requested (short by %d)",
		e.Available, e.Requested, e.Requested-e.Available)
}
