package session

import (
	"errors"
	"time"
)

// Occupancy and calendar limits enforced on every booking mutation.
const (
	MaxRooms           = 8
	MaxOccupants       = 20
	MaxChildrenPerRoom = 6
	MaxChildAge        = 17

	// DateLayout is the format guests type dates in.
	DateLayout = "02.01.2006"
)

var (
	ErrDateInPast     = errors.New("date is in the past")
	ErrDateOrder      = errors.New("check-out cannot precede check-in")
	ErrRoomLimit      = errors.New("room limit reached")
	ErrOccupantLimit  = errors.New("occupant limit reached")
	ErrAdultsRequired = errors.New("room needs at least one adult")
	ErrChildLimit     = errors.New("child limit for room reached")
	ErrChildAge       = errors.New("child age out of range")
	ErrLastRoom       = errors.New("cannot remove the last room")
	ErrNoSuchRoom     = errors.New("no such room")
	ErrNoSuchChild    = errors.New("no such child")
)

// Room is the occupancy of one room: at least one adult, children given
// by their ages.
type Room struct {
	Adults    int
	ChildAges []int
}

// Booking is a chat's stay criteria. Dates are nil until set. Every
// mutating method validates before touching state, so a failed mutation
// leaves the booking exactly as it was.
type Booking struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Rooms    []Room
}

// NewBooking returns the default criteria: one room with one adult.
func NewBooking() Booking {
	return Booking{Rooms: []Room{{Adults: 1}}}
}

// Occupants counts all adults and children across rooms.
func (b *Booking) Occupants() int {
	n := 0
	for _, r := range b.Rooms {
		n += r.Adults + len(r.ChildAges)
	}
	return n
}

// DatesSet reports whether both stay dates have been chosen.
func (b *Booking) DatesSet() bool {
	return b.CheckIn != nil && b.CheckOut != nil
}

// SetCheckIn sets the check-in date. The date must not be before today
// or after an already chosen check-out; a rejected write leaves both
// dates as they were.
func (b *Booking) SetCheckIn(d, today time.Time) error {
	d, today = midnight(d), midnight(today)
	if d.Before(today) {
		return ErrDateInPast
	}
	if b.CheckOut != nil && b.CheckOut.Before(d) {
		return ErrDateOrder
	}
	b.CheckIn = &d
	return nil
}

// SetCheckOut sets the check-out date, which must not be before today
// or before the check-in date. A same-day check-out is a valid one-day
// stay.
func (b *Booking) SetCheckOut(d, today time.Time) error {
	d, today = midnight(d), midnight(today)
	if d.Before(today) {
		return ErrDateInPast
	}
	if b.CheckIn != nil && d.Before(*b.CheckIn) {
		return ErrDateOrder
	}
	b.CheckOut = &d
	return nil
}

// AddRoom appends a room with one adult.
func (b *Booking) AddRoom() error {
	if len(b.Rooms) >= MaxRooms {
		return ErrRoomLimit
	}
	if b.Occupants()+1 > MaxOccupants {
		return ErrOccupantLimit
	}
	b.Rooms = append(b.Rooms, Room{Adults: 1})
	return nil
}

// RemoveRoom deletes the room at index. The last remaining room cannot
// be removed.
func (b *Booking) RemoveRoom(i int) error {
	if i < 0 || i >= len(b.Rooms) {
		return ErrNoSuchRoom
	}
	if len(b.Rooms) == 1 {
		return ErrLastRoom
	}
	b.Rooms = append(b.Rooms[:i], b.Rooms[i+1:]...)
	return nil
}

// SetAdults sets the adult count of the room at index.
func (b *Booking) SetAdults(i, adults int) error {
	if i < 0 || i >= len(b.Rooms) {
		return ErrNoSuchRoom
	}
	if adults < 1 {
		return ErrAdultsRequired
	}
	if b.Occupants()-b.Rooms[i].Adults+adults > MaxOccupants {
		return ErrOccupantLimit
	}
	b.Rooms[i].Adults = adults
	return nil
}

// AddChild adds a child of age zero to the room at index. The age is
// adjusted afterwards with SetChildAge.
func (b *Booking) AddChild(i int) error {
	if i < 0 || i >= len(b.Rooms) {
		return ErrNoSuchRoom
	}
	if len(b.Rooms[i].ChildAges) >= MaxChildrenPerRoom {
		return ErrChildLimit
	}
	if b.Occupants()+1 > MaxOccupants {
		return ErrOccupantLimit
	}
	b.Rooms[i].ChildAges = append(b.Rooms[i].ChildAges, 0)
	return nil
}

// SetChildAge sets the age of child j in room i.
func (b *Booking) SetChildAge(i, j, age int) error {
	if i < 0 || i >= len(b.Rooms) {
		return ErrNoSuchRoom
	}
	if j < 0 || j >= len(b.Rooms[i].ChildAges) {
		return ErrNoSuchChild
	}
	if age < 0 || age > MaxChildAge {
		return ErrChildAge
	}
	b.Rooms[i].ChildAges[j] = age
	return nil
}

// RemoveChild deletes child j from room i.
func (b *Booking) RemoveChild(i, j int) error {
	if i < 0 || i >= len(b.Rooms) {
		return ErrNoSuchRoom
	}
	if j < 0 || j >= len(b.Rooms[i].ChildAges) {
		return ErrNoSuchChild
	}
	ages := b.Rooms[i].ChildAges
	b.Rooms[i].ChildAges = append(ages[:j], ages[j+1:]...)
	return nil
}

// Clone returns a deep copy of the booking.
func (b *Booking) Clone() Booking {
	out := Booking{}
	if b.CheckIn != nil {
		d := *b.CheckIn
		out.CheckIn = &d
	}
	if b.CheckOut != nil {
		d := *b.CheckOut
		out.CheckOut = &d
	}
	out.Rooms = make([]Room, len(b.Rooms))
	for i, r := range b.Rooms {
		out.Rooms[i] = Room{Adults: r.Adults}
		if len(r.ChildAges) > 0 {
			out.Rooms[i].ChildAges = append([]int(nil), r.ChildAges...)
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
