package engine

import (
	"errors"
	"fmt"

	"github.com/stayscout/stayscout/pkg/session"
)

// validationMessage translates a booking or filter validation error into
// guest-facing text. Unknown errors get a generic line so internals
// never leak into the chat.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrDateInPast):
		return "That date is already in the past. Please pick today or later."
	case errors.Is(err, session.ErrDateOrder):
		return "Check-out can't be earlier than check-in. Please pick another date."
	case errors.Is(err, session.ErrRoomLimit):
		return fmt.Sprintf("You can book at most %d rooms.", session.MaxRooms)
	case errors.Is(err, session.ErrOccupantLimit):
		return fmt.Sprintf("A booking can hold at most %d guests in total.", session.MaxOccupants)
	case errors.Is(err, session.ErrAdultsRequired):
		return "Every room needs at least one adult."
	case errors.Is(err, session.ErrChildLimit):
		return fmt.Sprintf("A room can hold at most %d children.", session.MaxChildrenPerRoom)
	case errors.Is(err, session.ErrChildAge):
		return fmt.Sprintf("A child's age must be between 0 and %d.", session.MaxChildAge)
	case errors.Is(err, session.ErrLastRoom):
		return "The booking needs at least one room."
	case errors.Is(err, session.ErrNegativeBound):
		return "That value can't be negative."
	case errors.Is(err, session.ErrBandOrder):
		return "The minimum can't be above the maximum."
	default:
		return "That didn't work, please try again."
	}
}
