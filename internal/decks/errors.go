package decks

import "errors"

var (
	// ErrUserNotFound is returned when a user or profile does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when a username or email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned when an email and password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDeckNotFound is returned when a deck does not exist or is hidden from the viewer.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrForbidden is returned when a user modifies a deck they do not own.
	ErrForbidden = errors.New("deck belongs to another user")

	// ErrCardNotInDeck is returned when removing a card that is not on the board.
	ErrCardNotInDeck = errors.New("card not found in deck")

	// ErrCardNotFound is returned when a card cannot be resolved by ID.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidBoard is returned for a board other than main or maybeboard.
	ErrInvalidBoard = errors.New("board must be main or maybeboard")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
