package errs

// Error categories shared by every layer. Concrete errors are marked with one
// of these so transports can classify them without knowing each sentinel.
var (
	ErrNotFound          = New("not found")
	ErrInvalidState      = New("invalid state")
	ErrInsufficientStock = New("insufficient stock")
	ErrValidation        = New("validation failed")
	ErrConflict          = New("conflict")
)

// Category returns a new sentinel carrying the given category mark.
func Category(msg string, category error) error {
	return Mark(New(msg), category)
}
