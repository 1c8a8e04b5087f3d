package storefront

import (
	"errors"

	"storefront/internal/client"
)

var ErrUnknownSection = errors.New("unknown dashboard section")

// Rejection is a failed user action carrying the text to show for it. Err
// is the cause and can be matched with errors.Is.
type Rejection struct {
	Message string
	Err     error
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error { return r.Err }

func reject(msg string, err error) error {
	return &Rejection{Message: msg, Err: err}
}

// rejectRemote prefers the backend's own message for rejections the user
// can act on, and the generic text otherwise.
func rejectRemote(err error, invalid, generic string) error {
	switch {
	case client.IsAuthExpired(err):
		return reject(client.Message(err, generic), err)
	case client.IsValidation(err):
		return reject(client.Message(err, invalid), err)
	default:
		return reject(generic, err)
	}
}

// Notice is the text to show for err.
func Notice(err error, fallback string) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Message
	}
	return client.Message(err, fallback)
}
