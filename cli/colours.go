package cli

import "github.com/jrsteele09/go-auth-client/session"

const (
	// Standard colors
	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var statusColours = map[session.Status]string{
	session.StatusInitializing:    Gray,
	session.StatusUnauthenticated: Yellow,
	session.StatusAuthenticating:  Cyan,
	session.StatusAuthenticated:   Green,
	session.StatusExpired:         Red,
}

// colourStatus renders a lifecycle status with its ANSI colour.
func colourStatus(s session.Status) string {
	if colour, ok := statusColours[s]; ok {
		return colour + s.String() + ResetColor
	}
	return s.String()
}
