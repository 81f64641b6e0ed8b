package sentinel

var _ error = Error("")

// Error is a comparable error value. errors.Is matches it by ==, so a
// const Error still matches after being wrapped with %w.
type Error string

func (e Error) Error() string {
	return string(e)
}
