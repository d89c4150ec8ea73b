package dashboard

// Error is an application-layer error that can be mapped to an HTTP response
// or a user-visible message.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

const (
	CodeLoadFailed         = "LOAD_FAILED"
	CodeInvalidFilterValue = "INVALID_FILTER_VALUE"
	CodeInvalidSortKey     = "INVALID_SORT_KEY"
)
