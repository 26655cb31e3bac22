package domsnip

import "errors"

// ErrInvalidRequest is returned when the request fails validation.
var ErrInvalidRequest = errors.New("domsnip: invalid request")

// ErrNoSelection is returned when no element matches the selector.
var ErrNoSelection = errors.New("domsnip: no element matches selector")

// ErrBrowserUnavailable is returned when live extraction is requested
// but no browser can be started.
var ErrBrowserUnavailable = errors.New("domsnip: browser unavailable")

// ErrSourceTooLarge is returned when an input document exceeds the
// configured size limit.
var ErrSourceTooLarge = errors.New("domsnip: source document too large")
