package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates neither an API key nor an access token was configured.
	ErrMissingCredential = errors.New("youtube credential is required (api key or access token)")
	// ErrMissingPlaylistID indicates the playlist identifier is empty.
	ErrMissingPlaylistID = errors.New("playlist ID is required")
	// ErrStoreDisabled indicates no database is configured.
	ErrStoreDisabled = errors.New("storage is not configured")
)

// UpstreamError is an error payload returned by the video API
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// TransportError covers network failures and undecodable responses
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err carries an API error payload
func IsUpstream(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}

// IsValidation reports whether err is caused by missing input
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrMissingPlaylistID)
}
