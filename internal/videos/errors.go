package videos

import "errors"

var (
	// ErrFetcherUnavailable indicates the video source is not configured.
	ErrFetcherUnavailable = errors.New("video fetcher unavailable")
	// ErrInvalidChannel indicates an empty channel identifier.
	ErrInvalidChannel = errors.New("channel id must be provided")
)
