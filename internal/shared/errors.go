package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session and credential errors
	ErrNotConnected   = fmt.Errorf("no drive session available")
	ErrSessionExpired = fmt.Errorf("session expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")

	// Library errors
	ErrMissingRemoteRef  = fmt.Errorf("missing remote object reference")
	ErrSongNotFound      = fmt.Errorf("song not found")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrReservedPlaylist  = fmt.Errorf("playlist is reserved")
	ErrIndexVersion      = fmt.Errorf("unsupported library index version")
	ErrRemoteObjectGone  = fmt.Errorf("remote object not found")
	ErrDriveRequest      = fmt.Errorf("drive request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
