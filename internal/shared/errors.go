package shared

import "fmt"

// Sentinel errors. Callers wrap them with context via fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// config.toml and client_secret.json
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// OAuth flow and cached token
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Sync run aborts
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrFetchExisting      = fmt.Errorf("failed to fetch existing playlist items")
	ErrInputFile          = fmt.Errorf("cannot read input file")

	// Command-line arguments
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Run history
	ErrRunNotFound = fmt.Errorf("run not found")
)
