package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// External tool errors
	ErrMissingTool = fmt.Errorf("required tool not found")
	ErrToolFailed  = fmt.Errorf("external tool failed")
	ErrAnotherRun  = fmt.Errorf("another download run is in progress")

	// Pipeline errors
	ErrInvalidURL         = fmt.Errorf("invalid playlist URL")
	ErrResolutionFailed   = fmt.Errorf("playlist resolution failed")
	ErrNoEntries          = fmt.Errorf("playlist contains no entries")
	ErrDownloadFailed     = fmt.Errorf("track download failed")
	ErrRegistrationFailed = fmt.Errorf("library registration failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
