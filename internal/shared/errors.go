package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors. Session initialization failure is fatal to the whole
	// request: nothing downstream can proceed without a live browser handle.
	ErrSessionInit     = fmt.Errorf("browser session initialization failed")
	ErrSessionAcquire  = fmt.Errorf("browser session unavailable")
	ErrSessionReleased = fmt.Errorf("browser session already released")

	// Extraction errors
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	ErrExtractionTimeout   = fmt.Errorf("playlist page did not become ready")
	ErrParseFailure        = fmt.Errorf("failed to parse playlist page")

	// Matching errors. Rate limiting is advisory: it fails the single search
	// that observed it and sets the session signal, but the caller decides
	// whether to continue the batch.
	ErrSearchTimeout = fmt.Errorf("target platform search unresponsive")
	ErrRateLimited   = fmt.Errorf("target platform rate limited")

	// Input validation errors
	ErrInvalidRange    = fmt.Errorf("invalid batch range")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	ErrTimeout = fmt.Errorf("operation timed out")
)
