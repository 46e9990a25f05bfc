package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// Catalog errors
	ErrCatalogFetch       = fmt.Errorf("catalog fetch failed")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Resolver errors
	ErrNoResults      = fmt.Errorf("no search results")
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrTagFailed      = fmt.Errorf("tagging failed")

	// Feed errors
	ErrFeedWrite = fmt.Errorf("feed write failed")

	// Run errors
	ErrInterrupted = fmt.Errorf("sync interrupted")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
