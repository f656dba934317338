// Package api serves the folio catalog, its neighbor graph and its rankings
// over HTTP.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
