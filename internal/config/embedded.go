package config

// Version is the application version, overridden at release build time via
// ldflags.
var Version = "0.1.0-dev"

// Embedded API key injected at build time via ldflags. Serves as a default
// and can be overridden by environment variables or config file.
//
// Build with:
//   go build -ldflags "-X 'github.com/recomarr/recomarr/internal/config.EmbeddedTMDBKey=xxx'"
var EmbeddedTMDBKey string
