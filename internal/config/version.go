package config

// Version is the visitd binary version.
// Set at build time via: -ldflags "-X github.com/fvnks/konecte.cl-sub001/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
