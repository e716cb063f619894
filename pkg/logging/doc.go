// Package logging configures the JSON slog logger shared by the configserver
// and rollout-controller binaries.
package logging
