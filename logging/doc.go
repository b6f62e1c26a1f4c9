// Package logging defines the Logger interface used throughout leadmesh and
// adapters for log/slog. Components accept any Logger; NoOpLogger is the
// default when none is supplied.
package logging
