// Package domain holds the core types of the relay (sessions, roster
// entries, chat messages, login records) and the boundary interfaces for
// external collaborators (login persistence, file storage).
package domain
