// Package repository holds the in-memory collections of the conference
// (attendees, tickets, reservations, payments, exhibitions) and moves them
// to and from a Persister as named blobs. The sentinel errors below let
// higher layers tell lookup misses apart from storage failures.
package repository

import "errors"

// ErrNotFound is returned when a keyed lookup misses.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting or rekeying an attendee under
// an email that is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrNoBlob is returned by a Persister when the named collection has
// never been stored.
var ErrNoBlob = errors.New("no stored blob")

// ErrCorrupt wraps decoding failures of a stored collection.
var ErrCorrupt = errors.New("corrupt stored blob")
