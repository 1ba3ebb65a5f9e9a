// Package mdview keeps the location, the currently viewed record and the
// formatter fragment of a catalog browser consistent while the user moves
// between search mode and record-view mode.
//
// All state in this package is owned by a single event loop. Network work is
// handed to a Scheduler and its completions are applied back on the loop, so
// Manager, Lifecycle and Formatter need no locking.
package mdview
