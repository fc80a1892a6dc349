// Package repo contains the implementations of the event repository port.
//
// PostgresRepository is the production adapter built on pgx. MemoryRepository
// keeps everything in process and backs local runs (APP_STORE=memory) and
// tests. Both implement ports.EventRepository with the same semantics:
// category names are unique and matched exactly, feature names are unique
// and matched ignoring case, and a unit of work is all-or-nothing.
package repo
