// Package domain contains the core domain model for the events listing.
//
// This package defines:
//   - Entities: Event, Category, Feature
//   - The display card model and cover rotation used by the intake front
//   - Domain Errors: business rule violations and request errors
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Entities validate their own invariants
//
// Category names are matched exactly; feature names are matched
// case-insensitively. Both are unique at the store level, which makes
// "resolve or create by name" idempotent.
package domain
