// Package validation provides pure validation functions for API handlers.
//
// This package contains the functional core logic for validating API requests.
// All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - IsRepositoryURL: Check that a string looks like a clonable git remote
//   - FieldMessage: Render a failed validation rule as a client-facing message
//
// # Usage
//
// The API layer registers IsRepositoryURL as the "repository" rule of its
// request validator and renders failures with FieldMessage:
//
//	if !validation.IsRepositoryURL(req.Repository) {
//	    // Return 400 Bad Request with FieldMessage("repository", "repository", "")
//	}
package validation
