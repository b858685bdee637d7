// Package errors provides application error types for the directory API.
//
// This package defines:
//   - AppError type with error classification
//   - Error constructors for common error types
//   - Error type checking helpers
//   - The uniqueness-conflict shape reported by the persistence layer
//   - A one-time capture marker so a failure is logged in full only once
//
// # Error Types
//
//   - Validation: Input does not match an operation schema (400)
//   - BadRequest: Malformed or inconsistent request (400)
//   - Unauthorized: Authentication failed or missing (401)
//   - Forbidden: Insufficient role (403)
//   - NotFound: Resource does not exist (404)
//   - Conflict: Resource already exists (409)
//   - Internal: Unexpected server error (500)
//
// # Usage
//
// Create errors using constructor functions:
//
//	return apperrors.NotFound("user")
//	return apperrors.Conflict("User already existed with username=bob")
//
// Check error types:
//
//	if apperrors.IsNotFound(err) {
//	    // Handle not found
//	}
//
// # Error Wrapping
//
// Errors support wrapping with fmt.Errorf:
//
//	return fmt.Errorf("operation failed: %w", apperrors.NotFound("company"))
package errors
