// Package validator provides input validation for the directory API.
//
// This package wraps go-playground/validator to provide:
//   - A declarative schema vocabulary for operation arguments (Schema, Rule)
//   - Collect-all validation with type coercion and default filling
//   - Human-readable error messages
//   - Struct validation for configuration
//
// # Schemas
//
// A Schema maps parameter names to rules:
//
//	validator.Schema{
//	    "payload": validator.Object(
//	        validator.Field("username", validator.String().Required()),
//	        validator.Field("password", validator.String().Required()),
//	    ),
//	}
//
// Schema.Validate reports every violated field, ignores undeclared keys, converts
// numeric and boolean strings and fills declared defaults.
//
// The validator instance is package-level and thread-safe.
package validator
