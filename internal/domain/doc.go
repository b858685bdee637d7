// Package domain contains the core business entities and types for the
// company directory.
//
// # Key Entities
//
//   - Company: an organization listed in the directory
//   - User: an account with a Role, optionally attached to a Company
//   - Page: one page of a search result
//
// # Naming Conventions
//
// Types ending in "Input" are decoded from validated operation payloads.
// Criteria selects a single entity, Filter narrows a search.
package domain
