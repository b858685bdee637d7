// Package handler exposes the service pipelines over HTTP.
//
// Controllers are suspendable functions registered under operation names
// such as "company.create". Bind adapts them to fiber handlers and
// RegisterRoutes mounts those handlers with the authentication and role
// checks each route needs.
//
// # Routes
//
//   - POST /login issues a token
//   - /companies reads are public, writes need an admin or manager
//   - /users needs a token, writes need an admin
//
// Failures reach ErrorHandler, which classifies them into the
// {message, fields} envelope and reports server errors to Sentry.
package handler
