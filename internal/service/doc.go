// Package service contains the business logic layer of the directory.
//
// Every service exposes its operations as a pipeline.Service built through
// pipeline.Builder, so arguments are validated against the operation schema
// and calls are traced before the body runs. Bodies are suspendable: each
// persistence call goes through pipeline.Go and is awaited.
//
// The helpers in helper.go (EnsureExist, EnsureNotExist, FindOneAndUpdate,
// FindOneAndRemove, FindAndCountAll) are shared by the CRUD services and
// work with any Repository.
package service
