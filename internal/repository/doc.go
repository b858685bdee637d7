// Package repository holds the data access implementations for the
// directory.
//
// Services declare the repository interfaces they consume; the postgres
// subpackage implements them on a pgx pool and translates unique constraint
// violations into tagged errors the classifier understands.
package repository
