// Package types defines the Board aggregate, its Task and Column entities,
// the stage Pipeline, backend Config, the BlobStore interface, and the
// standard error values shared by every kanban package.
package types
