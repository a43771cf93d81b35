// Package stash is a thin GraphQL client for the media catalog.
//
// It covers the handful of operations the automation consumes: a connection
// test, and find / create / find-or-create for tags, performers, and
// studios. Lookups use name and alias equality against the full result set;
// find-or-create is deliberately non-atomic, matching the catalog's own
// semantics, and relies on the caller to serialize runs.
//
// Transient failures (429 and 5xx) are retried with exponential backoff and
// every request carries an explicit timeout.
package stash
