// Package journal persists run history in SQLite. Every run records its
// queue sizes, per-action outcomes and tag resolution results, so a user can
// audit what a batch pass actually did to the catalog. The store implements
// the runner's Recorder interface.
package journal
