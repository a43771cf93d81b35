// Package bundle packages plugin source directories for distribution. Each
// directory carrying a manifest.yml becomes a zip archive with a SHA-256
// checksum and a version derived from git history; every built archive is
// appended to a flat index.yml that the host application consumes as a
// package source.
package bundle
