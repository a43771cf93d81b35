// Package resolver turns tag names scraped from the host page into catalog
// entities. A Resolver caches find-or-create outcomes for the lifetime of one
// run so each distinct name hits the catalog at most once; the Completer
// drives the host's own create affordances for entities the catalog is
// missing.
package resolver
