// Package page turns host DOM snapshots into work queues.
//
// Build is a pure scan over a parsed snapshot: it finds pending
// create-entity buttons and tag link buttons, in DOM order, with the tag
// name extracted from each badge's first direct text node. FindModalConfirm
// and FindMissingEntities cover the two auxiliary discoveries the runner and
// tagger need.
//
// This package owns every selector the system knows about the host UI.
// Discovery degrades to empty results when the host markup changes; nothing
// here returns an error for an absent element.
package page
