// Package runner drives a batch pass over the host tagger page. A run scans
// the page into two queues, then drains them concurrently: create buttons are
// clicked with their modal confirms, and tag links are resolved against the
// catalog before being clicked. The controller owns an explicit idle/running
// state; stopping a run cancels both drains and clears the queues.
package runner
