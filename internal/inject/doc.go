// Package inject keeps the batch-apply control mounted on the host tagger
// page. The reconciler re-checks the page on every change event and mounts
// the control next to its anchor when the anchor is visible, so the control
// survives the host application's re-renders.
package inject
