// Package host defines the boundary to the live media-catalog page.
//
// The Bridge interface covers everything the automation needs from the
// browser side: DOM snapshots, element clicks, progress reporting,
// confirmation prompts, control mounting, and page change events. The HTTP
// implementation speaks JSON to a small browser-side shim; tests substitute
// in-memory fakes.
//
// The host DOM stays opaque behind this package. Selector knowledge lives in
// internal/page, and nothing outside that pair should assume page structure.
package host
