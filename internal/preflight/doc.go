// Package preflight provides readiness checks for the external endpoints and
// filesystem paths that stashbatch depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve when a
//     required path or the catalog is unusable.
//   - The CLI "stashbatch status" command uses the individual check
//     functions to display endpoint health.
//
// Checks for optional endpoints are skipped when they are not configured.
package preflight
