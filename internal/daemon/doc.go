// Package daemon coordinates the long-running stashbatch process.
//
// It wires configuration, the run journal, the host bridge, the injector
// reconciler and the batch runner into a single lifecycle with flock-based
// locking to prevent multiple instances. Control clicks delivered by the host
// toggle batch runs; page change events keep the injected control mounted.
//
// Keep orchestration logic here: the runner, injector and journal own their
// own behavior while the daemon focuses on startup, shutdown and dispatch.
package daemon
