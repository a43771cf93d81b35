package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"stashbatch/internal/config"
	"stashbatch/internal/host"
	"stashbatch/internal/logging"
	"stashbatch/internal/stash"
)

// CheckCatalog verifies the catalog GraphQL endpoint answers a system status
// query with the configured credentials.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	const name = "Catalog"
	if cfg.Catalog.URL == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := stash.NewClient(cfg, logging.NewNop())
	if err := client.TestConnection(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Catalog.URL}
}

// CheckBridge verifies the browser-side shim serves page snapshots.
func CheckBridge(ctx context.Context, cfg *config.Config) Result {
	const name = "Host bridge"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	bridge := host.NewHTTPBridge(cfg, logging.NewNop())
	if _, err := bridge.Snapshot(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Bridge.URL}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// minFreeBytes is the free space floor for the journal and log storage.
const minFreeBytes = 200 * 1024 * 1024

// CheckDiskSpace verifies the filesystem holding path has room left for
// journal and log growth.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%d MiB free)", path, free/(1024*1024))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " below minimum"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
