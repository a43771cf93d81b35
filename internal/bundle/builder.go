package bundle

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stashbatch/internal/config"
	"stashbatch/internal/logging"
)

const indexName = "index.yml"

// Archives carry a fixed timestamp so rebuilding an unchanged tree produces
// a byte-identical zip.
var zipEpoch = time.Unix(0, 0).UTC()

type commandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execCommandRunner struct{}

func (execCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Builder packages the configured source directories into the output
// directory and maintains its index file.
type Builder struct {
	sources []string
	outDir  string
	baseURL string
	git     string
	runner  commandRunner
	logger  *slog.Logger
}

// NewBuilder constructs a builder from the bundle section of cfg.
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{
		sources: cfg.Bundle.SourceDirs,
		outDir:  cfg.Bundle.OutputDir,
		baseURL: strings.TrimRight(cfg.Bundle.BaseURL, "/"),
		git:     cfg.GitBinary(),
		runner:  execCommandRunner{},
		logger:  logging.WithComponent(logger, "bundle"),
	}
}

// Build packages every source directory that carries a manifest and writes
// the resulting index. Directories without a manifest are skipped. The
// returned entries mirror the written index file.
func (b *Builder) Build(ctx context.Context) ([]Entry, error) {
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var entries []Entry
	for _, dir := range b.sources {
		manifest, err := loadManifest(dir)
		if err != nil {
			if os.IsNotExist(err) {
				b.logger.Debug("no manifest, skipping", logging.String("dir", dir))
				continue
			}
			return nil, fmt.Errorf("%s: %w", dir, err)
		}

		archiveName := manifest.ID + ".zip"
		archivePath := filepath.Join(b.outDir, archiveName)
		if err := writeArchive(dir, archivePath); err != nil {
			return nil, fmt.Errorf("package %s: %w", dir, err)
		}
		checksum, err := fileSHA256(archivePath)
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", archivePath, err)
		}

		version, date := b.deriveVersion(ctx, dir)
		entry := Entry{
			ID:       manifest.ID,
			Name:     manifest.Name,
			Metadata: Metadata{Description: manifest.Description},
			Version:  version,
			Date:     date,
			Path:     b.entryPath(archiveName),
			SHA256:   checksum,
			Requires: manifest.Requires,
		}
		entries = append(entries, entry)
		b.logger.Info("packaged bundle",
			logging.String("id", manifest.ID),
			logging.String("version", version))
	}

	if err := b.writeIndex(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// IndexPath returns the location of the index file.
func (b *Builder) IndexPath() string {
	return filepath.Join(b.outDir, indexName)
}

func (b *Builder) entryPath(archiveName string) string {
	if b.baseURL == "" {
		return archiveName
	}
	return b.baseURL + "/" + archiveName
}

// deriveVersion takes the short hash and commit date of the last commit that
// touched dir. The lookup is pinned to dir with -C so it finds the
// repository containing the plugin sources no matter where the process runs
// from. Outside any git repository it falls back to a dev version stamped
// with today's date.
func (b *Builder) deriveVersion(ctx context.Context, dir string) (string, string) {
	out, err := b.runner.Output(ctx, b.git, "-C", dir, "log", "-n", "1", "--pretty=%h %cs", "--", ".")
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if err != nil || len(fields) != 2 {
		if err != nil {
			b.logger.Warn("git version lookup failed", logging.String("dir", dir), logging.Error(err))
		}
		return "dev", time.Now().UTC().Format("2006-01-02")
	}
	return fields[0], fields[1]
}

func (b *Builder) writeIndex(entries []Entry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(b.IndexPath(), data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// writeArchive zips the directory contents with relative paths, stable
// ordering and a fixed timestamp.
func writeArchive(dir, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:     filepath.ToSlash(rel),
			Method:   zip.Deflate,
			Modified: zipEpoch,
		}
		header.SetMode(0o644)
		dst, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return out.Close()
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
