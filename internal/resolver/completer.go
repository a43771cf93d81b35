package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stashbatch/internal/config"
	"stashbatch/internal/host"
	"stashbatch/internal/logging"
	"stashbatch/internal/page"
	"stashbatch/internal/stash"
)

// Directory answers existence lookups against the catalog, one finder per
// entity kind the host's create affordances name.
type Directory interface {
	FindTag(ctx context.Context, name string) (*stash.Entity, error)
	FindPerformer(ctx context.Context, name string) (*stash.Entity, error)
	FindStudio(ctx context.Context, name string) (*stash.Entity, error)
}

// Completer walks the host page for create affordances the host renders next
// to entities its catalog does not know yet, and clicks them one by one. The
// host performs the actual creation; the completer only drives its buttons.
// Entities the directory already knows are skipped so a stale page cannot
// produce duplicates.
type Completer struct {
	bridge    host.Bridge
	directory Directory
	logger    *slog.Logger

	autoCreate          bool
	requireConfirmation bool
	clickDelay          time.Duration
}

// NewCompleter builds a completer from the tagger section of cfg. A nil
// directory disables the pre-click existence check.
func NewCompleter(cfg *config.Config, bridge host.Bridge, directory Directory, logger *slog.Logger) *Completer {
	return &Completer{
		bridge:              bridge,
		directory:           directory,
		logger:              logging.WithComponent(logger, "completer"),
		autoCreate:          cfg.Tagger.AutoCreate,
		requireConfirmation: cfg.Tagger.RequireConfirmation,
		clickDelay:          time.Duration(cfg.Runner.ClickDelayMS) * time.Millisecond,
	}
}

// Run scans the current page for missing-entity buttons and clicks each with
// the configured delay. It returns the number of buttons clicked. A page with
// no such buttons is a no-op, as is a run with auto-create disabled or a
// declined confirmation.
func (c *Completer) Run(ctx context.Context) (int, error) {
	snapshot, err := c.bridge.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot page: %w", err)
	}
	doc, err := page.Parse(snapshot)
	if err != nil {
		return 0, fmt.Errorf("parse page: %w", err)
	}

	missing := page.FindMissingEntities(doc)
	if len(missing) == 0 {
		return 0, nil
	}
	if !c.autoCreate {
		c.logger.Info("auto-create disabled, leaving missing entries alone",
			logging.Int("missing", len(missing)))
		return 0, nil
	}

	missing = c.dropKnown(ctx, missing)
	if len(missing) == 0 {
		c.logger.Info("all missing entries already exist in the catalog")
		return 0, nil
	}

	if c.requireConfirmation {
		accepted, err := c.bridge.Confirm(ctx, confirmPrompt(missing))
		if err != nil {
			return 0, fmt.Errorf("confirm creation: %w", err)
		}
		if !accepted {
			c.logger.Info("creation declined")
			return 0, nil
		}
	}

	clicked := 0
	for _, entity := range missing {
		if ctx.Err() != nil {
			return clicked, ctx.Err()
		}
		if err := c.bridge.Click(ctx, entity.Ref); err != nil {
			c.logger.Warn("create click failed",
				logging.String(logging.FieldEntity, entity.Name),
				logging.Error(err))
			continue
		}
		clicked++
		c.logger.Info("created missing entry",
			logging.String(logging.FieldEntity, entity.Name))
		if err := sleepWithContext(ctx, c.clickDelay); err != nil {
			return clicked, err
		}
	}
	return clicked, nil
}

// dropKnown removes entities the catalog already has. A failed lookup keeps
// the entity in the list; the host deduplicates on its side.
func (c *Completer) dropKnown(ctx context.Context, missing []page.MissingEntity) []page.MissingEntity {
	if c.directory == nil {
		return missing
	}
	kept := make([]page.MissingEntity, 0, len(missing))
	for _, entity := range missing {
		if entity.Name == "" {
			kept = append(kept, entity)
			continue
		}
		var found *stash.Entity
		var err error
		switch entity.Kind {
		case "performer":
			found, err = c.directory.FindPerformer(ctx, entity.Name)
		case "studio":
			found, err = c.directory.FindStudio(ctx, entity.Name)
		case "tag":
			found, err = c.directory.FindTag(ctx, entity.Name)
		default:
			kept = append(kept, entity)
			continue
		}
		if err != nil {
			c.logger.Warn("catalog lookup failed",
				logging.String(logging.FieldEntity, entity.Name),
				logging.Error(err))
			kept = append(kept, entity)
			continue
		}
		if found != nil {
			c.logger.Info("catalog already has entry, skipping create",
				logging.String(logging.FieldEntity, entity.Name),
				logging.String("id", found.ID))
			continue
		}
		kept = append(kept, entity)
	}
	return kept
}

func confirmPrompt(missing []page.MissingEntity) string {
	caser := cases.Title(language.Und)
	names := make([]string, 0, len(missing))
	for _, entity := range missing {
		names = append(names, caser.String(entity.Name))
	}
	return fmt.Sprintf("Create %d missing entries: %s?", len(missing), strings.Join(names, ", "))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
