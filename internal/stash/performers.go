package stash

import (
	"context"
	"fmt"

	"stashbatch/internal/logging"
)

const findPerformersQuery = `query FindPerformers($filter: FindFilterType, $performer_filter: PerformerFilterType) {
  findPerformers(filter: $filter, performer_filter: $performer_filter) {
    count
    performers { id name }
  }
}`

const performerCreateMutation = `mutation PerformerCreate($input: PerformerCreateInput!) {
  performerCreate(input: $input) { id }
}`

// FindPerformer looks a performer up by exact name or alias. Returns nil
// when no performer matches.
func (c *Client) FindPerformer(ctx context.Context, name string) (*Entity, error) {
	var out struct {
		FindPerformers struct {
			Count      int      `json:"count"`
			Performers []Entity `json:"performers"`
		} `json:"findPerformers"`
	}
	variables := map[string]any{
		"filter":           allPages(),
		"performer_filter": nameFilter(name, true),
	}
	if err := c.execute(ctx, findPerformersQuery, variables, &out); err != nil {
		return nil, fmt.Errorf("find performer %q: %w", name, err)
	}
	if len(out.FindPerformers.Performers) == 0 {
		return nil, nil
	}
	return &out.FindPerformers.Performers[0], nil
}

// CreatePerformer creates a performer and returns its identifier.
func (c *Client) CreatePerformer(ctx context.Context, name string) (string, error) {
	var out struct {
		PerformerCreate struct {
			ID string `json:"id"`
		} `json:"performerCreate"`
	}
	variables := map[string]any{
		"input": map[string]any{"name": name},
	}
	if err := c.execute(ctx, performerCreateMutation, variables, &out); err != nil {
		return "", fmt.Errorf("create performer %q: %w", name, err)
	}
	return out.PerformerCreate.ID, nil
}

// FindOrCreatePerformer looks a performer up and creates it on a miss.
// Same non-atomic caveat as FindOrCreateTag.
func (c *Client) FindOrCreatePerformer(ctx context.Context, name string) (string, error) {
	existing, err := c.FindPerformer(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	id, err := c.CreatePerformer(ctx, name)
	if err != nil {
		return "", err
	}
	c.logger.Info("created performer", logging.String("name", name), logging.String("id", id))
	return id, nil
}
