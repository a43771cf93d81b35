package stash

import (
	"context"
	"fmt"

	"stashbatch/internal/logging"
)

const findStudiosQuery = `query FindStudios($filter: FindFilterType, $studio_filter: StudioFilterType) {
  findStudios(filter: $filter, studio_filter: $studio_filter) {
    count
    studios { id name }
  }
}`

const studioCreateMutation = `mutation StudioCreate($input: StudioCreateInput!) {
  studioCreate(input: $input) { id }
}`

// FindStudio looks a studio up by exact name. Returns nil when no studio
// matches. Studios carry no alias list in the catalog schema.
func (c *Client) FindStudio(ctx context.Context, name string) (*Entity, error) {
	var out struct {
		FindStudios struct {
			Count   int      `json:"count"`
			Studios []Entity `json:"studios"`
		} `json:"findStudios"`
	}
	variables := map[string]any{
		"filter":        allPages(),
		"studio_filter": nameFilter(name, false),
	}
	if err := c.execute(ctx, findStudiosQuery, variables, &out); err != nil {
		return nil, fmt.Errorf("find studio %q: %w", name, err)
	}
	if len(out.FindStudios.Studios) == 0 {
		return nil, nil
	}
	return &out.FindStudios.Studios[0], nil
}

// CreateStudio creates a studio and returns its identifier.
func (c *Client) CreateStudio(ctx context.Context, name string) (string, error) {
	var out struct {
		StudioCreate struct {
			ID string `json:"id"`
		} `json:"studioCreate"`
	}
	variables := map[string]any{
		"input": map[string]any{"name": name},
	}
	if err := c.execute(ctx, studioCreateMutation, variables, &out); err != nil {
		return "", fmt.Errorf("create studio %q: %w", name, err)
	}
	return out.StudioCreate.ID, nil
}

// FindOrCreateStudio looks a studio up and creates it on a miss.
// Same non-atomic caveat as FindOrCreateTag.
func (c *Client) FindOrCreateStudio(ctx context.Context, name string) (string, error) {
	existing, err := c.FindStudio(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	id, err := c.CreateStudio(ctx, name)
	if err != nil {
		return "", err
	}
	c.logger.Info("created studio", logging.String("name", name), logging.String("id", id))
	return id, nil
}
