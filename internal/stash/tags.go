package stash

import (
	"context"
	"fmt"

	"stashbatch/internal/logging"
)

const findTagsQuery = `query FindTags($filter: FindFilterType, $tag_filter: TagFilterType) {
  findTags(filter: $filter, tag_filter: $tag_filter) {
    count
    tags { id name }
  }
}`

const tagCreateMutation = `mutation TagCreate($input: TagCreateInput!) {
  tagCreate(input: $input) { id }
}`

// FindTag looks a tag up by exact name or alias. Returns nil when no tag
// matches.
func (c *Client) FindTag(ctx context.Context, name string) (*Entity, error) {
	var out struct {
		FindTags struct {
			Count int      `json:"count"`
			Tags  []Entity `json:"tags"`
		} `json:"findTags"`
	}
	variables := map[string]any{
		"filter":     allPages(),
		"tag_filter": nameFilter(name, true),
	}
	if err := c.execute(ctx, findTagsQuery, variables, &out); err != nil {
		return nil, fmt.Errorf("find tag %q: %w", name, err)
	}
	if len(out.FindTags.Tags) == 0 {
		return nil, nil
	}
	return &out.FindTags.Tags[0], nil
}

// CreateTag creates a tag with the given name and returns its identifier.
func (c *Client) CreateTag(ctx context.Context, name string) (string, error) {
	var out struct {
		TagCreate struct {
			ID string `json:"id"`
		} `json:"tagCreate"`
	}
	variables := map[string]any{
		"input": map[string]any{"name": name},
	}
	if err := c.execute(ctx, tagCreateMutation, variables, &out); err != nil {
		return "", fmt.Errorf("create tag %q: %w", name, err)
	}
	return out.TagCreate.ID, nil
}

// FindOrCreateTag looks a tag up and creates it on a miss. The sequence is
// not atomic: two concurrent callers racing on the same unseen name can both
// miss the lookup and both attempt creation. Single-run gating upstream is
// what keeps this safe in practice.
func (c *Client) FindOrCreateTag(ctx context.Context, name string) (string, error) {
	existing, err := c.FindTag(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	id, err := c.CreateTag(ctx, name)
	if err != nil {
		return "", err
	}
	c.logger.Info("created tag", logging.String(logging.FieldTag, name), logging.String("id", id))
	return id, nil
}
