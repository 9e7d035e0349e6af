package fred

import (
	"context"
	"net/url"
	"strconv"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// ListSources fetches all FRED data sources.
func (c *Client) ListSources(ctx context.Context, limit int) ([]model.Source, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", "1000")
	}

	var raw struct {
		Sources []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Link  string `json:"link"`
			Notes string `json:"notes"`
		} `json:"sources"`
	}
	if err := c.get(ctx, "sources", params, &raw); err != nil {
		return nil, wrapQuery(err, "sources list", "")
	}

	sources := make([]model.Source, len(raw.Sources))
	for i, s := range raw.Sources {
		sources[i] = model.Source{ID: s.ID, Name: s.Name, Link: s.Link, Notes: s.Notes}
	}
	return sources, nil
}

// GetSource fetches metadata for a single data source.
func (c *Client) GetSource(ctx context.Context, sourceID int) (*model.Source, error) {
	params := url.Values{}
	params.Set("source_id", strconv.Itoa(sourceID))

	var raw struct {
		Sources []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Link  string `json:"link"`
			Notes string `json:"notes"`
		} `json:"sources"`
	}
	if err := c.get(ctx, "source", params, &raw); err != nil {
		return nil, wrapQuery(err, "source", strconv.Itoa(sourceID))
	}
	if len(raw.Sources) == 0 {
		return nil, fault.New(fault.NotFound, "source not found: %d", sourceID)
	}
	s := raw.Sources[0]
	return &model.Source{ID: s.ID, Name: s.Name, Link: s.Link, Notes: s.Notes}, nil
}
