package fred

import (
	"context"
	"net/url"
	"strconv"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// GetCategory fetches metadata for a single category by ID.
// Use ID 0 for the root category.
func (c *Client) GetCategory(ctx context.Context, categoryID int) (*model.Category, error) {
	params := url.Values{}
	params.Set("category_id", strconv.Itoa(categoryID))

	var raw struct {
		Categories []rawCategory `json:"categories"`
	}
	if err := c.get(ctx, "category", params, &raw); err != nil {
		return nil, wrapQuery(err, "category", strconv.Itoa(categoryID))
	}
	if len(raw.Categories) == 0 {
		return nil, fault.New(fault.NotFound, "category not found: %d", categoryID)
	}
	cat := raw.Categories[0]
	return &model.Category{ID: cat.ID, Name: cat.Name, ParentID: cat.ParentID}, nil
}

// GetCategoryChildren fetches the direct children of a category.
func (c *Client) GetCategoryChildren(ctx context.Context, categoryID int) ([]model.Category, error) {
	params := url.Values{}
	params.Set("category_id", strconv.Itoa(categoryID))

	var raw struct {
		Categories []rawCategory `json:"categories"`
	}
	if err := c.get(ctx, "category/children", params, &raw); err != nil {
		return nil, wrapQuery(err, "category children", strconv.Itoa(categoryID))
	}

	cats := make([]model.Category, len(raw.Categories))
	for i, cat := range raw.Categories {
		cats[i] = model.Category{ID: cat.ID, Name: cat.Name, ParentID: cat.ParentID}
	}
	return cats, nil
}

type rawCategory struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
}
