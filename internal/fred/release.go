package fred

import (
	"context"
	"net/url"
	"strconv"

	"github.com/macrolab/fredmcp/internal/fault"
	"github.com/macrolab/fredmcp/internal/model"
)

// ListReleases fetches all FRED data releases.
func (c *Client) ListReleases(ctx context.Context, limit int) ([]model.Release, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", "1000")
	}

	var raw struct {
		Releases []rawRelease `json:"releases"`
	}
	if err := c.get(ctx, "releases", params, &raw); err != nil {
		return nil, wrapQuery(err, "releases list", "")
	}

	releases := make([]model.Release, len(raw.Releases))
	for i, r := range raw.Releases {
		releases[i] = r.normalize()
	}
	return releases, nil
}

// GetRelease fetches metadata for a single release.
func (c *Client) GetRelease(ctx context.Context, releaseID int) (*model.Release, error) {
	params := url.Values{}
	params.Set("release_id", strconv.Itoa(releaseID))

	var raw struct {
		Releases []rawRelease `json:"releases"`
	}
	if err := c.get(ctx, "release", params, &raw); err != nil {
		return nil, wrapQuery(err, "release", strconv.Itoa(releaseID))
	}
	if len(raw.Releases) == 0 {
		return nil, fault.New(fault.NotFound, "release not found: %d", releaseID)
	}
	r := raw.Releases[0].normalize()
	return &r, nil
}

// GetReleaseDates fetches the scheduled/actual release dates for a release.
func (c *Client) GetReleaseDates(ctx context.Context, releaseID int, limit int) ([]model.ReleaseDate, error) {
	params := url.Values{}
	params.Set("release_id", strconv.Itoa(releaseID))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", "20")
	}

	var raw struct {
		ReleaseDates []struct {
			ReleaseID   int    `json:"release_id"`
			ReleaseName string `json:"release_name"`
			Date        string `json:"date"`
		} `json:"release_dates"`
	}
	if err := c.get(ctx, "release/dates", params, &raw); err != nil {
		return nil, wrapQuery(err, "release dates", strconv.Itoa(releaseID))
	}

	dates := make([]model.ReleaseDate, len(raw.ReleaseDates))
	for i, d := range raw.ReleaseDates {
		dates[i] = model.ReleaseDate{
			ReleaseID:   d.ReleaseID,
			ReleaseName: d.ReleaseName,
			Date:        d.Date,
		}
	}
	return dates, nil
}

type rawRelease struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PressRelease bool   `json:"press_release"`
	Link         string `json:"link"`
	Notes        string `json:"notes"`
}

func (r rawRelease) normalize() model.Release {
	return model.Release{
		ID:           r.ID,
		Name:         r.Name,
		PressRelease: r.PressRelease,
		Link:         r.Link,
		Notes:        r.Notes,
	}
}
