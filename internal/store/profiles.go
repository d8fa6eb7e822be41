package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/profile"
)

// GetProfile loads one profile by id. A missing row is ErrNotFound.
func (c *Client) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("profile id is empty: %w", ErrNotFound)
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	q.Set("limit", "1")

	var rows []*profile.Profile
	if err := c.getJSON(ctx, profilesTable, q, &rows); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	return rows[0], nil
}

// ListCandidates returns the most recently active profiles other than
// excludeID. A non-positive limit uses the default page size.
func (c *Client) ListCandidates(ctx context.Context, excludeID string, limit int) (*profile.Profiles, error) {
	if limit <= 0 {
		limit = defaultCandidates
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "last_seen_at.desc.nullslast")
	q.Set("limit", strconv.Itoa(limit))
	if excludeID = strings.TrimSpace(excludeID); excludeID != "" {
		q.Set("id", "neq."+excludeID)
	}

	var rows []*profile.Profile
	if err := c.getJSON(ctx, profilesTable, q, &rows); err != nil {
		return nil, err
	}

	c.logger.Debug("loaded candidate profiles", zap.Int("count", len(rows)))

	return profile.New(rows), nil
}
