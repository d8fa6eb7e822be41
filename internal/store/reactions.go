package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spigell/momster-match/internal/reactions"
)

func (c *Client) ListReactions(ctx context.Context, questionID string) ([]reactions.Row, error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, fmt.Errorf("question id is empty: %w", ErrNotFound)
	}

	q := url.Values{}
	q.Set("select", "reaction_type,user_id")
	q.Set("question_id", "eq."+questionID)

	rows := []reactions.Row{}
	if err := c.getJSON(ctx, reactionsTable, q, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}
