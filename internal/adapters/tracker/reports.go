package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	perr "tally/internal/platform/errors"
)

// DailyTotals fetches the flat per-day totals for a client in [since, until]
// days are YYYY-MM-DD strings
func (c *Client) DailyTotals(ctx context.Context, auth Auth, clientID, since, until string) ([]DayTotal, error) {
	q := url.Values{}
	q.Set("workspace", auth.Workspace)
	q.Set("client", clientID)
	q.Set("since", since)
	q.Set("until", until)

	var out []DayTotal
	if err := c.getJSON(ctx, auth, "/api/v1/reports/daily_totals", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectTotals fetches per-day per-project totals for a client in [since, until]
// a non-empty projects list restricts the result to those project ids
func (c *Client) ProjectTotals(
	ctx context.Context,
	auth Auth,
	clientID, since, until string,
	projects []string,
) ([]ProjectTotal, error) {
	q := url.Values{}
	q.Set("workspace", auth.Workspace)
	q.Set("client", clientID)
	q.Set("since", since)
	q.Set("until", until)
	if len(projects) > 0 {
		q.Set("projects", strings.Join(projects, ","))
	}

	var out []ProjectTotal
	if err := c.getJSON(ctx, auth, "/api/v1/reports/project_totals", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, auth Auth, path string, q url.Values, dst any) error {
	resp, err := c.do(ctx, auth, path, q)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("tracker close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return perr.ExternalSource(err, 0, "tracker read body failed")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return perr.ExternalSource(err, 0, "tracker bad response body")
	}
	return nil
}
