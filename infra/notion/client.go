package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotaops/rota/core/mirror"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/logger"
)

const (
	defaultBaseURL = "https://api.notion.com"
	notionVersion  = "2022-06-28"
)

// ScheduleReader is the subset of the store the syncer reads.
type ScheduleReader interface {
	Effective(ctx context.Context, start, end time.Time) ([]model.Assignment, error)
}

// Client implements the mirror Syncer against the Notion pages API. One
// database row per (date, rotation) slot; rows are created or patched in
// place, never deleted.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	databaseID string
	reader     ScheduleReader
	log        logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewClient builds a syncer for the configured database.
func NewClient(cfg Config, reader ScheduleReader) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		reader:     reader,
		log:        logger.New("notion"),
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// slotPage is the mirror's view of one database row.
type slotPage struct {
	ID       string
	Engineer string
}

// SyncRange pushes the effective schedule for [start, end] to the mirror.
// Unchanged rows are skipped so repeated syncs of a stable window are
// write-free.
func (c *Client) SyncRange(ctx context.Context, start, end time.Time) (mirror.SyncResult, error) {
	start, end = model.Day(start), model.Day(end)
	rows, err := c.reader.Effective(ctx, start, end)
	if err != nil {
		return mirror.SyncResult{}, fmt.Errorf("read effective schedule: %w", err)
	}

	existing, err := c.queryPages(ctx, start, end)
	if err != nil {
		return mirror.SyncResult{}, err
	}

	var res mirror.SyncResult
	dates := make(map[string]struct{})
	for _, row := range rows {
		dates[row.Date.Format(model.DateFormat)] = struct{}{}
		key := row.Key()
		page, ok := existing[key]
		switch {
		case !ok:
			if err := c.createPage(ctx, row); err != nil {
				return res, err
			}
			res.Created++
		case page.Engineer != row.EngineerKey():
			if err := c.updatePage(ctx, page.ID, row); err != nil {
				return res, err
			}
			res.Updated++
		default:
			res.Skipped++
		}
	}
	res.Dates = len(dates)
	c.log.Infof("mirror sync %s..%s: created=%d updated=%d skipped=%d",
		start.Format(model.DateFormat), end.Format(model.DateFormat),
		res.Created, res.Updated, res.Skipped)
	return res, nil
}

// queryPages returns existing rows in the window keyed by date/rotation.
func (c *Client) queryPages(ctx context.Context, start, end time.Time) (map[string]slotPage, error) {
	type filter struct {
		And []map[string]any `json:"and"`
	}
	reqBody := struct {
		Filter      filter `json:"filter"`
		StartCursor string `json:"start_cursor,omitempty"`
		PageSize    int    `json:"page_size"`
	}{
		Filter: filter{And: []map[string]any{
			{"property": "Date", "date": map[string]string{"on_or_after": start.Format(model.DateFormat)}},
			{"property": "Date", "date": map[string]string{"on_or_before": end.Format(model.DateFormat)}},
		}},
		PageSize: 100,
	}

	out := make(map[string]slotPage)
	for {
		var resp queryResponse
		path := fmt.Sprintf("/v1/databases/%s/query", c.databaseID)
		if err := c.do(ctx, http.MethodPost, path, reqBody, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Results {
			date, rotation, engineer, err := p.slot()
			if err != nil {
				c.log.Warnf("mirror: skipping malformed page %s: %v", p.ID, err)
				continue
			}
			out[date.Format(model.DateFormat)+"/"+rotation.String()] = slotPage{ID: p.ID, Engineer: engineer}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		reqBody.StartCursor = resp.NextCursor
	}
	return out, nil
}

func (c *Client) createPage(ctx context.Context, row model.Assignment) error {
	body := struct {
		Parent     map[string]string `json:"parent"`
		Properties pageProperties    `json:"properties"`
	}{
		Parent:     map[string]string{"database_id": c.databaseID},
		Properties: propertiesFor(row),
	}
	return c.do(ctx, http.MethodPost, "/v1/pages", body, nil)
}

func (c *Client) updatePage(ctx context.Context, pageID string, row model.Assignment) error {
	body := struct {
		Properties pageProperties `json:"properties"`
	}{Properties: propertiesFor(row)}
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, nil)
}

// do executes one API call with bounded retry. 429 responses honor the
// Retry-After header; other failures back off exponentially.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", notionVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			data, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusOK:
				if readErr != nil {
					return readErr
				}
				if out != nil {
					return json.Unmarshal(data, out)
				}
				return nil
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("notion: rate limited")
				if wait := retryAfter(resp); wait > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(wait):
					}
					continue
				}
			default:
				lastErr = fmt.Errorf("notion: %s %s: status %d: %s", method, path, resp.StatusCode, data)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	return lastErr
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// pageProperties is the wire form of one row's columns.
type pageProperties struct {
	Name     titleProp  `json:"Name"`
	Date     dateProp   `json:"Date"`
	Rotation selectProp `json:"Rotation"`
	Engineer richProp   `json:"Engineer"`
}

type titleProp struct {
	Title []textBlock `json:"title"`
}

type dateProp struct {
	Date struct {
		Start string `json:"start"`
	} `json:"date"`
}

type selectProp struct {
	Select struct {
		Name string `json:"name"`
	} `json:"select"`
}

type richProp struct {
	RichText []textBlock `json:"rich_text"`
}

type textBlock struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
	PlainText string `json:"plain_text,omitempty"`
}

func newTextBlock(s string) textBlock {
	var b textBlock
	b.Text.Content = s
	return b
}

func propertiesFor(row model.Assignment) pageProperties {
	var p pageProperties
	date := row.Date.Format(model.DateFormat)
	p.Name.Title = []textBlock{newTextBlock(date + " " + row.Rotation.String())}
	p.Date.Date.Start = date
	p.Rotation.Select.Name = row.Rotation.String()
	p.Engineer.RichText = []textBlock{newTextBlock(row.EngineerKey())}
	return p
}

type queryResponse struct {
	Results    []queryPage `json:"results"`
	HasMore    bool        `json:"has_more"`
	NextCursor string      `json:"next_cursor"`
}

type queryPage struct {
	ID         string         `json:"id"`
	Properties pageProperties `json:"properties"`
}

// slot extracts the (date, rotation, engineer) triple from a page.
func (p queryPage) slot() (time.Time, model.Rotation, string, error) {
	date, err := model.ParseDate(p.Properties.Date.Date.Start)
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("bad date: %w", err)
	}
	rotation, err := model.ParseRotation(p.Properties.Rotation.Select.Name)
	if err != nil {
		return time.Time{}, 0, "", err
	}
	engineer := ""
	if len(p.Properties.Engineer.RichText) > 0 {
		b := p.Properties.Engineer.RichText[0]
		engineer = b.Text.Content
		if engineer == "" {
			engineer = b.PlainText
		}
	}
	return date, rotation, engineer, nil
}
