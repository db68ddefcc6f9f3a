package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"socialclient/models"
)

// CredentialProvider supplies the bearer credential attached to every
// request. Injected at construction; the gateway never reads ambient state.
type CredentialProvider func() (string, error)

// Client is the stateless I/O boundary to the remote API. It performs no
// caching and no retries; retry policy belongs to callers.
type Client struct {
	http  *resty.Client
	creds CredentialProvider
}

func NewClient(baseURL string, timeout time.Duration, creds CredentialProvider) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, creds: creds}
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.creds()
	if err != nil {
		return nil, fmt.Errorf("credential provider: %w", ErrUnauthorized)
	}
	return c.http.R().SetContext(ctx).SetAuthToken(token), nil
}

// classify maps a resty result onto the error taxonomy. A transport error or
// timeout is ErrUnreachable; the gateway never exposes raw HTTP failures.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	status := resp.StatusCode()
	switch {
	case status < 300:
		return nil
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status >= 500:
		return &ServerError{Status: status, Body: string(resp.Body())}
	default:
		fields := map[string]string{}
		var body struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil {
			if body.Fields != nil {
				fields = body.Fields
			} else if body.Error != "" {
				fields["error"] = body.Error
			}
		}
		return &ValidationError{Status: status, Fields: fields}
	}
}

// FetchFeedPage fetches one page of the feed. An empty cursor requests the
// first page; filter selects an interest category, empty for all.
func (c *Client) FetchFeedPage(ctx context.Context, cursor, filter string, limit int) (*models.Page, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var page models.Page
	req.SetResult(&page)
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}
	if filter != "" {
		req.SetQueryParam("filter", filter)
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/v1/feed")
	if err := c.observe("fetch_feed_page", start, resp, err); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchThread fetches the full contents of a chat thread. Thread fetches are
// full-replace: the server returns every visible message each time.
func (c *Client) FetchThread(ctx context.Context, threadID int64) ([]models.ChatMessage, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var body struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	resp, err := req.SetResult(&body).
		Get(fmt.Sprintf("/api/v1/dialog/%d/list", threadID))
	if err := c.observe("fetch_thread", start, resp, err); err != nil {
		return nil, err
	}
	return body.Messages, nil
}

// SubmitPost creates a new post and returns the server's full echo of it.
func (c *Client) SubmitPost(ctx context.Context, payload models.CreatePostPayload) (*models.FeedItem, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var item models.FeedItem
	resp, err := req.
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]interface{}{
			"content":  payload.Content,
			"images":   payload.Images,
			"location": payload.Location,
			"event":    payload.Event,
			"audience": payload.Audience,
		}).
		SetResult(&item).
		Post("/api/v1/posts/create")
	if err := c.observe("submit_post", start, resp, err); err != nil {
		return nil, err
	}
	return &item, nil
}

// ToggleLike sets or clears the viewer's like on an item and returns the
// authoritative like counter.
func (c *Client) ToggleLike(ctx context.Context, itemID int64, like bool) (int, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return 0, err
	}
	var body struct {
		LikeCount int `json:"like_count"`
	}
	resp, err := req.
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]bool{"like": like}).
		SetResult(&body).
		Post(fmt.Sprintf("/api/v1/posts/%d/like", itemID))
	if err := c.observe("toggle_like", start, resp, err); err != nil {
		return 0, err
	}
	return body.LikeCount, nil
}

// DeletePost removes a post. Callers remove the item locally only after this
// returns nil.
func (c *Client) DeletePost(ctx context.Context, itemID int64) error {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Delete(fmt.Sprintf("/api/v1/posts/%d", itemID))
	return c.observe("delete_post", start, resp, err)
}

// SendMessage posts a message into a thread and returns the confirmed copy
// with its server-assigned id.
func (c *Client) SendMessage(ctx context.Context, threadID int64, text string) (*models.ChatMessage, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var msg models.ChatMessage
	resp, err := req.
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]string{"text": text}).
		SetResult(&msg).
		Post(fmt.Sprintf("/api/v1/dialog/%d/send", threadID))
	if err := c.observe("send_message", start, resp, err); err != nil {
		return nil, err
	}
	return &msg, nil
}

// FetchBubbles returns the viewer's social contexts. Bubble labels go
// through the tolerant decoder because different backend versions name the
// display field differently.
func (c *Client) FetchBubbles(ctx context.Context) ([]models.Bubble, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get("/api/v1/bubbles")
	if err := c.observe("fetch_bubbles", start, resp, err); err != nil {
		return nil, err
	}
	return decodeBubbles(resp.Body())
}

// FetchGroups returns the viewer's saved recipient groups.
func (c *Client) FetchGroups(ctx context.Context) ([]models.Group, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get("/api/v1/groups")
	if err := c.observe("fetch_groups", start, resp, err); err != nil {
		return nil, err
	}
	return decodeGroups(resp.Body())
}

// CreateGroup saves a named group with the given members. Concurrent edits of
// the same group resolve last-write-wins on the server.
func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []int64) (*models.Group, error) {
	start := time.Now()
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var group models.Group
	resp, err := req.
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]interface{}{"name": name, "member_ids": memberIDs}).
		SetResult(&group).
		Post("/api/v1/groups/create")
	if err := c.observe("create_group", start, resp, err); err != nil {
		return nil, err
	}
	return &group, nil
}

// observe classifies the result, records metrics and logs failures.
func (c *Client) observe(op string, start time.Time, resp *resty.Response, err error) error {
	status := "ok"
	outErr := classify(resp, err)
	if outErr != nil {
		status = errorLabel(outErr)
		logrus.Debugf("gateway %s failed: %v", op, outErr)
	}
	requestsTotal.WithLabelValues(op, status).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return outErr
}
