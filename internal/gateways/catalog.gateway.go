package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrMenuItemNotFound = errors.New("menu item not found in catalog")
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

// Client talks to the catalog collaborator, the single authority for menu
// pricing and recipes. Responses are never cached here: a stale price on
// an order is worse than an extra round trip.
type Client struct {
	config *Config
	client *fasthttp.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}

	client := &Client{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
			ReadBufferSize:      config.ReadBufferSize,
			WriteBufferSize:     config.WriteBufferSize,
		},
	}

	logger.Info("Catalog client initialized", "base_url", config.BaseURL, "timeout", config.Timeout)

	return client, nil
}

type resolvedItemResponse struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Available  bool   `json:"available"`
}

type recipeLineResponse struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// ResolveItem fetches the current price and availability of a menu item,
// modifiers included.
func (c *Client) ResolveItem(ctx context.Context, tenantID, menuItemID int64, modifierIDs []int64) (*model.ResolvedItem, error) {
	path := resolveItemPath(tenantID, menuItemID, modifierIDs)

	body, err := c.doRequest(ctx, "GET", path)
	if err != nil {
		return nil, err
	}

	var resp resolvedItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog response: %w", err)
	}

	return &model.ResolvedItem{
		MenuItemID: resp.MenuItemID,
		Name:       resp.Name,
		UnitPrice:  resp.UnitPrice,
		Available:  resp.Available,
	}, nil
}

// Recipe fetches the per-unit ingredient requirements of a menu item.
// An item with no recipe is valid and returns an empty slice.
func (c *Client) Recipe(ctx context.Context, tenantID, menuItemID int64) ([]model.RecipeLine, error) {
	path := recipePath(tenantID, menuItemID)

	body, err := c.doRequest(ctx, "GET", path)
	if err != nil {
		return nil, err
	}

	var resp []recipeLineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe response: %w", err)
	}

	lines := make([]model.RecipeLine, 0, len(resp))
	for _, l := range resp {
		lines = append(lines, model.RecipeLine{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
		})
	}
	return lines, nil
}

func resolveItemPath(tenantID, menuItemID int64, modifierIDs []int64) string {
	path := fmt.Sprintf("/api/v1/menu-items/%d?tenant_id=%d", menuItemID, tenantID)
	if len(modifierIDs) > 0 {
		ids := make([]string, 0, len(modifierIDs))
		for _, id := range modifierIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		path += "&modifier_ids=" + strings.Join(ids, ",")
	}
	return path
}

func recipePath(tenantID, menuItemID int64) string {
	return fmt.Sprintf("/api/v1/menu-items/%d/recipe?tenant_id=%d", menuItemID, tenantID)
}

// doRequest performs an HTTP request with timeout and bounded retries.
// 404 is a domain answer, not a transport failure, so it is never retried.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		body, retryable, err := c.attempt(ctx, method, path)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}

		logger.Warn("Catalog request failed, retrying", "error", err, "path", path, "attempt", attempt+1)
		lastErr = err
	}

	return nil, fmt.Errorf("catalog request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, path string) ([]byte, bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}

	switch statusCode := resp.StatusCode(); {
	case statusCode == fasthttp.StatusOK:
	case statusCode == fasthttp.StatusNotFound:
		return nil, false, ErrMenuItemNotFound
	case statusCode >= 500:
		return nil, true, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	default:
		return nil, false, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, false, nil
}
