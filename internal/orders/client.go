// Package orders предоставляет клиент ленты событий заказов витрины.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client инкапсулирует HTTP-взаимодействие с внутренним API заказов витрины.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Event описывает одно событие заказа в ленте витрины.
type Event struct {
	ID             int64  `json:"id"`
	OrderNumber    string `json:"order"`
	UserID         int64  `json:"user_id"`
	TotalPrice     int64  `json:"total_price"`
	SubmitDate     string `json:"submit_date"`
	ParentCategory int64  `json:"parent_category"`
	StatusRole     string `json:"status_role"`
}

// NewClient создаёт клиент ленты событий по указанному адресу.
// Транспорт повторяет временные сбои сети и ответы 5xx самостоятельно.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = 5 * time.Second
	// 429 обрабатывает опрашивающий цикл по заголовку Retry-After,
	// транспорт его не повторяет.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

// GetEvents запрашивает события заказов после указанного идентификатора.
// При ответе 429 возвращает рекомендованную паузу из заголовка Retry-After,
// при 204 — пустой срез.
func (c *Client) GetEvents(ctx context.Context, afterID int64, limit int) ([]Event, int, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return nil, 0, 0, fmt.Errorf("orders client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := fmt.Sprintf("%s/api/internal/order-events?after=%d&limit=%d", base, afterID, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return nil, resp.StatusCode, retryAfter, nil
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.StatusCode, 0, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, resp.StatusCode, 0, fmt.Errorf("decode response: %w", err)
	}

	return events, resp.StatusCode, 0, nil
}
