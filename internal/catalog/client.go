package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Product is the read-only snapshot the chat service needs from the catalog:
// who sells the product and how to label the conversation. The catalog itself
// lives in another service.
type Product struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	SellerID        uint64  `json:"seller_id"`
	SellerName      string  `json:"seller_name"`
	SellerAvatarURL string  `json:"seller_avatar_url"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type productResp struct {
	Success bool     `json:"success"`
	Product *Product `json:"product"`
	Error   string   `json:"error,omitempty"`
}

func (c *Client) Product(ctx context.Context, productID uint64) (*Product, error) {
	if c.HTTP == nil {
		return nil, errors.New("catalog: http client is nil")
	}

	url := fmt.Sprintf("%s/products/%d", strings.TrimRight(c.BaseURL, "/"), productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: status %d", resp.StatusCode)
	}

	var decoded productResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if !decoded.Success || decoded.Product == nil {
		msg := decoded.Error
		if msg == "" {
			msg = "empty response"
		}
		return nil, fmt.Errorf("catalog: %s", msg)
	}
	return decoded.Product, nil
}
