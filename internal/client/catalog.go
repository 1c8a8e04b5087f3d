package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/pricing"
)

type ProductQuery struct {
	Category string
	Search   string
}

func (c *Client) Products(ctx context.Context, q ProductQuery) ([]pricing.Product, error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	path := "/api/products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var data struct {
		Products []pricing.Product `json:"products"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*pricing.Product, error) {
	var data struct {
		Product pricing.Product `json:"product"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &data); err != nil {
		return nil, err
	}
	return &data.Product, nil
}

type Banner struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	Link      string    `json:"link,omitempty"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) ActiveBanners(ctx context.Context) ([]Banner, error) {
	var data struct {
		Banners []Banner `json:"banners"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/banners/active", nil, &data); err != nil {
		return nil, err
	}
	return data.Banners, nil
}
