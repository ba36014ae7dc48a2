// Package rentalapi is the HTTP client for the remote rental API: the city
// list, the vehicle search and vehicle detail.
package rentalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// ErrUpstream marks a failed call to the remote API: transport error,
// unexpected status, or an undecodable body.
var ErrUpstream = errors.New("upstream error")

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Client calls the remote rental API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. A nil httpClient uses http.DefaultClient;
// callers bound each call with the request context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Cities fetches the ordered list of city names that have rental companies.
// The order is preserved as received.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	const op = "rentalapi.Client.Cities"

	var cities []string
	if err := c.getJSON(ctx, op, "/rental-companies/cities", nil, &cities); err != nil {
		return nil, err
	}
	if cities == nil {
		cities = []string{}
	}
	return cities, nil
}

// Vehicles searches vehicles for q. The query string is the shared search
// contract, forwarded unchanged.
func (c *Client) Vehicles(ctx context.Context, q domain.SearchQuery) ([]domain.Vehicle, error) {
	const op = "rentalapi.Client.Vehicles"

	var vehicles []domain.Vehicle
	if err := c.getJSON(ctx, op, "/vehicles", q.Values(), &vehicles); err != nil {
		return nil, err
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, nil
}

// Vehicle fetches one vehicle of a rental company. A remote 404 is returned
// as domain.ErrNotFound.
func (c *Client) Vehicle(ctx context.Context, companySlug, vehicleSlug string) (domain.Vehicle, error) {
	const op = "rentalapi.Client.Vehicle"

	path := "/rental-companies/" + url.PathEscape(companySlug) + "/vehicles/" + url.PathEscape(vehicleSlug)
	var v domain.Vehicle
	if err := c.getJSON(ctx, op, path, nil, &v); err != nil {
		return domain.Vehicle{}, err
	}
	return v, nil
}

// getJSON performs a GET and decodes the body into dst. The remote API wraps
// some payloads in {"data": ...}; both shapes are accepted.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, dst any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: %w: unexpected status %d", op, ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: %w: read body: %v", op, ErrUpstream, err)
	}
	if err := decode(body, dst); err != nil {
		return fmt.Errorf("%s: %w: decode: %v", op, ErrUpstream, err)
	}
	return nil
}

func decode(body []byte, dst any) error {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
			return json.Unmarshal(envelope.Data, dst)
		}
	}
	return json.Unmarshal(body, dst)
}
