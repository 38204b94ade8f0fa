// Package erp is a minimal REST client for the Gestion backend. The backend
// is an opaque collaborator: the client attaches the bearer token, decodes
// the loosely-typed collection records and surfaces 401s through a hook so
// the surrounding session can log out.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates the backend rejected the session token.
	ErrUnauthorized = errors.New("erp: unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("erp: not found")
)

// Client is the Gestion backend REST client.
type Client struct {
	baseURL        string
	token          string
	client         *http.Client
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithOnUnauthorized registers a hook invoked whenever the backend answers 401.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient constructs a backend client.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("erp: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the session token (after a re-login).
func (c *Client) SetToken(token string) { c.token = token }

// ListStocks fetches the stock collection.
func (c *Client) ListStocks(ctx context.Context) ([]Stock, error) {
	var out []Stock
	if err := c.doJSON(ctx, http.MethodGet, "/api/stocks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StockUpdate carries a partial stock mutation; nil fields are untouched.
type StockUpdate struct {
	Quantity  *float64 `json:"quantite,omitempty"`
	Threshold *float64 `json:"seuil,omitempty"`
}

// CreateStock creates a stock line.
func (c *Client) CreateStock(ctx context.Context, line Stock) (*Stock, error) {
	if line.ProductID == "" || line.StoreID == "" {
		return nil, errors.New("erp: incomplete stock line")
	}
	var out Stock
	if err := c.doJSON(ctx, http.MethodPost, "/api/stocks", line, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStock applies a partial update to a stock line.
func (c *Client) UpdateStock(ctx context.Context, id string, update StockUpdate) (*Stock, error) {
	if id == "" {
		return nil, errors.New("erp: empty stock id")
	}
	var out Stock
	if err := c.doJSON(ctx, http.MethodPut, "/api/stocks/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStock removes a stock line.
func (c *Client) DeleteStock(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("erp: empty stock id")
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/stocks/"+url.PathEscape(id), nil, nil)
}

// ListProducts fetches the product collection.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/produits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListStores fetches the store collection.
func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	var out []Store
	if err := c.doJSON(ctx, http.MethodGet, "/api/magasins", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSuppliers fetches the supplier collection.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	if err := c.doJSON(ctx, http.MethodGet, "/api/fournisseurs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers fetches the user collection.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/api/utilisateurs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserAssignment resolves the store assigned to a user. A nil assignment
// means the user has none.
func (c *Client) UserAssignment(ctx context.Context, userID string) (*Assignment, error) {
	if userID == "" {
		return nil, errors.New("erp: empty user id")
	}
	var user struct {
		Store *Assignment `json:"magasin"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/utilisateurs/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	if user.Store == nil || user.Store.LocationID == "" {
		return nil, nil
	}
	return user.Store, nil
}

// TodayAttendance fetches the user's attendance record for a date, nil when
// none exists yet. Date uses the YYYY-MM-DD server layout.
func (c *Client) TodayAttendance(ctx context.Context, userID, date string) (*AttendanceRecord, error) {
	if userID == "" || date == "" {
		return nil, errors.New("erp: empty attendance query")
	}
	query := url.Values{}
	query.Set("utilisateur", userID)
	query.Set("date", date)
	var out []AttendanceRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/pointages?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	record := out[0]
	return &record, nil
}

// ListAttendance fetches a user's attendance records over an inclusive date
// range. Dates use the YYYY-MM-DD server layout; empty bounds are omitted.
func (c *Client) ListAttendance(ctx context.Context, userID, from, to string) ([]AttendanceRecord, error) {
	if userID == "" {
		return nil, errors.New("erp: empty user id")
	}
	query := url.Values{}
	query.Set("utilisateur", userID)
	if from != "" {
		query.Set("du", from)
	}
	if to != "" {
		query.Set("au", to)
	}
	var out []AttendanceRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/pointages?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitAttendance POSTs one attendance action and returns the server's
// created or updated record.
func (c *Client) SubmitAttendance(ctx context.Context, sub AttendanceSubmission) (*AttendanceRecord, error) {
	if sub.UserID == "" || sub.LocationID == "" || sub.Action == "" {
		return nil, errors.New("erp: incomplete attendance submission")
	}
	var out AttendanceRecord
	headers := map[string]string{}
	if sub.IdempotencyKey != "" {
		headers["Idempotency-Key"] = sub.IdempotencyKey
	}
	if err := c.doJSONHeaders(ctx, http.MethodPost, "/api/pointages", sub, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage delivers one message through the backend.
func (c *Client) SendMessage(ctx context.Context, msg OutboundMessage) (*Message, error) {
	if msg.SenderID == "" || msg.RecipientID == "" || msg.Body == "" {
		return nil, errors.New("erp: incomplete message")
	}
	var out Message
	if err := c.doJSON(ctx, http.MethodPost, "/api/messages", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages fetches a user's messages.
func (c *Client) ListMessages(ctx context.Context, userID string) ([]Message, error) {
	if userID == "" {
		return nil, errors.New("erp: empty user id")
	}
	query := url.Values{}
	query.Set("utilisateur", userID)
	var out []Message
	if err := c.doJSON(ctx, http.MethodGet, "/api/messages?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	return c.doJSONHeaders(ctx, method, path, body, out, nil)
}

func (c *Client) doJSONHeaders(ctx context.Context, method, path string, body any, out any, headers map[string]string) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("erp: http %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
