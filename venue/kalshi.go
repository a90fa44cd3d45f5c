package venue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kalshi is the live venue: a session-authenticated HTTP client against
// the Kalshi exchange API. The constructor logs in; Close logs out.
// HTTPClient is injectable so tests can point at httptest servers.
type Kalshi struct {
	BaseURL    string
	Ticker     string
	Side       Side
	HTTPClient *http.Client

	token    string
	memberID string
	log      *zap.Logger
}

// NewKalshi authenticates against the exchange and returns a ready
// session. A login failure is returned as *AuthError.
func NewKalshi(baseURL, email, password, ticker string, side Side, log *zap.Logger) (*Kalshi, error) {
	if log == nil {
		log = zap.NewNop()
	}
	k := &Kalshi{
		BaseURL:    baseURL,
		Ticker:     ticker,
		Side:       side,
		HTTPClient: NewDefaultHTTPClient(),
		log:        log,
	}
	if err := k.login(email, password); err != nil {
		return nil, err
	}
	return k, nil
}

// NewDefaultHTTPClient returns an http.Client with a sane timeout.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func (k *Kalshi) login(email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := k.HTTPClient.Post(k.BaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return &AuthError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &AuthError{Err: fmt.Errorf("login status %d: %s", resp.StatusCode, raw)}
	}
	var out struct {
		Token    string `json:"token"`
		MemberID string `json:"member_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &AuthError{Err: err}
	}
	if out.Token == "" {
		return &AuthError{Err: fmt.Errorf("login returned empty token")}
	}
	k.token = out.Token
	k.memberID = out.MemberID
	k.log.Info("logged in", zap.String("ticker", k.Ticker), zap.String("side", string(k.Side)))
	return nil
}

// Close logs the session out. Safe to call more than once.
func (k *Kalshi) Close() error {
	if k.token == "" {
		return nil
	}
	_, err := k.request(http.MethodPost, "/logout", nil, nil)
	k.token = ""
	k.memberID = ""
	if err != nil {
		return err
	}
	k.log.Info("logged out", zap.String("ticker", k.Ticker))
	return nil
}

// request performs an authenticated call. Any failure is wrapped as a
// *VenueError with the request and response context attached.
func (k *Kalshi) request(method, path string, params url.Values, payload any) ([]byte, error) {
	if k.token == "" {
		return nil, &VenueError{Method: method, Path: path, Err: fmt.Errorf("session not authenticated")}
	}
	endpoint := k.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &VenueError{Method: method, Path: path, Err: err}
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, &VenueError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+k.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.HTTPClient.Do(req)
	if err != nil {
		k.log.Error("venue request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &VenueError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	k.log.Debug("venue request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", raw))
	if resp.StatusCode >= 300 {
		k.log.Error("venue request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", raw))
		return nil, &VenueError{Method: method, Path: path, Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// GetPrice fetches the market and returns the mid for the configured
// side: round((bid+ask)/200, 2) with bid/ask in integer cents.
func (k *Kalshi) GetPrice() (float64, error) {
	raw, err := k.request(http.MethodGet, "/markets/"+k.Ticker, nil, nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Market struct {
			YesBid int `json:"yes_bid"`
			YesAsk int `json:"yes_ask"`
			NoBid  int `json:"no_bid"`
			NoAsk  int `json:"no_ask"`
		} `json:"market"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, &VenueError{Method: http.MethodGet, Path: "/markets/" + k.Ticker, Err: err}
	}
	bid, ask := out.Market.YesBid, out.Market.YesAsk
	if k.Side == No {
		bid, ask = out.Market.NoBid, out.Market.NoAsk
	}
	mid := math.Round(float64(bid+ask)/2) / 100
	k.log.Debug("mid price", zap.String("ticker", k.Ticker), zap.Float64("mid", mid))
	return mid, nil
}

// PlaceOrder submits a limit order for the configured side. The price is
// converted from dollars to integer cents on the wire; client_order_id
// is a fresh UUID acting as the idempotency key.
func (k *Kalshi) PlaceOrder(action Action, price float64, size int, expiration time.Time) (string, error) {
	payload := map[string]any{
		"ticker":          k.Ticker,
		"action":          string(action),
		"type":            "limit",
		"side":            string(k.Side),
		"count":           size,
		"client_order_id": uuid.NewString(),
		string(k.Side) + "_price": DollarsToCents(price),
	}
	if !expiration.IsZero() {
		payload["expiration_ts"] = expiration.Unix()
	}
	raw, err := k.request(http.MethodPost, "/portfolio/orders", nil, payload)
	if err != nil {
		return "", err
	}
	var out struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &VenueError{Method: http.MethodPost, Path: "/portfolio/orders", Err: err}
	}
	k.log.Info("order placed",
		zap.String("order_id", out.Order.OrderID),
		zap.String("action", string(action)),
		zap.Float64("price", price),
		zap.Int("size", size))
	return out.Order.OrderID, nil
}

// CancelOrder cancels a resting order; success means quantity was
// actually reduced. An unknown id surfaces as a *VenueError.
func (k *Kalshi) CancelOrder(id string) (bool, error) {
	raw, err := k.request(http.MethodDelete, "/portfolio/orders/"+id, nil, nil)
	if err != nil {
		return false, err
	}
	var out struct {
		ReducedBy int `json:"reduced_by"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return false, &VenueError{Method: http.MethodDelete, Path: "/portfolio/orders/" + id, Err: err}
	}
	ok := out.ReducedBy > 0
	k.log.Info("order canceled", zap.String("order_id", id), zap.Bool("reduced", ok))
	return ok, nil
}

// GetPosition sums unsettled positions for the ticker. The sum is in
// yes-terms; trading the no side flips the sign.
func (k *Kalshi) GetPosition() (int, error) {
	params := url.Values{}
	params.Set("ticker", k.Ticker)
	params.Set("settlement_status", "unsettled")
	raw, err := k.request(http.MethodGet, "/portfolio/positions", params, nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		MarketPositions []struct {
			Ticker   string `json:"ticker"`
			Position int    `json:"position"`
		} `json:"market_positions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, &VenueError{Method: http.MethodGet, Path: "/portfolio/positions", Err: err}
	}
	total := 0
	for _, p := range out.MarketPositions {
		if p.Ticker == k.Ticker {
			total += p.Position
		}
	}
	if k.Side == No {
		total = -total
	}
	k.log.Debug("position", zap.Int("position", total))
	return total, nil
}

// GetOrders lists currently resting orders for the ticker.
func (k *Kalshi) GetOrders() ([]Order, error) {
	params := url.Values{}
	params.Set("ticker", k.Ticker)
	params.Set("status", "resting")
	raw, err := k.request(http.MethodGet, "/portfolio/orders", params, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Orders []struct {
			OrderID      string `json:"order_id"`
			Action       string `json:"action"`
			YesPrice     int    `json:"yes_price"`
			NoPrice      int    `json:"no_price"`
			Count        int    `json:"count"`
			RemainingQty int    `json:"remaining_count"`
			ExpirationTS int64  `json:"expiration_ts"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &VenueError{Method: http.MethodGet, Path: "/portfolio/orders", Err: err}
	}
	orders := make([]Order, 0, len(out.Orders))
	for _, o := range out.Orders {
		price := o.YesPrice
		if k.Side == No {
			price = o.NoPrice
		}
		remaining := o.RemainingQty
		if remaining == 0 {
			remaining = o.Count
		}
		ord := Order{
			ID:        o.OrderID,
			Action:    Action(o.Action),
			Price:     CentsToDollars(price),
			Size:      o.Count,
			Remaining: remaining,
		}
		if o.ExpirationTS > 0 {
			ord.Expiration = time.Unix(o.ExpirationTS, 0)
		}
		orders = append(orders, ord)
	}
	return orders, nil
}

// DollarsToCents converts a dollar price in (0,1) to integer cents.
func DollarsToCents(price float64) int {
	return int(math.Round(price * 100))
}

// CentsToDollars converts integer cents back to a dollar price.
func CentsToDollars(cents int) float64 {
	return float64(cents) / 100
}
