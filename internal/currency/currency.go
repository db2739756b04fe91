package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrAPI            = errors.New("exchange rate API error")
	ErrRatesNotLoaded = errors.New("rates not loaded")
	ErrInvalidAmount  = errors.New("enter a valid amount")
)

const DefaultBaseURL = "https://v6.exchangerate-api.com/v6"

// Table maps currency codes to their rate against one base currency.
type Table struct {
	Base    string
	Rates   map[string]float64
	Fetched time.Time
}

// Codes returns the known currency codes, sorted.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t.Rates))
	for c := range t.Rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Convert changes amount from one currency to another through the base.
func (t Table) Convert(amount float64, from, to string) (float64, error) {
	rf, ok := t.Rates[strings.ToUpper(from)]
	if !ok || rf == 0 {
		return 0, fmt.Errorf("%w: %s", ErrRatesNotLoaded, from)
	}
	rt, ok := t.Rates[strings.ToUpper(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRatesNotLoaded, to)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, ErrInvalidAmount
	}
	return amount * (rt / rf), nil
}

// Format renders "<amount> FROM = <x.xxxx> TO".
func (t Table) Format(amount float64, from, to string) (string, error) {
	v, err := t.Convert(amount, from, to)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s = %s %s",
		strconv.FormatFloat(amount, 'f', -1, 64), strings.ToUpper(from),
		strconv.FormatFloat(v, 'f', 4, 64), strings.ToUpper(to)), nil
}

// Client fetches rates from exchangerate-api.com and caches them per base
// currency for TTL.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	TTL     time.Duration

	mu    sync.Mutex
	cache map[string]Table
	now   func() time.Time
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		TTL:     time.Hour,
	}
}

type latestResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	Rates           map[string]float64 `json:"rates"`
}

// Rates returns the table for base, from cache when it is fresh.
func (c *Client) Rates(ctx context.Context, base string) (Table, error) {
	base = strings.ToUpper(base)
	if base == "" {
		base = "USD"
	}

	c.mu.Lock()
	if t, ok := c.cache[base]; ok && c.clock().Sub(t.Fetched) < c.TTL {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	t, err := c.fetch(ctx, base)
	if err != nil {
		return Table{}, err
	}

	c.mu.Lock()
	if c.cache == nil {
		c.cache = map[string]Table{}
	}
	c.cache[base] = t
	c.mu.Unlock()
	return t, nil
}

func (c *Client) fetch(ctx context.Context, base string) (Table, error) {
	u := c.BaseURL + "/" + url.PathEscape(c.APIKey) + "/latest/" + url.PathEscape(base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Table{}, err
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Table{}, fmt.Errorf("%w: status %d: %v", ErrAPI, resp.StatusCode, err)
	}

	rates := body.ConversionRates
	if rates == nil {
		rates = body.Rates
	}
	if body.Result != "success" && rates == nil {
		reason := body.ErrorType
		if reason == "" {
			reason = resp.Status
		}
		return Table{}, fmt.Errorf("%w: %s", ErrAPI, reason)
	}
	if len(rates) == 0 {
		return Table{}, fmt.Errorf("%w: empty rate table", ErrAPI)
	}
	return Table{Base: base, Rates: rates, Fetched: c.clock()}, nil
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
