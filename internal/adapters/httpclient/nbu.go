package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"nburates/internal/adapters"
	"nburates/internal/config"
	"nburates/internal/domain"
	"nburates/internal/platform/metrics"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	exchangePath     = "/NBUStatService/v1/statdirectory/exchange"
	exchangeSitePath = "/NBU_Exchange/exchange_site"

	EndpointExchange     = "exchange"
	EndpointExchangeSite = "exchange_site"

	maxErrorBody = 512
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed response")
)

// exchangedate comes back as DD.MM.YYYY from both endpoints; the other layouts are
// accepted in case the API switches to them.
var exchangeDateLayouts = []string{"02.01.2006", domain.CompactLayout, domain.DateLayout}

type NBUClient struct {
	http      *http.Client
	baseURL   string
	userAgent string
	log       logrus.FieldLogger
	observer  adapters.RequestObserver
}

type exchangeRecord struct {
	Rate         *decimal.Decimal `json:"rate"`
	Message      string           `json:"message"`
	ExchangeDate string           `json:"exchangedate"`
}

func NewNBUClient(httpClient *http.Client, baseURL, userAgent string, log logrus.FieldLogger) *NBUClient {
	return &NBUClient{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		log:       log,
	}
}

// WithUserAgent returns a copy of the client that sends ua instead of the configured agent.
func (c *NBUClient) WithUserAgent(ua string) *NBUClient {
	cp := *c
	cp.userAgent = ua
	return &cp
}

func (c *NBUClient) WithObserver(o adapters.RequestObserver) *NBUClient {
	cp := *c
	cp.observer = o
	return &cp
}

// Headers returns the request headers, using the default browser agent when ua is empty.
func Headers(ua string) http.Header {
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", "application/json")
	return h
}

func (c *NBUClient) GetRateOnDate(ctx context.Context, code string, date time.Time) (decimal.NullDecimal, error) {
	q := url.Values{}
	q.Set("valcode", strings.ToLower(code))
	q.Set("date", date.Format(domain.CompactLayout))

	records, elapsed, err := c.get(ctx, EndpointExchange, exchangePath, q)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("rate for currency %q on %s: %w", code, date.Format(domain.DateLayout), err)
	}

	if len(records) == 0 || !records[0].published() {
		if len(records) > 0 {
			c.log.WithFields(logrus.Fields{"currency": code, "date": date.Format(domain.DateLayout)}).Debug(records[0].Message)
		}
		c.observe(EndpointExchange, metrics.OutcomeNoRate, elapsed)
		return decimal.NullDecimal{}, nil
	}
	c.observe(EndpointExchange, metrics.OutcomeOK, elapsed)
	return decimal.NewNullDecimal(*records[0].Rate), nil
}

// published reports whether the record carries a usable rate; the bank sends 0 or no
// rate at all for days it did not publish.
func (r exchangeRecord) published() bool {
	return r.Rate != nil && !r.Rate.IsZero()
}

// GetRatesForRange returns the records in the order the API sent them (descending by date).
func (c *NBUClient) GetRatesForRange(ctx context.Context, code string, start, end time.Time) ([]domain.DatedRate, error) {
	q := url.Values{}
	q.Set("valcode", strings.ToUpper(code))
	q.Set("start", start.Format(domain.CompactLayout))
	q.Set("end", end.Format(domain.CompactLayout))
	q.Set("sort", "exchangedate")
	q.Set("order", "desc")

	records, elapsed, err := c.get(ctx, EndpointExchangeSite, exchangeSitePath, q)
	if err != nil {
		return nil, fmt.Errorf("rates for currency %q in %s..%s: %w",
			code, start.Format(domain.DateLayout), end.Format(domain.DateLayout), err)
	}

	rates := make([]domain.DatedRate, 0, len(records))
	for _, rec := range records {
		d, err := parseExchangeDate(rec.ExchangeDate)
		if err != nil {
			c.observe(EndpointExchangeSite, metrics.OutcomeMalformed, elapsed)
			return nil, fmt.Errorf("%w: currency %q: %w", ErrMalformedResponse, code, err)
		}
		r := domain.DatedRate{Date: d}
		if rec.published() {
			r.Rate = decimal.NewNullDecimal(*rec.Rate)
		}
		rates = append(rates, r)
	}
	c.observe(EndpointExchangeSite, metrics.OutcomeOK, elapsed)
	return rates, nil
}

// get performs the request and decodes the record array. Failures are reported to the
// observer here; the caller reports the outcome of a successful decode.
func (c *NBUClient) get(ctx context.Context, endpoint, path string, q url.Values) ([]exchangeRecord, time.Duration, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse base URL: %w", err)
	}
	// the API switches to JSON on a bare "json" flag
	u.RawQuery = q.Encode() + "&json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = Headers(c.userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, metrics.OutcomeUnavailable, time.Since(started))
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.observe(endpoint, metrics.OutcomeBadStatus, time.Since(started))
		return nil, 0, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []exchangeRecord
	if err = json.NewDecoder(resp.Body).Decode(&records); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			c.observe(endpoint, metrics.OutcomeUnavailable, time.Since(started))
			return nil, 0, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
		}
		c.observe(endpoint, metrics.OutcomeMalformed, time.Since(started))
		return nil, 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return records, time.Since(started), nil
}

func (c *NBUClient) observe(endpoint, outcome string, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRequest(endpoint, outcome, elapsed)
}

func parseExchangeDate(s string) (time.Time, error) {
	for _, layout := range exchangeDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown exchangedate format %q", s)
}
