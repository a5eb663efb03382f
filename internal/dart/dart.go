// Package dart is a client for the Open DART disclosure API.
package dart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finlens-dev/finlens/internal/model"
)

const (
	DefaultBaseURL = "https://opendart.fss.or.kr/api"
	DefaultTimeout = 30 * time.Second

	singleAccountPath = "/fnlttSinglAcnt.json"
	corpCodePath      = "/corpCode.xml"
)

// Response status codes.
const (
	StatusOK     = "000"
	StatusNoData = "013"
)

var (
	// ErrTransport covers timeouts, connection failures, HTTP errors and
	// undecodable bodies.
	ErrTransport = errors.New("dart: transport failure")
	// ErrStatus is a well-formed response with a failure status.
	ErrStatus = errors.New("dart: request rejected")
)

// Request selects one filing.
type Request struct {
	CorpCode   string
	Year       int
	ReportCode model.ReportCode
	Scope      model.Scope
}

// Item is one row of a single-company account response.
type Item struct {
	ReceiptNo        string `json:"rcept_no,omitempty"`
	BusinessYear     string `json:"bsns_year,omitempty"`
	CorpCode         string `json:"corp_code,omitempty"`
	StockCode        string `json:"stock_code,omitempty"`
	ReportCode       string `json:"reprt_code,omitempty"`
	AccountName      string `json:"account_nm"`
	FSDiv            string `json:"fs_div,omitempty"`
	FSName           string `json:"fs_nm,omitempty"`
	SJDiv            string `json:"sj_div"`
	SJName           string `json:"sj_nm,omitempty"`
	CurrentTermName  string `json:"thstrm_nm,omitempty"`
	CurrentTermDate  string `json:"thstrm_dt,omitempty"`
	CurrentAmount    string `json:"thstrm_amount"`
	PreviousTermName string `json:"frmtrm_nm,omitempty"`
	PreviousTermDate string `json:"frmtrm_dt,omitempty"`
	PreviousAmount   string `json:"frmtrm_amount,omitempty"`
	BeforePrevName   string `json:"bfefrmtrm_nm,omitempty"`
	BeforePrevDate   string `json:"bfefrmtrm_dt,omitempty"`
	BeforePrevAmount string `json:"bfefrmtrm_amount,omitempty"`
	Order            string `json:"ord,omitempty"`
	Currency         string `json:"currency,omitempty"`
}

// Response is a decoded API response.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Items   []Item `json:"list"`
}

// OK reports a successful status.
func (r *Response) OK() bool { return r != nil && r.Status == StatusOK }

// HasData reports a successful status with at least one item.
func (r *Response) HasData() bool { return r.OK() && len(r.Items) > 0 }

// LineItems converts the items for the period req describes. The scope of
// an item falls back to the requested scope when the row does not carry one.
func (r *Response) LineItems(req Request) []model.LineItem {
	if r == nil {
		return nil
	}
	out := make([]model.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		scope := req.Scope
		if it.FSDiv != "" {
			scope = model.ParseScope(it.FSDiv)
		}
		out = append(out, model.LineItem{
			AccountName:   it.AccountName,
			RawAmount:     it.CurrentAmount,
			StatementType: model.StatementType(strings.ToUpper(strings.TrimSpace(it.SJDiv))),
			Scope:         scope,
			Period:        model.PeriodKey{Year: req.Year, ReportCode: req.ReportCode},
		})
	}
	return out
}

// Err returns nil for OK and no-data responses and an ErrStatus otherwise.
func (r *Response) Err() error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrTransport)
	}
	switch r.Status {
	case StatusOK, StatusNoData:
		return nil
	default:
		return fmt.Errorf("%w: status %s: %s", ErrStatus, r.Status, r.Message)
	}
}

// Fetcher retrieves a filing.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Client talks to the Open DART API.
type Client struct {
	http   *resty.Client
	apiKey string
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(u, "/")) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
		apiKey: apiKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests the single-company key accounts of a filing. A no-data or
// failure status is returned as a Response with an empty item list; only
// transport and decoding problems are errors.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	scope := model.ParseScope(string(req.Scope))
	log := c.logger.With(
		"corp_code", req.CorpCode,
		"year", req.Year,
		"reprt_code", req.ReportCode,
		"fs_div", scope,
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"crtfc_key":  c.apiKey,
			"corp_code":  req.CorpCode,
			"bsns_year":  strconv.Itoa(req.Year),
			"reprt_code": string(req.ReportCode),
			"fs_div":     string(scope),
		}).
		Get(singleAccountPath)
	if err != nil {
		log.Warn("dart request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.IsError() {
		log.Warn("dart http error", "http_status", resp.StatusCode())
		return nil, fmt.Errorf("%w: http %d", ErrTransport, resp.StatusCode())
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		log.Warn("dart response not decodable", "error", err)
		return nil, fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}

	switch out.Status {
	case StatusOK:
		log.Debug("dart data received", "items", len(out.Items))
	case StatusNoData:
		log.Info("dart has no data for period", "message", out.Message)
		out.Items = []Item{}
	default:
		log.Warn("dart rejected request", "status", out.Status, "message", out.Message)
		out.Items = []Item{}
	}
	return &out, nil
}

// DownloadCorpCodes fetches the zipped company-code table.
func (c *Client) DownloadCorpCodes(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/zip").
		SetQueryParam("crtfc_key", c.apiKey).
		Get(corpCodePath)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading corp codes: %v", ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: downloading corp codes: http %d", ErrTransport, resp.StatusCode())
	}
	body := resp.Body()
	// Errors come back as a JSON or XML status document instead of a zip.
	if len(body) < 2 || body[0] != 'P' || body[1] != 'K' {
		return nil, fmt.Errorf("%w: corp code download is not a zip archive", ErrStatus)
	}
	return body, nil
}
