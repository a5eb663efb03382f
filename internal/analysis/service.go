// Package analysis answers statement, comparison, ratio and consolidation
// questions by fetching filings and running them through the normalization
// engine.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finlens-dev/finlens/internal/dart"
	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/statement"
	"github.com/finlens-dev/finlens/internal/taxonomy"
)

// ErrInvalidRequest marks a request rejected before any fetch.
var ErrInvalidRequest = errors.New("invalid request")

// noDataMessage is reported when a failed fetch carries no message of its own.
const noDataMessage = "데이터를 찾을 수 없습니다"

// Progress is told about each completed fetch of a multi-period request.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

// Service runs analyses against a Fetcher. It holds no per-request state
// and is safe for concurrent use when its Fetcher is.
type Service struct {
	fetcher  dart.Fetcher
	taxonomy *taxonomy.Taxonomy
	retry    dart.RetryPolicy
	scan     int
	now      func() time.Time
	logger   *slog.Logger
	progress Progress
}

// Option configures a Service.
type Option func(*Service)

// WithRetryPolicy sets the year-fallback policy.
func WithRetryPolicy(p dart.RetryPolicy) Option {
	return func(s *Service) { s.retry = p }
}

// WithLatestYearScan sets how many years latest-year discovery inspects.
func WithLatestYearScan(n int) Option {
	return func(s *Service) { s.scan = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithProgress reports multi-period fetches to p.
func WithProgress(p Progress) Option {
	return func(s *Service) { s.progress = p }
}

// New creates a Service. A nil taxonomy selects taxonomy.Default.
func New(f dart.Fetcher, tx *taxonomy.Taxonomy, opts ...Option) *Service {
	if tx == nil {
		tx = taxonomy.Default()
	}
	s := &Service{
		fetcher:  f,
		taxonomy: tx,
		retry:    dart.DefaultRetryPolicy,
		scan:     dart.DefaultLatestYearScan,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin tags a request with a fresh ID.
func (s *Service) begin(op string, attrs ...any) (string, *slog.Logger) {
	id := uuid.NewString()
	log := s.logger.With(append([]any{"request_id", id, "op", op}, attrs...)...)
	log.Debug("analysis started")
	return id, log
}

func (s *Service) step() {
	if s.progress != nil {
		_ = s.progress.Add(1)
	}
}

func (s *Service) latestYear(ctx context.Context, log *slog.Logger, base dart.Request) int {
	year, found := dart.LatestYear(ctx, s.fetcher, base, s.now(), s.scan)
	if !found {
		log.Warn("no recent filing found, using fallback year", "year", year)
	}
	return year
}

// fetchSnapshot fetches one period and builds its canonical snapshot for st.
// Failures are logged and yield an empty snapshot.
func (s *Service) fetchSnapshot(ctx context.Context, log *slog.Logger, req dart.Request, st model.StatementType) (model.Snapshot, bool) {
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		log.Warn("fetch failed", "year", req.Year, "reprt_code", req.ReportCode, "error", err)
		return model.Snapshot{}, false
	}
	if !resp.OK() {
		log.Info("no data for period", "year", req.Year, "reprt_code", req.ReportCode, "status", resp.Status, "message", resp.Message)
		return model.Snapshot{}, false
	}
	snap, stats := statement.BuildCanonical(resp.LineItems(req), st, s.taxonomy)
	if stats.Defaulted > 0 || stats.Duplicates > 0 {
		log.Debug("snapshot built with adjustments",
			"year", req.Year, "defaulted", stats.Defaulted, "duplicates", stats.Duplicates)
	}
	return snap, true
}

func failureMessage(resp *dart.Response, err error) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	if err != nil && !errors.Is(err, dart.ErrTransport) {
		return err.Error()
	}
	return noDataMessage
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func requireCorp(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", invalid("회사코드가 필요합니다")
	}
	return code, nil
}

func requireYear(year int) error {
	if year < 0 || year > 9999 {
		return invalid("invalid year %d", year)
	}
	return nil
}

func requireStatement(st model.StatementType) (model.StatementType, error) {
	if st == "" {
		return model.StatementBS, nil
	}
	parsed, err := model.ParseStatementType(string(st))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return parsed, nil
}

func reportOrAnnual(code model.ReportCode) model.ReportCode {
	if strings.TrimSpace(string(code)) == "" {
		return model.ReportAnnual
	}
	return code
}
