package dart

import (
	"context"
	"time"

	"github.com/finlens-dev/finlens/internal/model"
)

// RetryPolicy bounds the year-fallback search.
type RetryPolicy struct {
	MaxFallbackYears int
}

// FallbackLimit is the most prior years any policy may try.
const FallbackLimit = 2

// DefaultRetryPolicy tries the requested year and two prior years.
var DefaultRetryPolicy = RetryPolicy{MaxFallbackYears: FallbackLimit}

// DefaultLatestYearScan is how many years LatestYear inspects.
const DefaultLatestYearScan = 5

// FetchWithFallback fetches req and, while the response is not successful,
// retries with each earlier year up to the policy bound, itself capped at
// FallbackLimit. It stops at the first
// successful response and returns it with the year it was found for.
// When every attempt fails, the last response or error is returned together
// with the originally requested year.
func FetchWithFallback(ctx context.Context, f Fetcher, req Request, p RetryPolicy) (*Response, int, error) {
	extra := min(max(p.MaxFallbackYears, 0), FallbackLimit)

	var (
		last    *Response
		lastErr error
	)
	for i := 0; i <= extra; i++ {
		attempt := req
		attempt.Year = req.Year - i

		resp, err := f.Fetch(ctx, attempt)
		if err == nil && resp.OK() {
			return resp, attempt.Year, nil
		}
		last, lastErr = resp, err
		if ctx.Err() != nil {
			break
		}
	}
	return last, req.Year, lastErr
}

// LatestYear returns the most recent year, starting at now's year and going
// back scan years, for which the report base describes has data. base.Year
// is ignored. found is false when no year has data; year is then the year
// before now.
func LatestYear(ctx context.Context, f Fetcher, base Request, now time.Time, scan int) (year int, found bool) {
	if scan <= 0 {
		scan = DefaultLatestYearScan
	}
	current := now.Year()
	for y := current; y > current-scan; y-- {
		req := base
		req.Year = y
		if req.ReportCode == "" {
			req.ReportCode = model.ReportAnnual
		}
		resp, err := f.Fetch(ctx, req)
		if err == nil && resp.HasData() {
			return y, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return current - 1, false
}
