package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finlens-dev/finlens/internal/advisor"
	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/export"
	"github.com/finlens-dev/finlens/internal/model"
)

// CorpSearcher finds companies by partial name.
type CorpSearcher interface {
	Search(ctx context.Context, name string) ([]model.Corp, error)
}

// Handler serves the /api routes.
type Handler struct {
	service *analysis.Service
	corps   CorpSearcher
	advisor *advisor.Advisor
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc *analysis.Service, corps CorpSearcher, adv *advisor.Advisor, logger *slog.Logger) *Handler {
	return &Handler{service: svc, corps: corps, advisor: adv, logger: logger}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search_corp", h.SearchCorp)

	router.GET("/financial", h.Raw)
	router.GET("/financial/:sj_div", h.Statement)
	router.GET("/quarterly/:sj_div", h.Quarterly)
	router.GET("/ratios", h.Ratios)

	router.GET("/compare/current-previous", h.CompareCurrentPrevious)
	router.GET("/compare/multi-year", h.MultiYear)

	router.GET("/consolidation-diff", h.ConsolidationDiff)
	router.GET("/test-fs-diff", h.ConsolidationDiff)

	router.GET("/export/:kind", h.Export)

	router.POST("/ai-analysis/:type", h.Analyze)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, analysis.ErrInvalidRequest) {
		status = http.StatusBadRequest
	} else {
		h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "success": false})
}

// queryYear reads the first non-empty of keys. Missing means 0.
func queryYear(c *gin.Context, keys ...string) (int, error) {
	for _, k := range keys {
		v := strings.TrimSpace(c.Query(k))
		if v == "" {
			continue
		}
		year, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: year %q", analysis.ErrInvalidRequest, v)
		}
		return year, nil
	}
	return 0, nil
}

func queryYears(c *gin.Context) ([]int, error) {
	var years []int
	for _, part := range strings.Split(c.Query("years"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: year %q", analysis.ErrInvalidRequest, part)
		}
		years = append(years, y)
	}
	return years, nil
}

func reportCode(c *gin.Context) model.ReportCode {
	if v := c.Query("reprt"); v != "" {
		return model.ReportCode(v)
	}
	return model.ReportCode(c.Query("reprt_code"))
}

// SearchCorp handles GET /search_corp?name=.
func (h *Handler) SearchCorp(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "회사명을 입력하세요.", "results": []model.Corp{}})
		return
	}
	if h.corps == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "corp code table not loaded", "results": []model.Corp{}, "success": false})
		return
	}
	results, err := h.corps.Search(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("corp search failed", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "results": []model.Corp{}, "success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "success": true})
}

// Statement handles GET /financial/:sj_div.
func (h *Handler) Statement(c *gin.Context) {
	year, err := queryYear(c, "year", "bsns_year")
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.service.Statement(c.Request.Context(), analysis.StatementRequest{
		CorpCode:      c.Query("corp_code"),
		Year:          year,
		ReportCode:    reportCode(c),
		Scope:         model.Scope(c.Query("fs_div")),
		StatementType: model.StatementType(c.Param("sj_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Raw handles GET /financial, returning the disclosure response untouched.
func (h *Handler) Raw(c *gin.Context) {
	if c.Query("corp_code") == "" || c.Query("reprt_code") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "필수 파라미터 누락"})
		return
	}
	year, err := queryYear(c, "bsns_year")
	if err != nil {
		h.fail(c, err)
		return
	}
	resp, _, err := h.service.Raw(c.Request.Context(), analysis.StatementRequest{
		CorpCode:   c.Query("corp_code"),
		Year:       year,
		ReportCode: model.ReportCode(c.Query("reprt_code")),
		Scope:      model.Scope(c.Query("fs_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompareCurrentPrevious handles GET /compare/current-previous.
func (h *Handler) CompareCurrentPrevious(c *gin.Context) {
	year, err := queryYear(c, "year")
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.service.CompareCurrentPrevious(c.Request.Context(), analysis.CompareRequest{
		CorpCode:      c.Query("corp_code"),
		Year:          year,
		ReportCode:    reportCode(c),
		Scope:         model.Scope(c.Query("fs_div")),
		StatementType: model.StatementType(c.Query("sj_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MultiYear handles GET /compare/multi-year?years=2021,2022,2023.
func (h *Handler) MultiYear(c *gin.Context) {
	years, err := queryYears(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.service.MultiYear(c.Request.Context(), analysis.MultiYearRequest{
		CorpCode:      c.Query("corp_code"),
		Years:         years,
		Quarter:       c.Query("quarter"),
		Scope:         model.Scope(c.Query("fs_div")),
		StatementType: model.StatementType(c.Query("sj_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Quarterly handles GET /quarterly/:sj_div.
func (h *Handler) Quarterly(c *gin.Context) {
	year, err := queryYear(c, "year")
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.service.Quarterly(c.Request.Context(), analysis.QuarterlyRequest{
		CorpCode:      c.Query("corp_code"),
		Year:          year,
		Scope:         model.Scope(c.Query("fs_div")),
		StatementType: model.StatementType(c.Param("sj_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Ratios handles GET /ratios.
func (h *Handler) Ratios(c *gin.Context) {
	year, err := queryYear(c, "year", "bsns_year")
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.service.Ratios(c.Request.Context(), analysis.RatiosRequest{
		CorpCode:   c.Query("corp_code"),
		Year:       year,
		ReportCode: reportCode(c),
		Scope:      model.Scope(c.Query("fs_div")),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ConsolidationDiff handles GET /consolidation-diff.
func (h *Handler) ConsolidationDiff(c *gin.Context) {
	year, err := queryYear(c, "year")
	if err != nil {
		h.fail(c, err)
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			h.fail(c, fmt.Errorf("%w: limit %q", analysis.ErrInvalidRequest, v))
			return
		}
	}
	res, err := h.service.ConsolidationDiff(c.Request.Context(), analysis.DiffRequest{
		CorpCode:      c.Query("corp_code"),
		Year:          year,
		ReportCode:    reportCode(c),
		StatementType: model.StatementType(c.Query("sj_div")),
		Limit:         limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export handles GET /export/:kind and streams an xlsx workbook. kind is
// ratios, compare, multi-year or quarterly; query parameters are those of
// the matching JSON route.
func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	kind := c.Param("kind")
	corp := c.Query("corp_code")
	scope := model.Scope(c.Query("fs_div"))
	st := model.StatementType(c.Query("sj_div"))

	var (
		wb   *export.Workbook
		name string
		err  error
	)
	switch kind {
	case "ratios":
		var year int
		if year, err = queryYear(c, "year"); err != nil {
			break
		}
		var res *analysis.RatiosResult
		if res, err = h.service.Ratios(ctx, analysis.RatiosRequest{CorpCode: corp, Year: year, ReportCode: reportCode(c), Scope: scope}); err != nil {
			break
		}
		name = fmt.Sprintf("ratios-%s-%d.xlsx", corp, res.Year)
		wb, err = export.RatiosReport(res)
	case "compare":
		var year int
		if year, err = queryYear(c, "year"); err != nil {
			break
		}
		var res *analysis.ComparisonResult
		if res, err = h.service.CompareCurrentPrevious(ctx, analysis.CompareRequest{CorpCode: corp, Year: year, ReportCode: reportCode(c), Scope: scope, StatementType: st}); err != nil {
			break
		}
		name = fmt.Sprintf("compare-%s-%d.xlsx", corp, res.CurrentYear)
		wb, err = export.ComparisonReport(res)
	case "multi-year":
		var years []int
		if years, err = queryYears(c); err != nil {
			break
		}
		var res *analysis.MultiYearResult
		if res, err = h.service.MultiYear(ctx, analysis.MultiYearRequest{CorpCode: corp, Years: years, Quarter: c.Query("quarter"), Scope: scope, StatementType: st}); err != nil {
			break
		}
		name = fmt.Sprintf("multi-year-%s.xlsx", corp)
		wb, err = export.MultiYearReport(res)
	case "quarterly":
		var year int
		if year, err = queryYear(c, "year"); err != nil {
			break
		}
		var res *analysis.QuarterlyResult
		if res, err = h.service.Quarterly(ctx, analysis.QuarterlyRequest{CorpCode: corp, Year: year, Scope: scope, StatementType: st}); err != nil {
			break
		}
		name = fmt.Sprintf("quarterly-%s-%d.xlsx", corp, res.Year)
		wb, err = export.QuarterlyReport(res)
	default:
		err = fmt.Errorf("%w: unknown export %q", analysis.ErrInvalidRequest, kind)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	defer wb.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if _, err := wb.WriteTo(c.Writer); err != nil {
		h.logger.Error("writing workbook", "error", err)
	}
}

// Analyze handles POST /ai-analysis/:type.
func (h *Handler) Analyze(c *gin.Context) {
	kind := advisor.ParseKind(c.Param("type"))
	var req advisor.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", analysis.ErrInvalidRequest, err))
		return
	}
	res, err := h.advisor.Analyze(c.Request.Context(), kind, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         fmt.Sprintf("AI 분석 오류: %v", err),
			"analysis_type": kind,
			"success":       false,
			"ai_enabled":    h.advisor.Enabled(),
			"corp_name":     req.CorpName,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}
