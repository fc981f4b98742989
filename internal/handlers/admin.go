// admin.go
package handlers

import (
	"net/http"
	"strconv"

	"signn-go/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type AdminHandler struct {
	log *zap.Logger
}

func NewAdminHandler(log *zap.Logger) *AdminHandler {
	return &AdminHandler{log: log}
}

type recentCheckResponse struct {
	CheckID             string  `json:"check_id"`
	RiderName           string  `json:"rider_name"`
	Status              string  `json:"status"`
	Reason              string  `json:"reason"`
	LatencyDeltaPercent float64 `json:"latency_delta_percent"`
	FinalizedAt         string  `json:"finalized_at"`
}

// RecentChecks returns the newest entries of the readiness ledger.
func (h *AdminHandler) RecentChecks(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 20
	}

	records, err := repository.RecentChecks(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to load recent checks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recent checks"})
		return
	}

	out := make([]recentCheckResponse, 0, len(records))
	for _, r := range records {
		entry := recentCheckResponse{
			CheckID:             r.ID,
			RiderName:           r.Rider.Name,
			Status:              r.Status,
			Reason:              r.Reason,
			LatencyDeltaPercent: r.LatencyDeltaPercent,
		}
		if r.FinalizedAt != nil {
			entry.FinalizedAt = r.FinalizedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"checks": out})
}

// FleetStatusChart renders the per-day verdict breakdown as a stacked bar
// chart page.
func (h *AdminHandler) FleetStatusChart(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "14"))
	if err != nil || days < 1 || days > 90 {
		days = 14
	}

	data, err := repository.GetFleetStatusTimeline(c.Request.Context(), days)
	if err != nil {
		h.log.Error("Failed to load fleet status timeline", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load fleet status data")
		return
	}

	bar := generateFleetStatusChart(data)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(c.Writer); err != nil {
		h.log.Error("Failed to render fleet status chart", zap.Error(err))
	}
}

func generateFleetStatusChart(data []repository.FleetStatusPoint) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Fleet Readiness",
			Subtitle: "Finalized checks per day by verdict",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	dates := make([]string, 0, len(data))
	greens := make([]opts.BarData, 0, len(data))
	yellows := make([]opts.BarData, 0, len(data))
	reds := make([]opts.BarData, 0, len(data))
	for _, point := range data {
		dates = append(dates, point.Date.Format("2006-01-02"))
		greens = append(greens, opts.BarData{Value: point.Green})
		yellows = append(yellows, opts.BarData{Value: point.Yellow})
		reds = append(reds, opts.BarData{Value: point.Red})
	}

	bar.SetXAxis(dates).
		AddSeries("GREEN", greens).
		AddSeries("YELLOW", yellows).
		AddSeries("RED", reds).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "verdicts"}))
	return bar
}
