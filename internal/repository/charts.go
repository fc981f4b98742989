// charts.go
package repository

import (
	"context"
	"time"

	"signn-go/internal/database"
)

type FleetStatusPoint struct {
	Date   time.Time `json:"date"`
	Green  int       `json:"green"`
	Yellow int       `json:"yellow"`
	Red    int       `json:"red"`
}

type StatusBreakdown struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// GetFleetStatusTimeline aggregates finalized verdicts per day for the
// admin fleet-status chart. Pending checks carry no status and never
// appear in any bucket.
func GetFleetStatusTimeline(ctx context.Context, days int) ([]FleetStatusPoint, error) {
	var data []FleetStatusPoint
	query := `
		SELECT
			date_trunc('day', finalized_at) AS date,
			COUNT(*) FILTER (WHERE status = 'GREEN')  AS green,
			COUNT(*) FILTER (WHERE status = 'YELLOW') AS yellow,
			COUNT(*) FILTER (WHERE status = 'RED')    AS red
		FROM check_records
		WHERE finalized_at IS NOT NULL
		  AND finalized_at >= CURRENT_DATE - ($1 * INTERVAL '1 day')
		GROUP BY date_trunc('day', finalized_at)
		ORDER BY date;
	`
	err := database.DB.WithContext(ctx).Raw(query, days).Scan(&data).Error
	return data, err
}

// GetStatusBreakdown counts finalized checks per verdict tier.
func GetStatusBreakdown(ctx context.Context) ([]StatusBreakdown, error) {
	var data []StatusBreakdown
	query := `
		SELECT status, COUNT(*) AS count
		FROM check_records
		WHERE finalized_at IS NOT NULL
		GROUP BY status;
	`
	err := database.DB.WithContext(ctx).Raw(query).Scan(&data).Error
	return data, err
}
