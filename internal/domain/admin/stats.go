package admin

import (
	"context"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// TimePoint is one day of the interaction time series.
type TimePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats aggregates the interaction collection for the dashboard.
type Stats struct {
	TotalInteractions int            `json:"totalInteractions"`
	UniqueUsers       int            `json:"uniqueUsers"`
	ByCity            map[string]int `json:"byCity"`
	ByService         map[string]int `json:"byService"`
	BySource          map[string]int `json:"bySource"`
	ByStatus          map[string]int `json:"byStatus"`
	TimeData          []TimePoint    `json:"timeData"`
}

// ComputeStats aggregates user_interactions. The period parameter is
// accepted for forward compatibility and currently ignored; the time
// series is always the fixed last seven days ending today.
func (s *Service) ComputeStats(ctx context.Context, period string) (Stats, error) {
	_ = period

	interactions, err := s.store.GetAll(ctx, store.CollectionInteractions)
	if err != nil {
		return Stats{}, errors.Wrap(errors.KindStorage, "admin.stats", "failed to read interactions", err)
	}

	now := time.Now().UTC()
	stats := Stats{
		TotalInteractions: len(interactions),
		ByCity:            make(map[string]int),
		ByService:         make(map[string]int),
		BySource:          make(map[string]int),
		ByStatus:          make(map[string]int),
		TimeData:          emptySeries(now),
	}

	if len(interactions) == 0 {
		return stats, nil
	}

	phones := make(map[string]bool)
	dayIndex := make(map[string]int, len(stats.TimeData))
	for i, point := range stats.TimeData {
		dayIndex[point.Date] = i
	}
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)

	for _, it := range interactions {
		phones[it.String("phone")] = true

		stats.ByCity[orUnknown(it.String("selectedCity"))]++
		stats.ByService[orUnknown(it.String("selectedService"))]++
		stats.BySource[orUnknown(it.String("source"))]++

		status := it.String("status")
		if status == "" {
			status = "New"
		}
		stats.ByStatus[status]++

		ts := it.Timestamp()
		if ts.IsZero() || ts.Before(sevenDaysAgo) {
			continue
		}
		if i, ok := dayIndex[ts.UTC().Format("2006-01-02")]; ok {
			stats.TimeData[i].Count++
		}
	}
	stats.UniqueUsers = len(phones)

	return stats, nil
}

// emptySeries builds the fixed seven-day series ending today, zero-filled.
func emptySeries(now time.Time) []TimePoint {
	series := make([]TimePoint, 7)
	for i := range series {
		day := now.AddDate(0, 0, -(6 - i))
		series[i] = TimePoint{Date: day.Format("2006-01-02")}
	}
	return series
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
