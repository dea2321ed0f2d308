// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package supervisor

import (
	"context"
	"time"

	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/models"
)

// StatsSource provides the database stats snapshot the refresher polls.
// *database.DB implements it.
type StatsSource interface {
	Stats(ctx context.Context) (*models.DatabaseStats, error)
}

// StatsRefresher periodically polls database stats so the logs carry a
// heartbeat of table growth and the connection pool gauges stay fresh
// even when nobody is using the dashboard.
type StatsRefresher struct {
	source   StatsSource
	interval time.Duration
}

// NewStatsRefresher polls source every interval.
func NewStatsRefresher(source StatsSource, interval time.Duration) *StatsRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsRefresher{source: source, interval: interval}
}

// Serve implements suture.Service.
func (s *StatsRefresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *StatsRefresher) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stats, err := s.source.Stats(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Stats refresh failed")
		return
	}

	event := logging.Debug().Str("database_size", stats.DatabaseSize)
	for _, t := range stats.Tables {
		event = event.Int64(t.Table, t.Rows)
	}
	event.Msg("Database stats refreshed")
}

// String identifies the service in suture logs.
func (s *StatsRefresher) String() string {
	return "stats-refresher"
}
