// internal/candidatures/aggregate/service.go
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"careers-backend/internal/candidatures/normalize"
	"careers-backend/internal/candidatures/storage"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/common/metrics"
	"careers-backend/internal/models"
)

// Filter narrows an aggregated listing after normalization. Zero values mean
// no filtering on that dimension. Source filtering matches the resolved
// source, so filtering on "stage" also returns PFE rows stored in the emploi
// table only when the filter says so, never implicitly.
type Filter struct {
	Sources []models.ApplicationSource
	Status  models.LifecycleStatus
}

func (f Filter) matches(app models.Application) bool {
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if len(f.Sources) == 0 {
		return true
	}
	for _, s := range f.Sources {
		if app.Source == s {
			return true
		}
	}
	return false
}

// Config holds the aggregation tunables.
type Config struct {
	// PartitionTimeout bounds each partition query independently so one
	// slow table cannot stall the whole listing.
	PartitionTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PartitionTimeout <= 0 {
		c.PartitionTimeout = 5 * time.Second
	}
	return c
}

// Service fans a listing out to every partition concurrently and merges the
// normalized results. A failing partition is logged and skipped, never fatal:
// the admin view degrades to the partitions that answered.
type Service struct {
	registry *storage.Registry
	config   Config
	logger   logger.Logger
}

func NewService(registry *storage.Registry, config Config, log logger.Logger) *Service {
	return &Service{
		registry: registry,
		config:   config.withDefaults(),
		logger:   log,
	}
}

type partitionResult struct {
	source models.ApplicationSource
	apps   []models.Application
	err    error
}

// List queries every partition in parallel, normalizes each row, merges and
// sorts the union by submission time (newest first), then applies the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Application, error) {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	partitions := s.registry.All()
	results := make(chan partitionResult, len(partitions))

	var wg sync.WaitGroup
	for _, p := range partitions {
		wg.Add(1)
		go func(p storage.Partition) {
			defer wg.Done()
			results <- s.queryPartition(ctx, p)
		}(p)
	}
	wg.Wait()
	close(results)

	merged := make([]models.Application, 0, 64)
	for res := range results {
		if res.err != nil {
			metrics.PartitionFailures.WithLabelValues(string(res.source)).Inc()
			s.logger.WithError(res.err).Error("partition listing failed, continuing without it", map[string]interface{}{
				"source": string(res.source),
			})
			continue
		}
		merged = append(merged, res.apps...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SubmittedAt.After(merged[j].SubmittedAt)
	})

	if filter.Status == "" && len(filter.Sources) == 0 {
		return merged, nil
	}
	filtered := merged[:0]
	for _, app := range merged {
		if filter.matches(app) {
			filtered = append(filtered, app)
		}
	}
	return filtered, nil
}

func (s *Service) queryPartition(ctx context.Context, p storage.Partition) partitionResult {
	ctx, cancel := context.WithTimeout(ctx, s.config.PartitionTimeout)
	defer cancel()

	rows, err := p.List(ctx)
	if err != nil {
		return partitionResult{source: p.Source(), err: err}
	}

	apps := make([]models.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, normalize.Application(row, p.Source()))
	}
	return partitionResult{source: p.Source(), apps: apps}
}
