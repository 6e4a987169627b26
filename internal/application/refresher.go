package application

import (
	"context"

	"rates-engine/internal/domain"

	"go.uber.org/zap"
)

// RefreshStats tallies one batch refresh run.
type RefreshStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// BatchRefresher walks bases x supported targets, forcing a source-tier
// refresh for each pair. A failing pair is tallied and skipped over; the run
// always completes.
type BatchRefresher struct {
	resolver *Resolver
	targets  []string
	log      *zap.Logger
}

func NewBatchRefresher(resolver *Resolver, targets []string, log *zap.Logger) *BatchRefresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchRefresher{resolver: resolver, targets: targets, log: log}
}

func (b *BatchRefresher) RefreshAll(ctx context.Context, bases []string) RefreshStats {
	var stats RefreshStats
	for _, base := range bases {
		base = domain.NormalizeCode(base)
		for _, target := range b.targets {
			if base == target {
				stats.Skipped++
				continue
			}
			if _, err := b.resolver.Refresh(ctx, base, target); err != nil {
				stats.Failed++
				b.log.Warn("pair_refresh_failed",
					zap.String("pair", domain.PairKey(base, target)),
					zap.Error(err),
				)
				continue
			}
			stats.Success++
		}
	}
	b.log.Info("batch_refresh_done",
		zap.Int("success", stats.Success),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats
}
