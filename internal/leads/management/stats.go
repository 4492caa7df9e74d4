package management

import (
	"context"
	"math"

	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/transport"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	recentLeadsLimit   = 5
	topPlatformsLimit  = 5
	topPerformersLimit = 10
)

// Stats gathers the dashboard aggregates. The queries are independent and run concurrently.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (transport.StatsResponse, error) {
	var (
		breakdown []repository.PlatformAggregate
		totals    repository.Totals
		recent    []repository.Lead
		top       []repository.Lead
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		breakdown, err = s.repo.PlatformBreakdown(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.repo.Totals(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.Recent(gctx, userID, recentLeadsLimit)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopPerformers(gctx, userID, topPerformersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.StatsResponse{}, err
	}

	resp := transport.StatsResponse{
		TotalLeads:     totals.Count,
		ByPlatform:     make(map[string]transport.PlatformStats, len(breakdown)),
		AvgFollowers:   round2(totals.AvgFollowers),
		AvgEngagement:  round2(totals.AvgEngagement),
		TotalFollowers: totals.TotalFollowers,
		TopPlatforms:   make([]transport.PlatformCount, 0, topPlatformsLimit),
		RecentLeads:    ToLeadSummaries(recent),
		TopPerformers:  ToLeadSummaries(top),
	}

	// breakdown arrives ordered by count descending
	for _, agg := range breakdown {
		resp.ByPlatform[agg.Platform] = transport.PlatformStats{
			Count:         agg.Count,
			AvgFollowers:  round2(agg.AvgFollowers),
			AvgEngagement: round2(agg.AvgEngagement),
		}
		if len(resp.TopPlatforms) < topPlatformsLimit {
			resp.TopPlatforms = append(resp.TopPlatforms, transport.PlatformCount{Platform: agg.Platform, Count: agg.Count})
		}
	}

	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
