package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/fieldroute/backend/internal/models"
)

// ReconcileDuplicates collapses duplicate visit rows sharing
// (dealer, store, visitDate, status), keeping the row with the lowest id —
// id order approximates creation order. It exists as a safety net for rows
// created before the find-or-create path serialized concurrent inserts, and
// runs at process startup. Individual delete failures are logged and
// skipped; only the initial listing aborts the pass.
func (s *VisitService) ReconcileDuplicates(ctx context.Context) (int, error) {
	all, err := s.Visits.ListVisits(ctx)
	if err != nil {
		return 0, err
	}

	groups := map[string][]models.Visit{}
	for _, v := range all {
		key := fmt.Sprintf("%d-%d-%s-%s", v.DealerID, v.StoreID, DateOf(v.VisitDate).Format("2006-01-02"), v.Status)
		groups[key] = append(groups[key], v)
	}

	deleted := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		for _, dup := range group[1:] {
			if err := s.Visits.DeleteVisit(ctx, dup.ID); err != nil {
				s.Logger.Error().Err(err).Int64("visit_id", dup.ID).Msg("could not delete duplicate visit")
				continue
			}
			s.Logger.Info().
				Int64("visit_id", dup.ID).
				Int64("dealer_id", dup.DealerID).
				Int64("store_id", dup.StoreID).
				Msg("duplicate visit removed")
			deleted++
		}
	}

	return deleted, nil
}
