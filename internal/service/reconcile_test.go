package service

import (
	"context"
	"testing"
	"time"

	"github.com/fieldroute/backend/internal/models"
)

func plannedVisit(id, dealerID, storeID int64, day time.Time) models.Visit {
	return models.Visit{
		ID: id, DealerID: dealerID, StoreID: storeID,
		Status: models.VisitPlanned, Origin: models.OriginAutoGenerated,
		VisitDate: day, IsActive: true,
	}
}

func TestReconcileDuplicates_KeepsLowestID(t *testing.T) {
	f := newVisitFixture()
	day := DateOf(testNow)
	f.visits.add(plannedVisit(10, 1, 5, day))
	f.visits.add(plannedVisit(11, 1, 5, day))
	f.visits.add(plannedVisit(12, 1, 5, day))

	deleted, err := f.svc.ReconcileDuplicates(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}

	remaining, _ := f.visits.ListVisits(context.Background())
	if len(remaining) != 1 || remaining[0].ID != 10 {
		t.Fatalf("expected only visit 10 to survive, got %+v", remaining)
	}
}

func TestReconcileDuplicates_GroupsByStatusAndDate(t *testing.T) {
	f := newVisitFixture()
	day := DateOf(testNow)
	other := day.AddDate(0, 0, -1)

	f.visits.add(plannedVisit(1, 1, 5, day))
	// Different status, same tuple otherwise: not a duplicate.
	skipped := plannedVisit(2, 1, 5, day)
	skipped.Status = models.VisitSkipped
	f.visits.add(skipped)
	// Different day: not a duplicate.
	f.visits.add(plannedVisit(3, 1, 5, other))
	// Different dealer: not a duplicate.
	f.visits.add(plannedVisit(4, 2, 5, day))

	deleted, err := f.svc.ReconcileDuplicates(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}
}

func TestReconcileDuplicates_ContinuesPastDeleteFailures(t *testing.T) {
	f := newVisitFixture()
	day := DateOf(testNow)
	f.visits.add(plannedVisit(10, 1, 5, day))
	f.visits.add(plannedVisit(11, 1, 5, day))
	f.visits.add(plannedVisit(12, 1, 5, day))
	f.visits.failDeleteIDs = map[int64]bool{11: true}

	deleted, err := f.svc.ReconcileDuplicates(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion past the failure, got %d", deleted)
	}

	remaining, _ := f.visits.ListVisits(context.Background())
	if len(remaining) != 2 {
		t.Fatalf("expected visits 10 and 11 to remain, got %+v", remaining)
	}
}
