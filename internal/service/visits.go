package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldroute/backend/internal/models"
	"github.com/fieldroute/backend/internal/utils"
)

const skipReasonPrefix = "Motivo de salto: "

// VisitService owns the visit lifecycle: materializing the daily schedule
// from assignments, the PLANNED -> CHECKED_IN -> COMPLETED/SKIPPED state
// machine, and the startup duplicate cleanup.
type VisitService struct {
	Visits      VisitStore
	Assignments AssignmentStore
	Stores      StoreLookup
	Dealers     DealerLookup
	Logger      zerolog.Logger

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time

	locks *keyMutex
}

func NewVisitService(visits VisitStore, assignments AssignmentStore, stores StoreLookup, dealers DealerLookup, logger zerolog.Logger) *VisitService {
	return &VisitService{
		Visits:      visits,
		Assignments: assignments,
		Stores:      stores,
		Dealers:     dealers,
		Logger:      logger,
		Now:         time.Now,
		locks:       newKeyMutex(),
	}
}

func (s *VisitService) today() time.Time {
	return DateOf(s.Now())
}

// MaterializeTodaysVisits returns the dealer's visit list for today,
// creating a PLANNED visit for every due assignment whose store has no visit
// recorded today. Safe to call repeatedly and concurrently: the per-key lock
// in findOrCreatePlanned guarantees at most one PLANNED row per
// (dealer, store, day).
func (s *VisitService) MaterializeTodaysVisits(ctx context.Context, dealerID int64) ([]models.Visit, error) {
	today := s.today()

	existing, err := s.Visits.FindByDealerAndDate(ctx, dealerID, today)
	if err != nil {
		return nil, err
	}

	assignments, err := s.Assignments.FindActiveByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}

	for _, a := range assignments {
		if !IsValidForDate(a, today) {
			continue
		}
		if hasVisitForStore(existing, a.StoreID) {
			// A visit already covers this store today, no matter how it
			// was created.
			continue
		}

		v, err := s.findOrCreatePlanned(ctx, dealerID, a.StoreID, today, a)
		if err != nil {
			s.Logger.Warn().Err(err).
				Int64("dealer_id", dealerID).
				Int64("store_id", a.StoreID).
				Msg("could not materialize planned visit")
			continue
		}
		if v != nil && !containsVisit(existing, v.ID) {
			existing = append(existing, *v)
		}
	}

	return existing, nil
}

// findOrCreatePlanned is the idempotent insert-if-absent path. The keyed
// mutex serializes concurrent callers for the same (dealer, store, date); the
// re-query after a failed insert covers races the lock cannot see, such as a
// second process hitting the same unique constraint.
func (s *VisitService) findOrCreatePlanned(ctx context.Context, dealerID, storeID int64, date time.Time, a models.Assignment) (*models.Visit, error) {
	key := fmt.Sprintf("%d:%d:%s", dealerID, storeID, date.Format("2006-01-02"))
	release := s.locks.Lock(key)
	defer release()

	found, err := s.Visits.FindByDealerStoreDateStatus(ctx, dealerID, storeID, date, models.VisitPlanned)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}

	assignmentID := a.ID
	scheduled := date
	created, err := s.Visits.InsertVisit(ctx, models.Visit{
		DealerID:      dealerID,
		StoreID:       storeID,
		AssignmentID:  &assignmentID,
		Status:        models.VisitPlanned,
		Origin:        models.OriginAutoGenerated,
		VisitDate:     date,
		ScheduledDate: &scheduled,
		IsActive:      true,
		CreatedAt:     s.Now().UTC(),
	})
	if err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("planned visit insert failed, re-querying")
		retry, rerr := s.Visits.FindByDealerStoreDateStatus(ctx, dealerID, storeID, date, models.VisitPlanned)
		if rerr == nil && retry != nil {
			return retry, nil
		}
		return nil, err
	}
	return created, nil
}

// CheckInByQR transitions a visit to CHECKED_IN for the store behind the
// scanned QR code. The caller identity is explicit: dealerID and role come
// from the authenticated request, never from ambient state.
func (s *VisitService) CheckInByQR(ctx context.Context, dealerID int64, role, qrCode string, lat, lng float64) (*models.Visit, error) {
	if role != models.RoleDealer {
		return nil, Forbidden("only dealers can check in")
	}

	store, err := s.Stores.FindStoreByQR(ctx, qrCode)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, NotFound("store not found")
	}
	if !store.IsActive {
		return nil, InvalidState("store is inactive")
	}

	dealer, err := s.Dealers.FindDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, NotFound("dealer not found")
	}
	if !dealer.IsActive {
		return nil, InvalidState("dealer is inactive")
	}

	today := s.today()

	assignment, err := s.findValidAssignment(ctx, dealerID, store.ID, today)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, PreconditionFailed("no valid assignment for this store today")
	}

	open, err := s.Visits.HasOpenCheckedInVisit(ctx, dealerID, store.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, Conflict("a visit is already in progress for this store")
	}

	var visit *models.Visit
	planned, err := s.Visits.FindPlannedByQRAndDealer(ctx, qrCode, dealerID, today)
	if err != nil {
		return nil, err
	}
	if len(planned) > 0 {
		visit = &planned[0]
	} else {
		assignmentID := assignment.ID
		scheduled := today
		visit, err = s.Visits.InsertVisit(ctx, models.Visit{
			DealerID:      dealerID,
			StoreID:       store.ID,
			AssignmentID:  &assignmentID,
			Status:        models.VisitPlanned,
			Origin:        models.OriginOffline,
			VisitDate:     today,
			ScheduledDate: &scheduled,
			IsActive:      true,
			CreatedAt:     s.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
	}

	now := s.Now().UTC()
	visit.Status = models.VisitCheckedIn
	visit.CheckInAt = &now
	visit.CheckInLat = &lat
	visit.CheckInLng = &lng
	visit.UpdatedAt = &now

	if err := s.Visits.UpdateVisit(ctx, *visit); err != nil {
		return nil, err
	}

	evt := s.Logger.Info().Int64("visit_id", visit.ID).Int64("dealer_id", dealerID).Int64("store_id", store.ID)
	if store.Latitude != nil && store.Longitude != nil {
		evt = evt.Float64("distance_km", utils.HaversineKm(lat, lng, *store.Latitude, *store.Longitude))
	}
	evt.Msg("check-in")

	return visit, nil
}

// CompleteVisit closes a CHECKED_IN visit.
func (s *VisitService) CompleteVisit(ctx context.Context, dealerID, visitID int64, lat, lng float64, notes string) (*models.Visit, error) {
	visit, err := s.Visits.FindVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, NotFound("visit not found")
	}
	if visit.DealerID != dealerID {
		return nil, Forbidden("visit belongs to another dealer")
	}
	if visit.Status != models.VisitCheckedIn {
		return nil, PreconditionFailed("visit is not checked in")
	}

	now := s.Now().UTC()
	visit.Status = models.VisitCompleted
	visit.CheckOutAt = &now
	visit.CheckOutLat = &lat
	visit.CheckOutLng = &lng
	visit.UpdatedAt = &now
	if strings.TrimSpace(notes) != "" {
		visit.Notes = notes
	}

	if err := s.Visits.UpdateVisit(ctx, *visit); err != nil {
		return nil, err
	}

	s.Logger.Info().Int64("visit_id", visit.ID).Int64("dealer_id", dealerID).Msg("visit completed")
	return visit, nil
}

// SkipVisit marks a PLANNED visit as SKIPPED, recording the reason in notes.
func (s *VisitService) SkipVisit(ctx context.Context, dealerID, visitID int64, reason string) (*models.Visit, error) {
	visit, err := s.Visits.FindVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, NotFound("visit not found")
	}
	if visit.DealerID != dealerID {
		return nil, Forbidden("visit belongs to another dealer")
	}
	if visit.Status != models.VisitPlanned {
		return nil, PreconditionFailed("only planned visits can be skipped")
	}

	now := s.Now().UTC()
	visit.Status = models.VisitSkipped
	visit.UpdatedAt = &now
	if strings.TrimSpace(reason) != "" {
		if visit.Notes != "" {
			visit.Notes += "\n"
		}
		visit.Notes += skipReasonPrefix + reason
	}

	if err := s.Visits.UpdateVisit(ctx, *visit); err != nil {
		return nil, err
	}

	s.Logger.Info().Int64("visit_id", visit.ID).Int64("dealer_id", dealerID).Msg("visit skipped")
	return visit, nil
}

// OpenVisits lists the dealer's visits still awaiting checkout.
func (s *VisitService) OpenVisits(ctx context.Context, dealerID int64) ([]models.Visit, error) {
	return s.Visits.FindOpenByDealer(ctx, dealerID)
}

func (s *VisitService) VisitsByDealerAndDate(ctx context.Context, dealerID int64, date time.Time) ([]models.Visit, error) {
	return s.Visits.FindByDealerAndDate(ctx, dealerID, DateOf(date))
}

func (s *VisitService) VisitsByStoreAndDate(ctx context.Context, storeID int64, date time.Time) ([]models.Visit, error) {
	return s.Visits.FindByStoreAndDate(ctx, storeID, DateOf(date))
}

func (s *VisitService) FilterVisits(ctx context.Context, f VisitFilter) ([]models.Visit, error) {
	return s.Visits.FilterVisits(ctx, f)
}

func (s *VisitService) GetVisit(ctx context.Context, id int64) (*models.Visit, error) {
	visit, err := s.Visits.FindVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, NotFound("visit not found")
	}
	return visit, nil
}

// ManualVisitInput carries the admin manual-create payload. Zero-value
// optional fields are left unset on the stored visit.
type ManualVisitInput struct {
	DealerID      int64
	StoreID       int64
	AssignmentID  *int64
	Status        string
	Origin        string
	VisitDate     *time.Time
	ScheduledDate *time.Time
	Notes         string
}

// CreateManualVisit is the admin escape hatch: it writes a visit directly,
// bypassing the state machine.
func (s *VisitService) CreateManualVisit(ctx context.Context, in ManualVisitInput) (*models.Visit, error) {
	dealer, err := s.Dealers.FindDealer(ctx, in.DealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, NotFound("dealer not found")
	}

	store, err := s.Stores.FindStore(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, NotFound("store not found")
	}

	if !validStatus(in.Status) {
		return nil, PreconditionFailed("unknown visit status")
	}

	visitDate := s.today()
	if in.VisitDate != nil {
		visitDate = DateOf(*in.VisitDate)
	}
	origin := in.Origin
	if origin == "" {
		origin = models.OriginOnline
	}

	visit := models.Visit{
		DealerID:      in.DealerID,
		StoreID:       in.StoreID,
		AssignmentID:  in.AssignmentID,
		Status:        in.Status,
		Origin:        origin,
		VisitDate:     visitDate,
		ScheduledDate: in.ScheduledDate,
		Notes:         in.Notes,
		IsActive:      true,
		CreatedAt:     s.Now().UTC(),
	}

	created, err := s.Visits.InsertVisit(ctx, visit)
	if err != nil {
		return nil, err
	}

	s.Logger.Info().Int64("visit_id", created.ID).Msg("manual visit created")
	return created, nil
}

// VisitUpdateInput force-sets operational fields; nil fields are untouched.
type VisitUpdateInput struct {
	Status      *string
	VisitDate   *time.Time
	CheckInAt   *time.Time
	CheckOutAt  *time.Time
	CheckInLat  *float64
	CheckInLng  *float64
	CheckOutLat *float64
	CheckOutLng *float64
	Notes       *string
	IsActive    *bool
}

// AdminUpdateVisit applies a partial update outside the state machine. Meant
// for manual corrections only.
func (s *VisitService) AdminUpdateVisit(ctx context.Context, id int64, in VisitUpdateInput) (*models.Visit, error) {
	visit, err := s.Visits.FindVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, NotFound("visit not found")
	}

	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, PreconditionFailed("unknown visit status")
		}
		visit.Status = *in.Status
	}
	if in.VisitDate != nil {
		visit.VisitDate = DateOf(*in.VisitDate)
	}
	if in.CheckInAt != nil {
		visit.CheckInAt = in.CheckInAt
	}
	if in.CheckOutAt != nil {
		visit.CheckOutAt = in.CheckOutAt
	}
	if in.CheckInLat != nil {
		visit.CheckInLat = in.CheckInLat
	}
	if in.CheckInLng != nil {
		visit.CheckInLng = in.CheckInLng
	}
	if in.CheckOutLat != nil {
		visit.CheckOutLat = in.CheckOutLat
	}
	if in.CheckOutLng != nil {
		visit.CheckOutLng = in.CheckOutLng
	}
	if in.Notes != nil {
		visit.Notes = *in.Notes
	}
	if in.IsActive != nil {
		visit.IsActive = *in.IsActive
	}

	now := s.Now().UTC()
	visit.UpdatedAt = &now

	if err := s.Visits.UpdateVisit(ctx, *visit); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *VisitService) findValidAssignment(ctx context.Context, dealerID, storeID int64, date time.Time) (*models.Assignment, error) {
	assignments, err := s.Assignments.FindActiveByDealerAndStore(ctx, dealerID, storeID)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if IsValidForDate(assignments[i], date) {
			return &assignments[i], nil
		}
	}
	return nil, nil
}

func hasVisitForStore(visits []models.Visit, storeID int64) bool {
	for _, v := range visits {
		if v.StoreID == storeID {
			return true
		}
	}
	return false
}

func containsVisit(visits []models.Visit, id int64) bool {
	for _, v := range visits {
		if v.ID == id {
			return true
		}
	}
	return false
}

func validStatus(status string) bool {
	switch status {
	case models.VisitPlanned, models.VisitCheckedIn, models.VisitCompleted, models.VisitSkipped:
		return true
	}
	return false
}
