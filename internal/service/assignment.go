package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldroute/backend/internal/models"
)

// AssignmentService manages dealer-to-store assignment rules. Notifications
// triggered here are best-effort: the Notifier swallows its own failures and
// never affects the outcome of the operation.
type AssignmentService struct {
	Assignments AssignmentStore
	Stores      StoreLookup
	Dealers     DealerLookup
	Notifier    Notifier
	Logger      zerolog.Logger

	Now func() time.Time
}

func NewAssignmentService(assignments AssignmentStore, stores StoreLookup, dealers DealerLookup, notifier Notifier, logger zerolog.Logger) *AssignmentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AssignmentService{
		Assignments: assignments,
		Stores:      stores,
		Dealers:     dealers,
		Notifier:    notifier,
		Logger:      logger,
		Now:         time.Now,
	}
}

type AssignmentInput struct {
	DealerID      int64
	StoreID       int64
	Type          string
	FrequencyDays *int
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
}

func (s *AssignmentService) Create(ctx context.Context, in AssignmentInput) (*models.Assignment, error) {
	dealer, store, err := s.validate(ctx, in, 0)
	if err != nil {
		return nil, err
	}

	created, err := s.Assignments.InsertAssignment(ctx, models.Assignment{
		DealerID:      in.DealerID,
		StoreID:       in.StoreID,
		Type:          in.Type,
		FrequencyDays: in.FrequencyDays,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsActive:      true,
		CreatedAt:     s.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info().
		Int64("assignment_id", created.ID).
		Int64("dealer_id", in.DealerID).
		Int64("store_id", in.StoreID).
		Str("type", in.Type).
		Msg("assignment created")

	s.notifyCreated(ctx, created, dealer, store)
	return created, nil
}

func (s *AssignmentService) Update(ctx context.Context, id int64, in AssignmentInput) (*models.Assignment, error) {
	existing, err := s.Assignments.FindAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, NotFound("assignment not found")
	}

	if _, _, err := s.validate(ctx, in, id); err != nil {
		return nil, err
	}

	existing.DealerID = in.DealerID
	existing.StoreID = in.StoreID
	existing.Type = in.Type
	existing.FrequencyDays = in.FrequencyDays
	existing.StartDate = in.StartDate
	existing.EndDate = in.EndDate
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}

	if err := s.Assignments.UpdateAssignment(ctx, *existing); err != nil {
		return nil, err
	}

	s.Logger.Info().Int64("assignment_id", id).Msg("assignment updated")
	return existing, nil
}

func (s *AssignmentService) ToggleActive(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.Assignments.FindAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, NotFound("assignment not found")
	}

	assignment.IsActive = !assignment.IsActive
	if err := s.Assignments.UpdateAssignment(ctx, *assignment); err != nil {
		return nil, err
	}

	s.Logger.Info().Int64("assignment_id", id).Bool("is_active", assignment.IsActive).Msg("assignment toggled")
	return assignment, nil
}

func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.Assignments.FindAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, NotFound("assignment not found")
	}
	return assignment, nil
}

// GetOwned fetches an assignment on behalf of a dealer; foreign assignments
// surface as Forbidden.
func (s *AssignmentService) GetOwned(ctx context.Context, dealerID, id int64) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.DealerID != dealerID {
		return nil, Forbidden("assignment belongs to another dealer")
	}
	return assignment, nil
}

func (s *AssignmentService) List(ctx context.Context, activeOnly bool) ([]models.Assignment, error) {
	return s.Assignments.ListAssignments(ctx, activeOnly)
}

func (s *AssignmentService) ListByDealer(ctx context.Context, dealerID int64) ([]models.Assignment, error) {
	return s.Assignments.FindActiveByDealer(ctx, dealerID)
}

func (s *AssignmentService) ListByStore(ctx context.Context, storeID int64) ([]models.Assignment, error) {
	return s.Assignments.ListAssignmentsByStore(ctx, storeID)
}

// validate runs the shared create/update rules and returns the resolved
// dealer and store. excludeID skips the assignment under update in the
// duplicate check.
func (s *AssignmentService) validate(ctx context.Context, in AssignmentInput, excludeID int64) (*models.Dealer, *models.Store, error) {
	dealer, err := s.Dealers.FindDealer(ctx, in.DealerID)
	if err != nil {
		return nil, nil, err
	}
	if dealer == nil {
		return nil, nil, NotFound("dealer not found")
	}
	if dealer.Role != models.RoleDealer {
		return nil, nil, PreconditionFailed("assignments can only target users with the DEALER role")
	}

	store, err := s.Stores.FindStore(ctx, in.StoreID)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, NotFound("store not found")
	}
	if !store.IsActive {
		return nil, nil, InvalidState("cannot assign a dealer to a deactivated store")
	}

	duplicate, err := s.Assignments.ExistsActiveDuplicate(ctx, in.DealerID, in.StoreID, excludeID)
	if err != nil {
		return nil, nil, err
	}
	if duplicate {
		return nil, nil, Conflict("an active assignment already exists for this dealer and store")
	}

	switch in.Type {
	case models.AssignmentPermanent:
		if in.FrequencyDays == nil || *in.FrequencyDays <= 0 {
			return nil, nil, PreconditionFailed("frequency in days is required for permanent assignments")
		}
	case models.AssignmentTemporary:
		if in.StartDate == nil {
			return nil, nil, PreconditionFailed("start date is required for temporary assignments")
		}
	default:
		return nil, nil, PreconditionFailed("invalid assignment type")
	}

	if in.StartDate != nil && in.EndDate != nil && DateOf(*in.EndDate).Before(DateOf(*in.StartDate)) {
		return nil, nil, PreconditionFailed("end date cannot precede start date")
	}

	return dealer, store, nil
}

func (s *AssignmentService) notifyCreated(ctx context.Context, a *models.Assignment, dealer *models.Dealer, store *models.Store) {
	refID := a.ID

	if a.Type == models.AssignmentTemporary {
		s.Notifier.Notify(ctx, dealer.ID, models.NotificationTempAssignmentCreated,
			"Nueva asignación temporal",
			fmt.Sprintf("Te han asignado temporalmente a la tienda %s", store.Name),
			&refID)

		admins, err := s.Dealers.ListAdmins(ctx)
		if err != nil {
			s.Logger.Error().Err(err).Msg("could not list admins for assignment notification")
			return
		}
		for _, admin := range admins {
			s.Notifier.Notify(ctx, admin.ID, models.NotificationTempAssignmentCreated,
				"Asignación temporal creada",
				fmt.Sprintf("Se ha creado una asignación temporal para el repartidor %s %s en la tienda %s",
					dealer.Name, dealer.LastName, store.Name),
				&refID)
		}
		return
	}

	s.Notifier.Notify(ctx, dealer.ID, models.NotificationTempAssignmentCreated,
		"Nueva asignación permanente",
		fmt.Sprintf("Te han asignado permanentemente a la tienda %s", store.Name),
		&refID)
}
