package service

import (
	"context"
	"time"

	"github.com/fieldroute/backend/internal/models"
)

// Collaborator contracts the services need from the persistence layer.
// db.Store satisfies all of them; tests plug in in-memory fakes.

type AssignmentStore interface {
	FindAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	FindActiveByDealer(ctx context.Context, dealerID int64) ([]models.Assignment, error)
	FindActiveByDealerAndStore(ctx context.Context, dealerID, storeID int64) ([]models.Assignment, error)
	// ExistsActiveDuplicate reports whether another active assignment binds
	// the same dealer and store. excludeID skips the assignment being
	// updated; pass 0 on create.
	ExistsActiveDuplicate(ctx context.Context, dealerID, storeID, excludeID int64) (bool, error)
	InsertAssignment(ctx context.Context, a models.Assignment) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, a models.Assignment) error
	ListAssignments(ctx context.Context, activeOnly bool) ([]models.Assignment, error)
	ListAssignmentsByStore(ctx context.Context, storeID int64) ([]models.Assignment, error)
}

type VisitStore interface {
	FindVisit(ctx context.Context, id int64) (*models.Visit, error)
	FindByDealerAndDate(ctx context.Context, dealerID int64, date time.Time) ([]models.Visit, error)
	FindByStoreAndDate(ctx context.Context, storeID int64, date time.Time) ([]models.Visit, error)
	FindOpenByDealer(ctx context.Context, dealerID int64) ([]models.Visit, error)
	// HasOpenCheckedInVisit reports whether the dealer has a CHECKED_IN
	// visit without checkout for the store.
	HasOpenCheckedInVisit(ctx context.Context, dealerID, storeID int64) (bool, error)
	// FindPlannedByQRAndDealer returns the dealer's PLANNED visits for the
	// store identified by QR code on the given date, oldest first.
	FindPlannedByQRAndDealer(ctx context.Context, qrCode string, dealerID int64, date time.Time) ([]models.Visit, error)
	FindByDealerStoreDateStatus(ctx context.Context, dealerID, storeID int64, date time.Time, status string) (*models.Visit, error)
	InsertVisit(ctx context.Context, v models.Visit) (*models.Visit, error)
	UpdateVisit(ctx context.Context, v models.Visit) error
	DeleteVisit(ctx context.Context, id int64) error
	ListVisits(ctx context.Context) ([]models.Visit, error)
	FilterVisits(ctx context.Context, f VisitFilter) ([]models.Visit, error)
}

// VisitFilter narrows the admin visit listing. Nil fields are ignored.
type VisitFilter struct {
	DealerID  *int64
	StoreID   *int64
	Status    *string
	StartDate *time.Time
	EndDate   *time.Time
}

type StoreLookup interface {
	FindStore(ctx context.Context, id int64) (*models.Store, error)
	FindStoreByQR(ctx context.Context, qrCode string) (*models.Store, error)
}

type DealerLookup interface {
	FindDealer(ctx context.Context, id int64) (*models.Dealer, error)
	ListAdmins(ctx context.Context) ([]models.Dealer, error)
}

// Notifier is the best-effort side channel. Implementations must swallow
// their own failures; callers never learn about them.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notifType, title, message string, referenceID *int64)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, int64, string, string, string, *int64) {}
