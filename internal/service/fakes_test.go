package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fieldroute/backend/internal/models"
)

// In-memory fakes for the persistence ports. Thread-safe so the
// concurrency tests can hammer them from multiple goroutines.

type fakeVisitStore struct {
	mu     sync.Mutex
	nextID int64
	visits []models.Visit

	// qr maps QR codes to store ids so FindPlannedByQRAndDealer can
	// resolve the store without a real join.
	qr map[string]int64

	failInsert    bool
	failDeleteIDs map[int64]bool
	deleted       []int64
}

func newFakeVisitStore() *fakeVisitStore {
	return &fakeVisitStore{nextID: 1}
}

func (f *fakeVisitStore) add(v models.Visit) models.Visit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == 0 {
		v.ID = f.nextID
		f.nextID++
	} else if v.ID >= f.nextID {
		f.nextID = v.ID + 1
	}
	f.visits = append(f.visits, v)
	return v
}

func (f *fakeVisitStore) FindVisit(ctx context.Context, id int64) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.visits {
		if f.visits[i].ID == id {
			v := f.visits[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitStore) FindByDealerAndDate(ctx context.Context, dealerID int64, date time.Time) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Visit
	for _, v := range f.visits {
		if v.DealerID == dealerID && DateOf(v.VisitDate).Equal(DateOf(date)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitStore) FindByStoreAndDate(ctx context.Context, storeID int64, date time.Time) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Visit
	for _, v := range f.visits {
		if v.StoreID == storeID && DateOf(v.VisitDate).Equal(DateOf(date)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitStore) FindOpenByDealer(ctx context.Context, dealerID int64) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Visit
	for _, v := range f.visits {
		if v.DealerID == dealerID && v.CheckOutAt == nil &&
			(v.Status == models.VisitPlanned || v.Status == models.VisitCheckedIn) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitStore) HasOpenCheckedInVisit(ctx context.Context, dealerID, storeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.visits {
		if v.DealerID == dealerID && v.StoreID == storeID && v.Status == models.VisitCheckedIn && v.CheckOutAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVisitStore) mapQR(qrCode string, storeID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.qr == nil {
		f.qr = map[string]int64{}
	}
	f.qr[qrCode] = storeID
}

func (f *fakeVisitStore) FindPlannedByQRAndDealer(ctx context.Context, qrCode string, dealerID int64, date time.Time) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	storeID, ok := f.qr[qrCode]
	if !ok {
		return nil, nil
	}
	var out []models.Visit
	for _, v := range f.visits {
		if v.DealerID == dealerID && v.StoreID == storeID && v.Status == models.VisitPlanned && DateOf(v.VisitDate).Equal(DateOf(date)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitStore) FindByDealerStoreDateStatus(ctx context.Context, dealerID, storeID int64, date time.Time, status string) (*models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.visits {
		v := f.visits[i]
		if v.DealerID == dealerID && v.StoreID == storeID && v.Status == status && DateOf(v.VisitDate).Equal(DateOf(date)) {
			return &v, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitStore) InsertVisit(ctx context.Context, v models.Visit) (*models.Visit, error) {
	f.mu.Lock()
	if f.failInsert {
		f.mu.Unlock()
		return nil, errors.New("insert rejected")
	}
	f.mu.Unlock()
	created := f.add(v)
	return &created, nil
}

func (f *fakeVisitStore) UpdateVisit(ctx context.Context, v models.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.visits {
		if f.visits[i].ID == v.ID {
			f.visits[i] = v
			return nil
		}
	}
	return errors.New("visit not found")
}

func (f *fakeVisitStore) DeleteVisit(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteIDs[id] {
		return errors.New("delete rejected")
	}
	for i := range f.visits {
		if f.visits[i].ID == id {
			f.visits = append(f.visits[:i], f.visits[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("visit not found")
}

func (f *fakeVisitStore) ListVisits(ctx context.Context) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Visit, len(f.visits))
	copy(out, f.visits)
	return out, nil
}

func (f *fakeVisitStore) FilterVisits(ctx context.Context, filter VisitFilter) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Visit
	for _, v := range f.visits {
		if filter.DealerID != nil && v.DealerID != *filter.DealerID {
			continue
		}
		if filter.StoreID != nil && v.StoreID != *filter.StoreID {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.StartDate != nil && DateOf(v.VisitDate).Before(DateOf(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && DateOf(v.VisitDate).After(DateOf(*filter.EndDate)) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type fakeAssignmentStore struct {
	mu          sync.Mutex
	nextID      int64
	assignments []models.Assignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{nextID: 1}
}

func (f *fakeAssignmentStore) add(a models.Assignment) models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		a.ID = f.nextID
		f.nextID++
	} else if a.ID >= f.nextID {
		f.nextID = a.ID + 1
	}
	f.assignments = append(f.assignments, a)
	return a
}

func (f *fakeAssignmentStore) FindAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			a := f.assignments[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignmentStore) FindActiveByDealer(ctx context.Context, dealerID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.DealerID == dealerID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) FindActiveByDealerAndStore(ctx context.Context, dealerID, storeID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.DealerID == dealerID && a.StoreID == storeID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) ExistsActiveDuplicate(ctx context.Context, dealerID, storeID, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.ID != excludeID && a.DealerID == dealerID && a.StoreID == storeID && a.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignmentStore) InsertAssignment(ctx context.Context, a models.Assignment) (*models.Assignment, error) {
	created := f.add(a)
	return &created, nil
}

func (f *fakeAssignmentStore) UpdateAssignment(ctx context.Context, a models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.assignments {
		if f.assignments[i].ID == a.ID {
			f.assignments[i] = a
			return nil
		}
	}
	return errors.New("assignment not found")
}

func (f *fakeAssignmentStore) ListAssignments(ctx context.Context, activeOnly bool) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListAssignmentsByStore(ctx context.Context, storeID int64) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.assignments {
		if a.StoreID == storeID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	mu      sync.Mutex
	stores  map[int64]models.Store
	dealers map[int64]models.Dealer
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stores:  map[int64]models.Store{},
		dealers: map[int64]models.Dealer{},
	}
}

func (f *fakeCatalog) addStore(s models.Store) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores[s.ID] = s
}

func (f *fakeCatalog) addDealer(d models.Dealer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dealers[d.ID] = d
}

func (f *fakeCatalog) FindStore(ctx context.Context, id int64) (*models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeCatalog) FindStoreByQR(ctx context.Context, qrCode string) (*models.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.stores {
		if s.QRCode == qrCode {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) FindDealer(ctx context.Context, id int64) (*models.Dealer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.dealers[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListAdmins(ctx context.Context) ([]models.Dealer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Dealer
	for _, d := range f.dealers {
		if d.Role == models.RoleAdmin {
			out = append(out, d)
		}
	}
	return out, nil
}

type recordedNotification struct {
	UserID      int64
	Type        string
	Title       string
	Message     string
	ReferenceID *int64
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (f *fakeNotifier) Notify(ctx context.Context, userID int64, notifType, title, message string, referenceID *int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recordedNotification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	})
}
