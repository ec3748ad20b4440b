package models

import "time"

// Assignment types.
const (
	AssignmentPermanent = "PERMANENT"
	AssignmentTemporary = "TEMPORARY"
)

// Visit statuses. PLANNED is the initial state; COMPLETED and SKIPPED are
// terminal.
const (
	VisitPlanned   = "PLANNED"
	VisitCheckedIn = "CHECKED_IN"
	VisitCompleted = "COMPLETED"
	VisitSkipped   = "SKIPPED"
)

// Visit origins.
const (
	OriginOffline       = "OFFLINE"
	OriginOnline        = "ONLINE"
	OriginAutoGenerated = "AUTO_GENERATED"
)

// User roles.
const (
	RoleDealer = "DEALER"
	RoleAdmin  = "ADMIN"
)

// Notification types.
const (
	NotificationTempAssignmentCreated = "TEMP_ASSIGNMENT_CREATED"
)

type Assignment struct {
	ID            int64      `json:"id"`
	DealerID      int64      `json:"dealer_id"`
	StoreID       int64      `json:"store_id"`
	Type          string     `json:"type"`
	FrequencyDays *int       `json:"frequency_days,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Visit struct {
	ID            int64      `json:"id"`
	DealerID      int64      `json:"dealer_id"`
	StoreID       int64      `json:"store_id"`
	AssignmentID  *int64     `json:"assignment_id,omitempty"`
	Status        string     `json:"status"`
	Origin        string     `json:"origin"`
	VisitDate     time.Time  `json:"visit_date"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	CheckInAt     *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt    *time.Time `json:"check_out_at,omitempty"`
	CheckInLat    *float64   `json:"check_in_lat,omitempty"`
	CheckInLng    *float64   `json:"check_in_lng,omitempty"`
	CheckOutLat   *float64   `json:"check_out_lat,omitempty"`
	CheckOutLng   *float64   `json:"check_out_lng,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type Store struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	QRCode    string     `json:"qr_code"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Dealer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	PushToken string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ReferenceID *int64    `json:"reference_id,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
