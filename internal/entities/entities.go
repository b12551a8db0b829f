package entities

import (
	"time"
)

// DateLayout is the wire format for date-only fields (registration dates,
// membership end dates, scheduled dates). Time-of-day is stored separately
// where the domain needs it.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for time-of-day fields.
const TimeLayout = "15:04"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// Admin is a dashboard administrator account. One is seeded at first
// startup; rows are updated via credential change but never deleted.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	FullName     string    `gorm:"size:256" json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type Trainer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UUID           string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	FullName       string    `gorm:"index;size:256" json:"full_name"`
	Phone          string    `gorm:"size:32" json:"phone"`
	Specialization string    `gorm:"size:256" json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Client is a gym member. UUID is the QR-code payload scanned at the
// entrance. MembershipActive and MembershipEndDate gate check-in;
// prepaid session credits live in ClientMembership rows.
type Client struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UUID              string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	FullName          string    `gorm:"index;size:256" json:"full_name"`
	Phone             string    `gorm:"size:32" json:"phone"`
	RegistrationDate  string    `gorm:"size:10" json:"registration_date"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	MembershipActive  bool      `gorm:"default:true" json:"membership_active"`
	MembershipEndDate *string   `gorm:"size:10" json:"membership_end_date"`
	TrainerID         *uint     `gorm:"index" json:"trainer_id"`
	CreatedAt         time.Time `json:"created_at"`

	Trainer     *Trainer           `gorm:"foreignKey:TrainerID;constraint:OnDelete:SET NULL" json:"-"`
	Visits      []Visit            `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Memberships []ClientMembership `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions    []TrainingSchedule `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

// MembershipType is a catalog entry. Deletion is soft: the row stays for
// ledger rows that reference it, only IsActive flips.
type MembershipType struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:256" json:"name"`
	SessionsCount int       `json:"sessions_count"`
	Price         float64   `json:"price"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClientMembership is one purchased batch of session credits.
// RemainingSessions is decremented exactly once per completed scheduled
// session; the row is soft-deactivated when it reaches zero.
// Invariant: 0 <= RemainingSessions <= TotalSessions.
type ClientMembership struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ClientID          uint      `gorm:"index" json:"client_id"`
	MembershipTypeID  uint      `gorm:"index" json:"membership_type_id"`
	PurchaseDate      string    `gorm:"size:10" json:"purchase_date"`
	TotalSessions     int       `json:"total_sessions"`
	RemainingSessions int       `json:"remaining_sessions"`
	PricePaid         float64   `json:"price_paid"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`

	MembershipType MembershipType     `gorm:"foreignKey:MembershipTypeID" json:"-"`
	Sessions       []TrainingSchedule `gorm:"foreignKey:MembershipID;constraint:OnDelete:CASCADE" json:"-"`
}

// TrainingSchedule is a booked session backed by a specific ledger row.
// Completion is a one-way transition stamped with CompletedDate.
type TrainingSchedule struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ClientID        uint           `gorm:"index" json:"client_id"`
	MembershipID    uint           `gorm:"index" json:"membership_id"`
	ScheduledDate   string         `gorm:"index;size:10" json:"scheduled_date"`
	ScheduledTime   string         `gorm:"size:5" json:"scheduled_time"`
	DurationMinutes int            `gorm:"default:60" json:"duration_minutes"`
	Status          ScheduleStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	CompletedDate   *string        `gorm:"size:10" json:"completed_date"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// TrainingHistory is the append-only audit of completed sessions, written
// exactly once per completion and used only for reporting. MembershipID is
// a plain column on purpose: history must survive deletion of the client
// and of the ledger row it points at.
type TrainingHistory struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ClientID        uint      `gorm:"index" json:"client_id"`
	MembershipID    uint      `gorm:"index" json:"membership_id"`
	TrainingDate    string    `gorm:"index;size:10" json:"training_date"`
	TrainingTime    string    `gorm:"size:5" json:"training_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Visit is one gym attendance. A null CheckOutAt marks an open visit; the
// next scan of the same client closes it and stamps the duration.
type Visit struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ClientID        uint       `gorm:"index" json:"client_id"`
	CheckInAt       time.Time  `gorm:"index" json:"check_in_at"`
	CheckOutAt      *time.Time `json:"check_out_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Open reports whether the visit has no check-out yet.
func (v *Visit) Open() bool {
	return v.CheckOutAt == nil
}
