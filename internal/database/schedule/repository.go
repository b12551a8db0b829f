// Package schedule provides database operations for booked training
// sessions and their completion against the session-credit ledger.
//
// Completion runs as a single transaction: the status flip, the ledger
// decrement, the history insert and (at zero credits) the deactivation
// either all land or none do.
package schedule

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

var (
	// ErrNoRemainingSessions is returned when booking against a ledger row
	// that is missing or has no credits left.
	ErrNoRemainingSessions = errors.New("membership has no remaining sessions")
	// ErrAlreadyCompleted is returned when completing a session twice.
	ErrAlreadyCompleted = errors.New("training session already completed")
)

// Row is a scheduled session joined with client and ledger details.
type Row struct {
	ID                uint                    `json:"id"`
	ClientID          uint                    `json:"client_id"`
	MembershipID      uint                    `json:"membership_id"`
	ScheduledDate     string                  `json:"scheduled_date"`
	ScheduledTime     string                  `json:"scheduled_time"`
	DurationMinutes   int                     `json:"duration_minutes"`
	Status            entities.ScheduleStatus `json:"status"`
	CompletedDate     *string                 `json:"completed_date"`
	Notes             string                  `json:"notes,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	ClientName        string                  `json:"client_name"`
	ClientPhone       string                  `json:"client_phone"`
	TypeName          string                  `json:"type_name"`
	RemainingSessions int                     `json:"remaining_sessions"`
}

// HistoryRow is a completed-session audit entry with the client name.
type HistoryRow struct {
	ID              uint      `json:"id"`
	ClientID        uint      `json:"client_id"`
	MembershipID    uint      `json:"membership_id"`
	TrainingDate    string    `json:"training_date"`
	TrainingTime    string    `json:"training_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ClientName      string    `json:"client_name"`
}

// Filter narrows the schedule listing. Nil/empty fields are skipped; all
// values travel as bound parameters.
type Filter struct {
	StartDate string
	EndDate   string
	ClientID  uint
	Status    entities.ScheduleStatus
}

// CreateParams are the fields accepted when booking a session.
type CreateParams struct {
	ClientID        uint
	MembershipID    uint
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	Notes           string
}

// Repository handles schedule and training-history database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined() *gorm.DB {
	return r.db.Table("training_schedules").
		Select("training_schedules.*, clients.full_name AS client_name, clients.phone AS client_phone, membership_types.name AS type_name, client_memberships.remaining_sessions AS remaining_sessions").
		Joins("JOIN clients ON clients.id = training_schedules.client_id").
		Joins("JOIN client_memberships ON client_memberships.id = training_schedules.membership_id").
		Joins("JOIN membership_types ON membership_types.id = client_memberships.membership_type_id")
}

// List returns scheduled sessions matching the filter, in calendar order.
func (r *Repository) List(f Filter) ([]Row, error) {
	query := r.joined()
	if f.StartDate != "" {
		query = query.Where("training_schedules.scheduled_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		query = query.Where("training_schedules.scheduled_date <= ?", f.EndDate)
	}
	if f.ClientID != 0 {
		query = query.Where("training_schedules.client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		query = query.Where("training_schedules.status = ?", f.Status)
	}

	var rows []Row
	err := query.
		Order("training_schedules.scheduled_date ASC, training_schedules.scheduled_time ASC").
		Scan(&rows).Error
	return rows, err
}

// Create books a session against a ledger row. The row must exist and
// still hold credits; no credit is reserved or consumed until completion.
func (r *Repository) Create(params CreateParams) (*Row, error) {
	var membership entities.ClientMembership
	err := r.db.First(&membership, params.MembershipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRemainingSessions
	}
	if err != nil {
		return nil, err
	}
	if membership.RemainingSessions <= 0 {
		return nil, ErrNoRemainingSessions
	}

	duration := params.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	ts := &entities.TrainingSchedule{
		ClientID:        params.ClientID,
		MembershipID:    params.MembershipID,
		ScheduledDate:   params.ScheduledDate,
		ScheduledTime:   params.ScheduledTime,
		DurationMinutes: duration,
		Status:          entities.ScheduleStatusScheduled,
		Notes:           params.Notes,
	}
	if err := r.db.Create(ts).Error; err != nil {
		return nil, err
	}
	return r.getRow(ts.ID)
}

// Complete marks a session completed and settles the ledger in one
// transaction: status + completed_date, remaining_sessions - 1, one
// history row, and deactivation when the credits hit zero.
func (r *Repository) Complete(id uint, notes string) (*Row, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ts entities.TrainingSchedule
		if err := tx.First(&ts, id).Error; err != nil {
			return err
		}
		if ts.Status == entities.ScheduleStatusCompleted {
			return ErrAlreadyCompleted
		}

		if notes == "" {
			notes = ts.Notes
		}
		completedDate := time.Now().Format(entities.DateLayout)
		err := tx.Model(&ts).Updates(map[string]any{
			"status":         entities.ScheduleStatusCompleted,
			"completed_date": completedDate,
			"notes":          notes,
		}).Error
		if err != nil {
			return err
		}

		var membership entities.ClientMembership
		if err := tx.First(&membership, ts.MembershipID).Error; err != nil {
			return err
		}
		// The count floors at zero: sessions booked while credits remained
		// can still complete after the row drains.
		if membership.RemainingSessions > 0 {
			membership.RemainingSessions--
		}
		if membership.RemainingSessions <= 0 {
			membership.IsActive = false
		}
		if err := tx.Save(&membership).Error; err != nil {
			return err
		}

		history := &entities.TrainingHistory{
			ClientID:        ts.ClientID,
			MembershipID:    ts.MembershipID,
			TrainingDate:    ts.ScheduledDate,
			TrainingTime:    ts.ScheduledTime,
			DurationMinutes: ts.DurationMinutes,
			Notes:           notes,
		}
		return tx.Create(history).Error
	})
	if err != nil {
		return nil, err
	}
	return r.getRow(id)
}

// Cancel flips the status label. Credits are neither consumed nor
// refunded: none were reserved at booking time.
func (r *Repository) Cancel(id uint, notes string) (*Row, error) {
	var ts entities.TrainingSchedule
	if err := r.db.First(&ts, id).Error; err != nil {
		return nil, err
	}

	err := r.db.Model(&ts).Updates(map[string]any{
		"status": entities.ScheduleStatusCancelled,
		"notes":  notes,
	}).Error
	if err != nil {
		return nil, err
	}
	return r.getRow(id)
}

// Delete removes a session from the schedule entirely.
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&entities.TrainingSchedule{}, id)
	return result.RowsAffected, result.Error
}

// HistoryForClient returns the completed-session audit trail, newest first.
func (r *Repository) HistoryForClient(clientID uint) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := r.db.Table("training_histories").
		Select("training_histories.*, clients.full_name AS client_name").
		Joins("JOIN clients ON clients.id = training_histories.client_id").
		Where("training_histories.client_id = ?", clientID).
		Order("training_histories.training_date DESC, training_histories.training_time DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) getRow(id uint) (*Row, error) {
	var row Row
	err := r.joined().Where("training_schedules.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
