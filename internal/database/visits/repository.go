// Package visits provides database operations for the attendance log.
// A visit with a null check-out is "open"; the check-in/check-out state
// machine in the HTTP layer toggles between inserting and closing rows.
package visits

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

// Row is a visit joined with client and trainer names.
type Row struct {
	ID              uint       `json:"id"`
	ClientID        uint       `json:"client_id"`
	CheckInAt       time.Time  `json:"check_in_at"`
	CheckOutAt      *time.Time `json:"check_out_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	ClientName      string     `json:"client_name"`
	ClientPhone     string     `json:"client_phone"`
	TrainerName     *string    `json:"trainer_name"`
}

// Filter narrows the visit listing; date bounds compare on the check-in
// day only. Limit defaults to 100.
type Filter struct {
	ClientID  uint
	StartDate string
	EndDate   string
	Limit     int
}

// Repository handles all visit database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined() *gorm.DB {
	return r.db.Table("visits").
		Select("visits.*, clients.full_name AS client_name, clients.phone AS client_phone, trainers.full_name AS trainer_name").
		Joins("JOIN clients ON clients.id = visits.client_id").
		Joins("LEFT JOIN trainers ON trainers.id = clients.trainer_id")
}

// List returns visits matching the filter, newest first.
func (r *Repository) List(f Filter) ([]Row, error) {
	query := r.joined()
	if f.ClientID != 0 {
		query = query.Where("visits.client_id = ?", f.ClientID)
	}
	if f.StartDate != "" {
		query = query.Where("DATE(visits.check_in_at) >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		query = query.Where("DATE(visits.check_in_at) <= ?", f.EndDate)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows []Row
	err := query.Order("visits.check_in_at DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// ListForClient returns one client's full attendance history, newest first.
func (r *Repository) ListForClient(clientID uint) ([]Row, error) {
	return r.List(Filter{ClientID: clientID, Limit: math.MaxInt32})
}

// FindOpen returns the client's open visit, or nil when there is none.
func (r *Repository) FindOpen(clientID uint) (*entities.Visit, error) {
	var visit entities.Visit
	err := r.db.
		Where("client_id = ? AND check_out_at IS NULL", clientID).
		Order("check_in_at DESC").
		First(&visit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// CheckIn opens a new visit at the given instant.
func (r *Repository) CheckIn(clientID uint, at time.Time) (*entities.Visit, error) {
	visit := &entities.Visit{
		ClientID:  clientID,
		CheckInAt: at,
	}
	if err := r.db.Create(visit).Error; err != nil {
		return nil, err
	}
	return visit, nil
}

// CheckOut closes an open visit, stamping the duration in whole minutes.
func (r *Repository) CheckOut(visit *entities.Visit, at time.Time) (*entities.Visit, error) {
	duration := DurationMinutes(visit.CheckInAt, at)
	visit.CheckOutAt = &at
	visit.DurationMinutes = &duration
	if err := r.db.Save(visit).Error; err != nil {
		return nil, err
	}
	return visit, nil
}

// GetRow returns a single visit joined with client and trainer names.
func (r *Repository) GetRow(id uint) (*Row, error) {
	var row Row
	err := r.joined().Where("visits.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&entities.Visit{}, id)
	return result.RowsAffected, result.Error
}

// CloseStale closes visits that were left open on a previous day, as if
// the client had checked out at the end of their check-in day. Run by the
// nightly maintenance task.
func (r *Repository) CloseStale(today string) (int64, error) {
	var stale []entities.Visit
	err := r.db.
		Where("check_out_at IS NULL AND DATE(check_in_at) < ?", today).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	var closed int64
	for i := range stale {
		visit := &stale[i]
		in := visit.CheckInAt
		endOfDay := time.Date(in.Year(), in.Month(), in.Day(), 23, 59, 59, 0, in.Location())
		if _, err := r.CheckOut(visit, endOfDay); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// DurationMinutes computes a stay length rounded to whole minutes.
func DurationMinutes(in, out time.Time) int {
	return int(math.Round(out.Sub(in).Minutes()))
}
