// Package clients provides database operations for the gym client roster.
package clients

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

// Row is a client joined with its assigned trainer, the shape every list
// and lookup endpoint returns.
type Row struct {
	ID                    uint      `json:"id"`
	UUID                  string    `json:"uuid"`
	FullName              string    `json:"full_name"`
	Phone                 string    `json:"phone"`
	RegistrationDate      string    `json:"registration_date"`
	Notes                 string    `json:"notes,omitempty"`
	MembershipActive      bool      `json:"membership_active"`
	MembershipEndDate     *string   `json:"membership_end_date"`
	TrainerID             *uint     `json:"trainer_id"`
	CreatedAt             time.Time `json:"created_at"`
	TrainerName           *string   `json:"trainer_name"`
	TrainerPhone          *string   `json:"trainer_phone,omitempty"`
	TrainerSpecialization *string   `json:"trainer_specialization"`
}

// CreateParams are the fields accepted when registering a client.
type CreateParams struct {
	FullName         string
	Phone            string
	RegistrationDate string
	Notes            string
}

// MembershipParams update the check-in gate fields on a client.
type MembershipParams struct {
	Active    bool
	EndDate   *string
	TrainerID *uint
}

// Repository handles all client database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined() *gorm.DB {
	return r.db.Table("clients").
		Select("clients.*, trainers.full_name AS trainer_name, trainers.phone AS trainer_phone, trainers.specialization AS trainer_specialization").
		Joins("LEFT JOIN trainers ON trainers.id = clients.trainer_id")
}

// List returns all clients with their trainer, ordered by name.
func (r *Repository) List() ([]Row, error) {
	var rows []Row
	err := r.joined().Order("clients.full_name").Scan(&rows).Error
	return rows, err
}

// GetByID retrieves one client with its trainer.
func (r *Repository) GetByID(id uint) (*Row, error) {
	var row Row
	err := r.joined().Where("clients.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByUUID retrieves a client by its QR-code payload.
func (r *Repository) GetByUUID(clientUUID string) (*Row, error) {
	var row Row
	err := r.joined().Where("clients.uuid = ?", clientUUID).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create registers a new client with a freshly generated QR UUID.
// RegistrationDate defaults to today when empty.
func (r *Repository) Create(params CreateParams) (*Row, error) {
	regDate := params.RegistrationDate
	if regDate == "" {
		regDate = time.Now().Format(entities.DateLayout)
	}

	client := &entities.Client{
		UUID:             uuid.NewString(),
		FullName:         params.FullName,
		Phone:            params.Phone,
		RegistrationDate: regDate,
		Notes:            params.Notes,
		MembershipActive: true,
	}
	if err := r.db.Create(client).Error; err != nil {
		return nil, err
	}
	return r.GetByID(client.ID)
}

// Update changes the editable profile fields of a client.
func (r *Repository) Update(id uint, fullName, phone, notes string) (*Row, error) {
	var client entities.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}

	client.FullName = fullName
	client.Phone = phone
	client.Notes = notes
	if err := r.db.Save(&client).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// UpdateMembership sets the membership gate fields and trainer assignment.
func (r *Repository) UpdateMembership(id uint, params MembershipParams) (*Row, error) {
	var client entities.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]any{
		"membership_active":   params.Active,
		"membership_end_date": params.EndDate,
		"trainer_id":          params.TrainerID,
	}
	if err := r.db.Model(&client).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a client. Visits, ledger rows and scheduled sessions go
// with it via foreign-key cascade; training history stays.
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&entities.Client{}, id)
	return result.RowsAffected, result.Error
}

// UUIDByID returns just the QR payload for a client, for QR rendering.
func (r *Repository) UUIDByID(id uint) (string, error) {
	var client entities.Client
	if err := r.db.Select("uuid").First(&client, id).Error; err != nil {
		return "", err
	}
	return client.UUID, nil
}

// DeactivateExpired flips MembershipActive off for every client whose end
// date is strictly before the given day. Run by the nightly maintenance
// task.
func (r *Repository) DeactivateExpired(today string) (int64, error) {
	result := r.db.Model(&entities.Client{}).
		Where("membership_active = ? AND membership_end_date IS NOT NULL AND membership_end_date < ?", true, today).
		Update("membership_active", false)
	return result.RowsAffected, result.Error
}
