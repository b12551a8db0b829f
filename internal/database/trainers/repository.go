// Package trainers provides database operations for trainer management.
package trainers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

// Row is a trainer with the number of active clients assigned to them.
type Row struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ClientCount    int       `json:"client_count"`
}

// Repository handles all trainer database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all trainers with their active client counts, ordered by name.
func (r *Repository) List() ([]Row, error) {
	var rows []Row
	err := r.db.Table("trainers").
		Select("trainers.*, COUNT(DISTINCT clients.id) AS client_count").
		Joins("LEFT JOIN clients ON clients.trainer_id = trainers.id AND clients.membership_active = ?", true).
		Group("trainers.id").
		Order("trainers.full_name").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetByID(id uint) (*entities.Trainer, error) {
	var trainer entities.Trainer
	if err := r.db.First(&trainer, id).Error; err != nil {
		return nil, err
	}
	return &trainer, nil
}

func (r *Repository) Create(fullName, phone, specialization string) (*entities.Trainer, error) {
	trainer := &entities.Trainer{
		UUID:           uuid.NewString(),
		FullName:       fullName,
		Phone:          phone,
		Specialization: specialization,
	}
	if err := r.db.Create(trainer).Error; err != nil {
		return nil, err
	}
	return trainer, nil
}

func (r *Repository) Update(id uint, fullName, phone, specialization string) (*entities.Trainer, error) {
	var trainer entities.Trainer
	if err := r.db.First(&trainer, id).Error; err != nil {
		return nil, err
	}

	trainer.FullName = fullName
	trainer.Phone = phone
	trainer.Specialization = specialization
	if err := r.db.Save(&trainer).Error; err != nil {
		return nil, err
	}
	return &trainer, nil
}

// Delete removes a trainer. Clients referencing them keep their rows with
// trainer_id reset to NULL by the foreign key.
func (r *Repository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&entities.Trainer{}, id)
	return result.RowsAffected, result.Error
}
