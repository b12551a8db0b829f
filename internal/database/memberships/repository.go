// Package memberships provides database operations for the membership-type
// catalog and the prepaid session-credit ledger.
package memberships

import (
	"time"

	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/entities"
)

// Row is a ledger entry joined with its catalog type and client.
type Row struct {
	ID                uint      `json:"id"`
	ClientID          uint      `json:"client_id"`
	MembershipTypeID  uint      `json:"membership_type_id"`
	PurchaseDate      string    `json:"purchase_date"`
	TotalSessions     int       `json:"total_sessions"`
	RemainingSessions int       `json:"remaining_sessions"`
	PricePaid         float64   `json:"price_paid"`
	Notes             string    `json:"notes,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	TypeName          string    `json:"type_name"`
	TypeSessions      int       `json:"type_sessions"`
	ClientName        string    `json:"client_name"`
	ClientPhone       string    `json:"client_phone,omitempty"`
}

// Repository handles catalog and ledger database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Catalog ---

// ListTypes returns active catalog entries ordered by session count.
func (r *Repository) ListTypes() ([]entities.MembershipType, error) {
	var types []entities.MembershipType
	err := r.db.Where("is_active = ?", true).Order("sessions_count ASC").Find(&types).Error
	return types, err
}

func (r *Repository) GetType(id uint) (*entities.MembershipType, error) {
	var mt entities.MembershipType
	if err := r.db.First(&mt, id).Error; err != nil {
		return nil, err
	}
	return &mt, nil
}

func (r *Repository) CreateType(name string, sessionsCount int, price float64, description string) (*entities.MembershipType, error) {
	mt := &entities.MembershipType{
		Name:          name,
		SessionsCount: sessionsCount,
		Price:         price,
		Description:   description,
		IsActive:      true,
	}
	if err := r.db.Create(mt).Error; err != nil {
		return nil, err
	}
	return mt, nil
}

func (r *Repository) UpdateType(id uint, name string, sessionsCount int, price float64, description string) (*entities.MembershipType, error) {
	var mt entities.MembershipType
	if err := r.db.First(&mt, id).Error; err != nil {
		return nil, err
	}

	mt.Name = name
	mt.SessionsCount = sessionsCount
	mt.Price = price
	mt.Description = description
	if err := r.db.Save(&mt).Error; err != nil {
		return nil, err
	}
	return &mt, nil
}

// DeactivateType soft-deletes a catalog entry. Ledger rows keep pointing
// at it.
func (r *Repository) DeactivateType(id uint) error {
	return r.db.Model(&entities.MembershipType{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// --- Ledger ---

func (r *Repository) joined() *gorm.DB {
	return r.db.Table("client_memberships").
		Select("client_memberships.*, membership_types.name AS type_name, membership_types.sessions_count AS type_sessions, clients.full_name AS client_name, clients.phone AS client_phone").
		Joins("JOIN membership_types ON membership_types.id = client_memberships.membership_type_id").
		Joins("JOIN clients ON clients.id = client_memberships.client_id")
}

// ListForClient returns a client's purchased ledger rows, newest first.
func (r *Repository) ListForClient(clientID uint) ([]Row, error) {
	var rows []Row
	err := r.joined().
		Where("client_memberships.client_id = ?", clientID).
		Order("client_memberships.purchase_date DESC").
		Scan(&rows).Error
	return rows, err
}

// ListActive returns ledger rows that are active and still hold credits.
func (r *Repository) ListActive() ([]Row, error) {
	var rows []Row
	err := r.joined().
		Where("client_memberships.is_active = ? AND client_memberships.remaining_sessions > 0", true).
		Order("client_memberships.purchase_date DESC").
		Scan(&rows).Error
	return rows, err
}

// Purchase creates a ledger row from a catalog entry, copying its session
// count into both total and remaining. Returns gorm.ErrRecordNotFound when
// the catalog id does not exist.
func (r *Repository) Purchase(clientID, membershipTypeID uint, pricePaid float64, notes string) (*Row, error) {
	mt, err := r.GetType(membershipTypeID)
	if err != nil {
		return nil, err
	}

	cm := &entities.ClientMembership{
		ClientID:          clientID,
		MembershipTypeID:  membershipTypeID,
		PurchaseDate:      time.Now().Format(entities.DateLayout),
		TotalSessions:     mt.SessionsCount,
		RemainingSessions: mt.SessionsCount,
		PricePaid:         pricePaid,
		Notes:             notes,
		IsActive:          true,
	}
	if err := r.db.Create(cm).Error; err != nil {
		return nil, err
	}

	var row Row
	if err := r.joined().Where("client_memberships.id = ?", cm.ID).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Deactivate soft-disables a ledger row without touching its credits.
func (r *Repository) Deactivate(id uint) error {
	return r.db.Model(&entities.ClientMembership{}).Where("id = ?", id).
		Update("is_active", false).Error
}
