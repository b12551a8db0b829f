package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/database/clients"
	"github.com/titangym/gymdesk/internal/database/visits"
	"github.com/titangym/gymdesk/internal/entities"
)

// VisitStore covers the attendance log and the open-visit state machine.
type VisitStore interface {
	List(f visits.Filter) ([]visits.Row, error)
	ListForClient(clientID uint) ([]visits.Row, error)
	FindOpen(clientID uint) (*entities.Visit, error)
	CheckIn(clientID uint, at time.Time) (*entities.Visit, error)
	CheckOut(visit *entities.Visit, at time.Time) (*entities.Visit, error)
	GetRow(id uint) (*visits.Row, error)
	Delete(id uint) (int64, error)
}

// ClientLookup resolves the scanned QR payload to a client.
type ClientLookup interface {
	GetByUUID(clientUUID string) (*clients.Row, error)
}

type VisitsController struct {
	store   VisitStore
	clients ClientLookup
	now     func() time.Time
}

func NewVisitsController(store VisitStore, clientLookup ClientLookup) *VisitsController {
	return &VisitsController{
		store:   store,
		clients: clientLookup,
		now:     time.Now,
	}
}

// List handles GET /api/visits with optional client_id, start_date,
// end_date and limit filters.
func (controller *VisitsController) List(c *gin.Context) {
	filter := visits.Filter{
		ClientID:  parseQueryUint(c, "client_id", 0),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Limit:     parseQueryInt(c, "limit", 100),
	}

	rows, err := controller.store.List(filter)
	if err != nil {
		respondInternalError(c, err, "Get visits error", "Ошибка получения списка посещений")
		return
	}
	c.JSON(http.StatusOK, rows)
}

type CheckInRequest struct {
	UUID string `json:"uuid"`
}

// checkInClientView is the client block attached to scan responses.
type checkInClientView struct {
	ID                uint    `json:"id"`
	FullName          string  `json:"full_name"`
	Phone             string  `json:"phone"`
	MembershipActive  *bool   `json:"membership_active,omitempty"`
	MembershipEndDate *string `json:"membership_end_date,omitempty"`
	TrainerName       *string `json:"trainer_name,omitempty"`
}

// CheckIn handles POST /api/visits/checkin, the public QR scan endpoint.
// A scan either opens a visit, or closes the client's open one; the
// membership gate rejects inactive or expired members before any row is
// written.
func (controller *VisitsController) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UUID == "" {
		respondBadRequest(c, "UUID не указан")
		return
	}

	client, err := controller.clients.GetByUUID(req.UUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
		return
	}

	now := controller.now()
	today := now.Format(entities.DateLayout)

	if !client.MembershipActive {
		inactive := false
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Абонемент неактивен",
			"client": checkInClientView{
				ID:                client.ID,
				FullName:          client.FullName,
				Phone:             client.Phone,
				MembershipActive:  &inactive,
				MembershipEndDate: client.MembershipEndDate,
			},
		})
		return
	}

	// Date-only comparison: the membership is valid through the whole of
	// its end date.
	if client.MembershipEndDate != nil && *client.MembershipEndDate < today {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Срок действия абонемента истёк",
			"client": checkInClientView{
				ID:                client.ID,
				FullName:          client.FullName,
				Phone:             client.Phone,
				MembershipActive:  &client.MembershipActive,
				MembershipEndDate: client.MembershipEndDate,
			},
		})
		return
	}

	open, err := controller.store.FindOpen(client.ID)
	if err != nil {
		respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
		return
	}

	if open != nil {
		closed, err := controller.store.CheckOut(open, now)
		if err != nil {
			respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
			return
		}
		row, err := controller.store.GetRow(closed.ID)
		if err != nil {
			respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("До свидания, %s! Вы были в клубе %d минут", client.FullName, *closed.DurationMinutes),
			"action":  "checkout",
			"visit":   row,
			"client": checkInClientView{
				ID:          client.ID,
				FullName:    client.FullName,
				Phone:       client.Phone,
				TrainerName: client.TrainerName,
			},
		})
		return
	}

	visit, err := controller.store.CheckIn(client.ID, now)
	if err != nil {
		respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
		return
	}
	row, err := controller.store.GetRow(visit.ID)
	if err != nil {
		respondInternalError(c, err, "Check-in/out error", "Ошибка регистрации входа/выхода")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Добро пожаловать, %s!", client.FullName),
		"action":  "checkin",
		"visit":   row,
		"client": checkInClientView{
			ID:                client.ID,
			FullName:          client.FullName,
			Phone:             client.Phone,
			MembershipActive:  &client.MembershipActive,
			MembershipEndDate: client.MembershipEndDate,
			TrainerName:       client.TrainerName,
		},
	})
}

// ListForClient handles GET /api/visits/client/:clientId
func (controller *VisitsController) ListForClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	rows, err := controller.store.ListForClient(clientID)
	if err != nil {
		respondInternalError(c, err, "Get client visits error", "Ошибка получения истории посещений")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Delete handles DELETE /api/visits/:id
func (controller *VisitsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	affected, err := controller.store.Delete(id)
	if err != nil {
		respondInternalError(c, err, "Delete visit error", "Ошибка удаления посещения")
		return
	}
	if affected == 0 {
		respondNotFound(c, "Посещение не найдено")
		return
	}
	respondMessage(c, "Посещение успешно удалено")
}
