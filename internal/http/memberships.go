package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/database/memberships"
	"github.com/titangym/gymdesk/internal/entities"
)

// MembershipStore covers the catalog and the session-credit ledger.
type MembershipStore interface {
	ListTypes() ([]entities.MembershipType, error)
	CreateType(name string, sessionsCount int, price float64, description string) (*entities.MembershipType, error)
	UpdateType(id uint, name string, sessionsCount int, price float64, description string) (*entities.MembershipType, error)
	DeactivateType(id uint) error
	ListForClient(clientID uint) ([]memberships.Row, error)
	ListActive() ([]memberships.Row, error)
	Purchase(clientID, membershipTypeID uint, pricePaid float64, notes string) (*memberships.Row, error)
	Deactivate(id uint) error
}

type MembershipsController struct {
	store MembershipStore
}

func NewMembershipsController(store MembershipStore) *MembershipsController {
	return &MembershipsController{store: store}
}

// ListTypes handles GET /api/memberships/types
func (controller *MembershipsController) ListTypes(c *gin.Context) {
	types, err := controller.store.ListTypes()
	if err != nil {
		respondInternalError(c, err, "Get membership types error", "Ошибка получения типов абонементов")
		return
	}
	c.JSON(http.StatusOK, types)
}

type MembershipTypeRequest struct {
	Name          string  `json:"name"`
	SessionsCount int     `json:"sessions_count"`
	Price         float64 `json:"price"`
	Description   string  `json:"description"`
}

// CreateType handles POST /api/memberships/types
func (controller *MembershipsController) CreateType(c *gin.Context) {
	var req MembershipTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}
	if req.Name == "" || req.SessionsCount <= 0 || req.Price <= 0 {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}

	mt, err := controller.store.CreateType(req.Name, req.SessionsCount, req.Price, req.Description)
	if err != nil {
		respondInternalError(c, err, "Create membership type error", "Ошибка создания типа абонемента")
		return
	}
	c.JSON(http.StatusCreated, mt)
}

// UpdateType handles PUT /api/memberships/types/:id
func (controller *MembershipsController) UpdateType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MembershipTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}

	mt, err := controller.store.UpdateType(id, req.Name, req.SessionsCount, req.Price, req.Description)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тип абонемента не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Update membership type error", "Ошибка обновления типа абонемента")
		return
	}
	c.JSON(http.StatusOK, mt)
}

// DeleteType handles DELETE /api/memberships/types/:id. The catalog row
// is only deactivated; sold ledger rows keep referencing it.
func (controller *MembershipsController) DeleteType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.DeactivateType(id); err != nil {
		respondInternalError(c, err, "Delete membership type error", "Ошибка удаления типа абонемента")
		return
	}
	respondMessage(c, "Тип абонемента удалён")
}

// ListForClient handles GET /api/memberships/client/:clientId
func (controller *MembershipsController) ListForClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	rows, err := controller.store.ListForClient(clientID)
	if err != nil {
		respondInternalError(c, err, "Get client memberships error", "Ошибка получения абонементов клиента")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListActive handles GET /api/memberships/active
func (controller *MembershipsController) ListActive(c *gin.Context) {
	rows, err := controller.store.ListActive()
	if err != nil {
		respondInternalError(c, err, "Get active memberships error", "Ошибка получения активных абонементов")
		return
	}
	c.JSON(http.StatusOK, rows)
}

type PurchaseRequest struct {
	ClientID         uint    `json:"client_id"`
	MembershipTypeID uint    `json:"membership_type_id"`
	PricePaid        float64 `json:"price_paid"`
	Notes            string  `json:"notes"`
}

// Purchase handles POST /api/memberships/purchase, creating a ledger row
// with the catalog's session count as both total and remaining credits.
func (controller *MembershipsController) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}
	if req.ClientID == 0 || req.MembershipTypeID == 0 || req.PricePaid <= 0 {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}

	row, err := controller.store.Purchase(req.ClientID, req.MembershipTypeID, req.PricePaid, req.Notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тип абонемента не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Purchase membership error", "Ошибка покупки абонемента")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Deactivate handles PUT /api/memberships/:id/deactivate
func (controller *MembershipsController) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.Deactivate(id); err != nil {
		respondInternalError(c, err, "Deactivate membership error", "Ошибка деактивации абонемента")
		return
	}
	respondMessage(c, "Абонемент деактивирован")
}
