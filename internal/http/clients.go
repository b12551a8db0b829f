package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/database/clients"
	"github.com/titangym/gymdesk/internal/qr"
)

// ClientStore is the subset of client repository operations the
// controller needs.
type ClientStore interface {
	List() ([]clients.Row, error)
	GetByID(id uint) (*clients.Row, error)
	GetByUUID(clientUUID string) (*clients.Row, error)
	Create(params clients.CreateParams) (*clients.Row, error)
	Update(id uint, fullName, phone, notes string) (*clients.Row, error)
	UpdateMembership(id uint, params clients.MembershipParams) (*clients.Row, error)
	Delete(id uint) (int64, error)
	UUIDByID(id uint) (string, error)
}

type ClientsController struct {
	store ClientStore
}

func NewClientsController(store ClientStore) *ClientsController {
	return &ClientsController{store: store}
}

// List handles GET /api/clients
func (controller *ClientsController) List(c *gin.Context) {
	rows, err := controller.store.List()
	if err != nil {
		respondInternalError(c, err, "Get clients error", "Ошибка получения списка клиентов")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Get handles GET /api/clients/:id
func (controller *ClientsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	row, err := controller.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Get client error", "Ошибка получения данных клиента")
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetByUUID handles GET /api/clients/uuid/:uuid, the public lookup the
// QR scanner uses before check-in.
func (controller *ClientsController) GetByUUID(c *gin.Context) {
	row, err := controller.store.GetByUUID(c.Param("uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Get client by UUID error", "Ошибка получения данных клиента")
		return
	}
	c.JSON(http.StatusOK, row)
}

type ClientRequest struct {
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	RegistrationDate string `json:"registration_date"`
	Notes            string `json:"notes"`
}

// Create handles POST /api/clients
func (controller *ClientsController) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}
	if req.FullName == "" || req.Phone == "" {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}

	row, err := controller.store.Create(clients.CreateParams{
		FullName:         req.FullName,
		Phone:            req.Phone,
		RegistrationDate: req.RegistrationDate,
		Notes:            req.Notes,
	})
	if err != nil {
		respondInternalError(c, err, "Create client error", "Ошибка создания клиента")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Update handles PUT /api/clients/:id
func (controller *ClientsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}
	if req.FullName == "" || req.Phone == "" {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}

	row, err := controller.store.Update(id, req.FullName, req.Phone, req.Notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Update client error", "Ошибка обновления клиента")
		return
	}
	c.JSON(http.StatusOK, row)
}

type ClientMembershipRequest struct {
	MembershipActive  bool    `json:"membership_active"`
	MembershipEndDate *string `json:"membership_end_date"`
	TrainerID         *uint   `json:"trainer_id"`
}

// UpdateMembership handles PUT /api/clients/:id/membership, setting the
// check-in gate fields and trainer assignment.
func (controller *ClientsController) UpdateMembership(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ClientMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректный запрос")
		return
	}

	row, err := controller.store.UpdateMembership(id, clients.MembershipParams{
		Active:    req.MembershipActive,
		EndDate:   req.MembershipEndDate,
		TrainerID: req.TrainerID,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Update client membership error", "Ошибка обновления клиента")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete handles DELETE /api/clients/:id. Visits, ledger rows and
// scheduled sessions cascade away with the client.
func (controller *ClientsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	affected, err := controller.store.Delete(id)
	if err != nil {
		respondInternalError(c, err, "Delete client error", "Ошибка удаления клиента")
		return
	}
	if affected == 0 {
		respondNotFound(c, "Клиент не найден")
		return
	}
	respondMessage(c, "Клиент успешно удалён")
}

// QRCode handles GET /api/clients/:id/qrcode, rendering the client's
// UUID as a PNG data URL for the membership card.
func (controller *ClientsController) QRCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	clientUUID, err := controller.store.UUIDByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Клиент не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Generate QR code error", "Ошибка генерации QR-кода")
		return
	}

	dataURL, err := qr.DataURL(clientUUID, qr.DefaultSize)
	if err != nil {
		respondInternalError(c, err, "Generate QR code error", "Ошибка генерации QR-кода")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qrCode": dataURL,
		"uuid":   clientUUID,
	})
}
