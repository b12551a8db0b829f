package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/database/schedule"
	"github.com/titangym/gymdesk/internal/entities"
)

// ScheduleStore covers booked sessions and the completion history.
type ScheduleStore interface {
	List(f schedule.Filter) ([]schedule.Row, error)
	Create(params schedule.CreateParams) (*schedule.Row, error)
	Complete(id uint, notes string) (*schedule.Row, error)
	Cancel(id uint, notes string) (*schedule.Row, error)
	Delete(id uint) (int64, error)
	HistoryForClient(clientID uint) ([]schedule.HistoryRow, error)
}

type ScheduleController struct {
	store ScheduleStore
}

func NewScheduleController(store ScheduleStore) *ScheduleController {
	return &ScheduleController{store: store}
}

// List handles GET /api/schedule with optional start_date, end_date,
// client_id and status filters.
func (controller *ScheduleController) List(c *gin.Context) {
	filter := schedule.Filter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		ClientID:  parseQueryUint(c, "client_id", 0),
		Status:    entities.ScheduleStatus(c.Query("status")),
	}

	rows, err := controller.store.List(filter)
	if err != nil {
		respondInternalError(c, err, "Get schedule error", "Ошибка получения расписания")
		return
	}
	c.JSON(http.StatusOK, rows)
}

type ScheduleRequest struct {
	ClientID        uint   `json:"client_id"`
	MembershipID    uint   `json:"membership_id"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

// Create handles POST /api/schedule. Booking requires a ledger row that
// still holds credits, but consumes none until completion.
func (controller *ScheduleController) Create(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}
	if req.ClientID == 0 || req.MembershipID == 0 || req.ScheduledDate == "" || req.ScheduledTime == "" {
		respondBadRequest(c, "Заполните все обязательные поля")
		return
	}

	row, err := controller.store.Create(schedule.CreateParams{
		ClientID:        req.ClientID,
		MembershipID:    req.MembershipID,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if errors.Is(err, schedule.ErrNoRemainingSessions) {
		respondBadRequest(c, "У абонемента нет оставшихся тренировок")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Create training error", "Ошибка создания тренировки")
		return
	}
	c.JSON(http.StatusCreated, row)
}

type ScheduleNotesRequest struct {
	Notes string `json:"notes"`
}

// Complete handles PUT /api/schedule/:id/complete. The status flip, the
// credit decrement and the history insert land in one transaction.
func (controller *ScheduleController) Complete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ScheduleNotesRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	row, err := controller.store.Complete(id, req.Notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тренировка не найдена")
		return
	}
	if errors.Is(err, schedule.ErrAlreadyCompleted) {
		respondBadRequest(c, "Тренировка уже отмечена как выполненная")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Complete training error", "Ошибка отметки тренировки")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Cancel handles PUT /api/schedule/:id/cancel. No credits move: none
// were consumed at booking time.
func (controller *ScheduleController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ScheduleNotesRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	row, err := controller.store.Cancel(id, req.Notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тренировка не найдена")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Cancel training error", "Ошибка отмены тренировки")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete handles DELETE /api/schedule/:id
func (controller *ScheduleController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	affected, err := controller.store.Delete(id)
	if err != nil {
		respondInternalError(c, err, "Delete training error", "Ошибка удаления тренировки")
		return
	}
	if affected == 0 {
		respondNotFound(c, "Тренировка не найдена")
		return
	}
	respondMessage(c, "Тренировка удалена из расписания")
}

// History handles GET /api/schedule/history/:clientId
func (controller *ScheduleController) History(c *gin.Context) {
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	rows, err := controller.store.HistoryForClient(clientID)
	if err != nil {
		respondInternalError(c, err, "Get training history error", "Ошибка получения истории тренировок")
		return
	}
	c.JSON(http.StatusOK, rows)
}
