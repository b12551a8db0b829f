package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/database/trainers"
	"github.com/titangym/gymdesk/internal/entities"
)

// TrainerStore is the subset of trainer repository operations the
// controller needs.
type TrainerStore interface {
	List() ([]trainers.Row, error)
	GetByID(id uint) (*entities.Trainer, error)
	Create(fullName, phone, specialization string) (*entities.Trainer, error)
	Update(id uint, fullName, phone, specialization string) (*entities.Trainer, error)
	Delete(id uint) (int64, error)
}

type TrainersController struct {
	store TrainerStore
}

func NewTrainersController(store TrainerStore) *TrainersController {
	return &TrainersController{store: store}
}

// List handles GET /api/trainers, each row carrying its active-client
// count.
func (controller *TrainersController) List(c *gin.Context) {
	rows, err := controller.store.List()
	if err != nil {
		respondInternalError(c, err, "Get trainers error", "Ошибка получения списка тренеров")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Get handles GET /api/trainers/:id
func (controller *TrainersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	trainer, err := controller.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тренер не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Get trainer error", "Ошибка получения данных тренера")
		return
	}
	c.JSON(http.StatusOK, trainer)
}

type TrainerRequest struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
}

// Create handles POST /api/trainers
func (controller *TrainersController) Create(c *gin.Context) {
	var req TrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}
	if req.FullName == "" || req.Phone == "" {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}

	trainer, err := controller.store.Create(req.FullName, req.Phone, req.Specialization)
	if err != nil {
		respondInternalError(c, err, "Create trainer error", "Ошибка создания тренера")
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

// Update handles PUT /api/trainers/:id
func (controller *TrainersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}
	if req.FullName == "" || req.Phone == "" {
		respondBadRequest(c, "Укажите ФИО и телефон")
		return
	}

	trainer, err := controller.store.Update(id, req.FullName, req.Phone, req.Specialization)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Тренер не найден")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Update trainer error", "Ошибка обновления тренера")
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// Delete handles DELETE /api/trainers/:id. Clients keep their rows; the
// trainer reference is nulled by the foreign-key constraint.
func (controller *TrainersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	affected, err := controller.store.Delete(id)
	if err != nil {
		respondInternalError(c, err, "Delete trainer error", "Ошибка удаления тренера")
		return
	}
	if affected == 0 {
		respondNotFound(c, "Тренер не найден")
		return
	}
	respondMessage(c, "Тренер успешно удалён")
}
