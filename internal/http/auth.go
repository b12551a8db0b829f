package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titangym/gymdesk/internal/auth"
	"github.com/titangym/gymdesk/internal/entities"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminView is the admin payload returned by login and credential changes.
type AdminView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

func adminView(admin *entities.Admin) AdminView {
	return AdminView{
		ID:       admin.ID,
		Username: admin.Username,
		FullName: admin.FullName,
	}
}

// Login handles POST /api/auth/login
func (controller *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Укажите логин и пароль")
		return
	}

	token, admin, err := controller.service.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		respondBadRequest(c, "Укажите логин и пароль")
		return
	case errors.Is(err, auth.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Неверный логин или пароль"})
		return
	case err != nil:
		respondInternalError(c, err, "Login error", "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": adminView(admin),
	})
}

type ChangeCredentialsRequest struct {
	CurrentPassword string `json:"current_password"`
	NewUsername     string `json:"new_username"`
	NewPassword     string `json:"new_password"`
}

// ChangeCredentials handles POST /api/auth/change-credentials
func (controller *AuthController) ChangeCredentials(c *gin.Context) {
	var req ChangeCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Некорректный запрос")
		return
	}

	adminID := auth.AdminID(c)
	admin, err := controller.service.ChangeCredentials(adminID, req.CurrentPassword, req.NewUsername, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrNothingToChange):
		respondBadRequest(c, "Укажите новый логин или пароль")
		return
	case errors.Is(err, auth.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Неверный текущий пароль"})
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		respondBadRequest(c, "Логин уже занят")
		return
	case errors.Is(err, auth.ErrPasswordTooShort):
		respondBadRequest(c, "Пароль слишком короткий")
		return
	case err != nil:
		respondInternalError(c, err, "Change credentials error", "Ошибка сервера")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Учётные данные обновлены",
		"admin":   adminView(admin),
	})
}
