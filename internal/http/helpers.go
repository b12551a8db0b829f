package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
// Messages are in Russian, matching what the dashboard displays verbatim.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a standard success response with a display message.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 response with a
// generic display message. The actual error is never exposed to the client.
func respondInternalError(c *gin.Context, err error, context, message string) {
	log.Printf("%s: %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// --- Success Response Helpers ---

// respondMessage sends a 200 OK response with a display message.
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns false on bad input.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "Некорректный идентификатор")
		return 0, false
	}
	return uint(id), true
}

// parseQueryUint reads an optional unsigned integer query parameter,
// returning the fallback when absent or malformed.
func parseQueryUint(c *gin.Context, name string, fallback uint) uint {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return uint(v)
}

// parseQueryInt reads an optional integer query parameter, returning the
// fallback when absent or malformed.
func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
