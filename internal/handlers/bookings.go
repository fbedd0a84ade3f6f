package handlers

import (
	"net/http"

	"holidaze/internal/middleware"
	"holidaze/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать бронирование
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	booking, err := h.services.Bookings.Create(c.Request.Context(), sess.ID(), creds, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// DeleteBooking - DELETE /api/bookings/:id
// Отменить бронирование
func (h *Handlers) DeleteBooking(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()
	id := c.Param("id")

	bookings, err := h.services.Bookings.Delete(c.Request.Context(), sess.ID(), creds, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id, "bookings": bookings})
}

// Profile handlers

// GetProfile - GET /api/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	response, err := h.services.Profile.View(c.Request.Context(), sess.ID(), creds)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProfile - PUT /api/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var form models.ProfileForm
	if !bindJSON(c, &form) {
		return
	}

	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	profile, err := h.services.Profile.Update(c.Request.Context(), sess.ID(), creds, &form)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
