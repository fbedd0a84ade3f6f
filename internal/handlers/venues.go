package handlers

import (
	"net/http"

	"holidaze/internal/filter"
	"holidaze/internal/middleware"
	"holidaze/internal/models"

	"github.com/gin-gonic/gin"
)

// newVenueID is the editor path segment of the create form
const newVenueID = "new"

// Venues handlers

// ListVenues - GET /api/venues
// Newest venues first, one page at a time
func (h *Handlers) ListVenues(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if limit < 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	response, err := h.services.Venues.Page(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchVenues - GET /api/venues/search
// Full directory filtered by text, facilities and guest count
func (h *Handlers) SearchVenues(c *gin.Context) {
	criteria := filter.ParseQuery(c.Request.URL.Query())

	venues, err := h.services.Venues.Search(c.Request.Context(), criteria)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if venues == nil {
		venues = []models.Venue{}
	}

	c.JSON(http.StatusOK, gin.H{"venues": venues, "count": len(venues)})
}

// GetVenue - GET /api/venues/:id
func (h *Handlers) GetVenue(c *gin.Context) {
	creds, authenticated := middleware.Credentials(c)

	response, err := h.services.Venues.Details(c.Request.Context(), c.Param("id"), creds, authenticated)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// VenueCalendar - GET /api/venues/:id/calendar?from=&to=
func (h *Handlers) VenueCalendar(c *gin.Context) {
	days, err := h.services.Venues.Calendar(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// QuoteStay - POST /api/venues/:id/quote
func (h *Handlers) QuoteStay(c *gin.Context) {
	var req models.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.services.Venues.Quote(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// VenueEditor - GET /api/venues/:id/editor
// Opens the create (id "new") or edit form and reports whether the profile may use it
func (h *Handlers) VenueEditor(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	venueID := c.Param("id")
	if venueID == newVenueID {
		venueID = ""
	}

	status, err := h.services.Venues.OpenEditor(c.Request.Context(), sess.ID(), creds, venueID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := gin.H{"status": status}
	if status.Venue != nil {
		response["form"] = models.FormFromVenue(status.Venue)
	}
	c.JSON(http.StatusOK, response)
}

// CreateVenue - POST /api/venues
func (h *Handlers) CreateVenue(c *gin.Context) {
	var form models.VenueForm
	if !bindJSON(c, &form) {
		return
	}

	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	venue, status, err := h.services.Venues.Create(c.Request.Context(), sess.ID(), creds, &form)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"venue": venue, "status": status})
}

// UpdateVenue - PUT /api/venues/:id
func (h *Handlers) UpdateVenue(c *gin.Context) {
	var form models.VenueForm
	if !bindJSON(c, &form) {
		return
	}

	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()

	venue, status, err := h.services.Venues.Update(c.Request.Context(), sess.ID(), creds, c.Param("id"), &form)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.services.Profile.VenueSaved(sess.ID(), creds.ProfileName, venue)

	c.JSON(http.StatusOK, gin.H{"venue": venue, "status": status})
}

// DeleteVenue - DELETE /api/venues/:id
func (h *Handlers) DeleteVenue(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	creds, _ := sess.Credentials()
	id := c.Param("id")

	if err := h.services.Venues.Delete(c.Request.Context(), creds, id); err != nil {
		h.respondError(c, err)
		return
	}
	venues := h.services.Profile.VenueRemoved(sess.ID(), creds.ProfileName, id)

	c.JSON(http.StatusOK, gin.H{"deleted": id, "venues": venues})
}
