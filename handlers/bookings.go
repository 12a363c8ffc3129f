package handlers

import (
	"net/http"
	"strconv"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves read-through scrapes of the portal's booking pages.
type BookingHandler struct {
	scraper portal.Scraper
}

func NewBookingHandler(scraper portal.Scraper) *BookingHandler {
	return &BookingHandler{scraper: scraper}
}

// ListBookingsHandler scrapes the booking list, bounded by maxPages.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	maxPages, _ := strconv.Atoi(c.Query("maxPages"))

	result, err := h.scraper.FetchAllBookings(c.Request.Context(), maxPages)
	if err != nil {
		respondPortalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"totalCount": result.TotalCount,
		"bookings":   result.Bookings,
	})
}

// BookingDetailHandler scrapes one booking's detail page.
func (h *BookingHandler) BookingDetailHandler(c *gin.Context) {
	externalID := c.Param("id")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id is required"})
		return
	}

	detail, err := h.scraper.FetchBookingDetail(c.Request.Context(), externalID)
	if err != nil {
		respondPortalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "detail": detail})
}
