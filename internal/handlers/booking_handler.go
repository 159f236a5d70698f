package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giglink_backend/internal/middleware"
	"giglink_backend/internal/models"
	"giglink_backend/internal/services"
	"giglink_backend/internal/services/dto"
)

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
}

func NewBookingHandler(base *BaseHandler, bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
	}
}

func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware())
	{
		client := bookings.Group("")
		client.Use(middleware.RoleMiddleware(models.UserRoleClient))
		{
			client.POST("", h.CreateBooking)
			client.GET("/client", h.ListForClient)
			client.POST("/:bookingId/rate/client", h.RateAsClient)
		}

		professional := bookings.Group("")
		professional.Use(middleware.RoleMiddleware(models.UserRoleProfessional))
		{
			professional.GET("/professional", h.ListForProfessional)
			professional.POST("/:bookingId/status", h.RespondBooking)
			professional.POST("/:bookingId/complete", h.CompleteBooking)
			professional.POST("/:bookingId/rate/professional", h.RateAsProfessional)
		}
	}
}

// CreateBooking handles POST /bookings (client only).
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// ListForClient handles GET /bookings/client.
func (h *BookingHandler) ListForClient(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	response, err := h.bookingService.ListForClient(actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListForProfessional handles GET /bookings/professional.
func (h *BookingHandler) ListForProfessional(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	response, err := h.bookingService.ListForProfessional(actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RespondBooking handles POST /bookings/:bookingId/status (accept/reject).
func (h *BookingHandler) RespondBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.RespondBookingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Respond(actor, c.Param("bookingId"), models.BookingStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CompleteBooking handles POST /bookings/:bookingId/complete. Idempotent.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Complete(actor, c.Param("bookingId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// RateAsClient handles POST /bookings/:bookingId/rate/client.
func (h *BookingHandler) RateAsClient(c *gin.Context) {
	h.rate(c, func(actor services.Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error) {
		return h.bookingService.RateAsClient(actor, bookingID, rating)
	})
}

// RateAsProfessional handles POST /bookings/:bookingId/rate/professional.
func (h *BookingHandler) RateAsProfessional(c *gin.Context) {
	h.rate(c, func(actor services.Actor, bookingID string, rating int) (*dto.BookingResponse, *dto.UserRatingResponse, error) {
		return h.bookingService.RateAsProfessional(actor, bookingID, rating)
	})
}

func (h *BookingHandler) rate(
	c *gin.Context,
	fn func(services.Actor, string, int) (*dto.BookingResponse, *dto.UserRatingResponse, error),
) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.RateBookingRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	booking, userRating, err := fn(actor, c.Param("bookingId"), req.Rating)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":             booking,
		"updated_user_rating": userRating,
	})
}
