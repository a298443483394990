package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/booking"
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"
)

// AppointmentHandler handles patient-side appointment requests.
type AppointmentHandler struct {
	DB      *gorm.DB
	Booking *booking.Service
	Log     *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, svc *booking.Service, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Booking: svc, Log: log}
}

// bookingError maps a classified booking failure onto the HTTP
// envelope; anything unclassified becomes a logged 500.
func bookingError(c *gin.Context, log *zap.Logger, err error) {
	if be, ok := booking.AsError(err); ok {
		switch be.Code {
		case booking.CodeNotFound:
			utils.NotFound(c, be.Message)
		case booking.CodeForbidden:
			utils.Forbidden(c, be.Message)
		default: // invalid and conflict both answer 400
			utils.BadRequest(c, be.Message)
		}
		return
	}
	log.Error("booking operation failed", zap.Error(err))
	utils.InternalServerError(c, "Something went wrong")
}

// BookAppointmentRequest represents the request body for booking.
type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Symptoms string `json:"symptoms" binding:"max=500"`
	Duration int    `json:"duration" binding:"omitempty,min=15,max=120"`
}

// BookAppointment handles creating a new appointment for the
// authenticated patient.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Booking.Book(userID, booking.BookInput{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Time:     req.Time,
		Symptoms: req.Symptoms,
		Duration: req.Duration,
	})
	if err != nil {
		bookingError(c, h.Log, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// CheckAvailabilityRequest represents a read-only slot probe.
type CheckAvailabilityRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

// CheckAvailability reports whether a slot is free.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	available, err := h.Booking.CheckAvailability(req.DoctorID, req.Date, req.Time)
	if err != nil {
		bookingError(c, h.Log, err)
		return
	}

	message := "Slot available"
	if !available {
		message = "Slot not available"
	}
	utils.Success(c, message, gin.H{"isAvailable": available})
}

// GetUserAppointments lists the authenticated patient's appointments
// with optional status filter and pagination. Soft-deleted records are
// excluded.
func (h *AppointmentHandler) GetUserAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	page, limit, offset := pageParams(c, 10)

	query := h.DB.Model(&models.Appointment{}).
		Where("user_id = ? AND is_deleted = ?", userID, false)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	var appointments []models.Appointment
	if err := query.Preload("Doctor").
		Order("date desc, time desc").
		Limit(limit).Offset(offset).
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments retrieved successfully", gin.H{
		"appointments": appointments,
		"totalPages":   totalPages(total, limit),
		"currentPage":  page,
		"total":        total,
	})
}

// CancelAppointmentRequest carries the optional cancellation reason.
type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CancelAppointment handles a patient cancelling their own appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	// An empty body is fine; the cancellation reason is optional
	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment, err := h.Booking.Cancel(c.Param("id"), userID, req.Reason)
	if err != nil {
		bookingError(c, h.Log, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// RescheduleAppointmentRequest carries the new slot for a reschedule.
type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// RescheduleAppointment moves a pending appointment to a new slot.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Booking.Reschedule(c.Param("id"), userID, req.Date, req.Time)
	if err != nil {
		bookingError(c, h.Log, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}
