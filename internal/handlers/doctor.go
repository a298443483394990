package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/booking"
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"
)

// DoctorHandler handles doctor-side requests: profile self-service,
// appointment management and dashboard stats.
type DoctorHandler struct {
	DB      *gorm.DB
	Booking *booking.Service
	Log     *zap.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, svc *booking.Service, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{DB: db, Booking: svc, Log: log}
}

// profileForUser loads the doctor profile owned by the acting user.
func (h *DoctorHandler) profileForUser(c *gin.Context) (*models.Doctor, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &doctor, true
}

// GetProfile returns the acting doctor's own profile.
func (h *DoctorHandler) GetProfile(c *gin.Context) {
	doctor, ok := h.profileForUser(c)
	if !ok {
		return
	}
	utils.Success(c, "Doctor profile retrieved successfully", doctor)
}

// UpdateProfileRequest holds the profile fields a doctor may edit.
// Status and rating are deliberately absent.
type UpdateProfileRequest struct {
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Phone          string           `json:"phone"`
	Website        string           `json:"website"`
	Address        *models.Address  `json:"address"`
	Specialization string           `json:"specialization"`
	Experience     *int             `json:"experience"`
	Fees           *float64         `json:"fees" binding:"omitempty,min=0"`
	Timings        *models.Timings  `json:"timings"`
	WorkingDays    []string         `json:"workingDays" binding:"omitempty,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Bio            string           `json:"bio" binding:"max=500"`
	Education      []EducationEntry `json:"education"`
}

// UpdateProfile applies an allow-listed partial update to the acting
// doctor's profile.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	doctor, ok := h.profileForUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.FirstName != "" {
		doctor.FirstName = req.FirstName
	}
	if req.LastName != "" {
		doctor.LastName = req.LastName
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.Website != "" {
		doctor.Website = req.Website
	}
	if req.Address != nil {
		doctor.Address = *req.Address
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.Fees != nil {
		doctor.Fees = *req.Fees
	}
	if req.Timings != nil {
		doctor.Timings = *req.Timings
	}
	if req.WorkingDays != nil {
		if payload, err := json.Marshal(req.WorkingDays); err == nil {
			doctor.WorkingDays = datatypes.JSON(payload)
		}
	}
	if req.Bio != "" {
		doctor.Bio = req.Bio
	}
	if req.Education != nil {
		if payload, err := json.Marshal(req.Education); err == nil {
			doctor.Education = datatypes.JSON(payload)
		}
	}

	if err := h.DB.Save(doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor profile: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile updated successfully", doctor)
}

// GetAppointments lists the acting doctor's appointments with optional
// status and date filters.
func (h *DoctorHandler) GetAppointments(c *gin.Context) {
	doctor, ok := h.profileForUser(c)
	if !ok {
		return
	}

	page, limit, offset := pageParams(c, 10)

	query := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND is_deleted = ?", doctor.ID, false)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if rawDate := c.Query("date"); rawDate != "" {
		dateKey, err := booking.NormalizeDate(rawDate)
		if err != nil {
			bookingError(c, h.Log, err)
			return
		}
		query = query.Where("date = ?", dateKey)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	var appointments []models.Appointment
	if err := query.Preload("Patient").
		Order("date asc, time asc").
		Limit(limit).Offset(offset).
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Doctor appointments retrieved successfully", gin.H{
		"appointments": appointments,
		"totalPages":   totalPages(total, limit),
		"currentPage":  page,
		"total":        total,
	})
}

// UpdateAppointmentStatusRequest represents a doctor-side status change.
type UpdateAppointmentStatusRequest struct {
	Status       models.AppointmentStatus `json:"status" binding:"required,oneof=approved rejected completed"`
	Notes        string                   `json:"notes" binding:"max=1000"`
	Prescription string                   `json:"prescription" binding:"max=2000"`
}

// UpdateAppointmentStatus transitions an appointment belonging to the
// acting doctor to approved, rejected or completed.
func (h *DoctorHandler) UpdateAppointmentStatus(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Booking.UpdateStatus(c.Param("id"), userID, req.Status, req.Notes, req.Prescription)
	if err != nil {
		bookingError(c, h.Log, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// statusCount is one row of a per-status aggregate.
type statusCount struct {
	Status models.AppointmentStatus `json:"status"`
	Count  int64                    `json:"count"`
}

// GetDashboard returns aggregate stats for the acting doctor.
func (h *DoctorHandler) GetDashboard(c *gin.Context) {
	doctor, ok := h.profileForUser(c)
	if !ok {
		return
	}

	var stats []statusCount
	if err := h.DB.Model(&models.Appointment{}).
		Select("status, count(*) as count").
		Where("doctor_id = ?", doctor.ID).
		Group("status").
		Scan(&stats).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate appointments: "+err.Error())
		return
	}

	today := time.Now().Format(booking.DateKeyLayout)
	thisMonth := time.Now().Format("2006-01")

	var todayCount int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctor.ID, today).
		Count(&todayCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	var monthCount int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date LIKE ?", doctor.ID, thisMonth+"%").
		Count(&monthCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	var recent []models.Appointment
	if err := h.DB.Preload("Patient").
		Where("doctor_id = ?", doctor.ID).
		Order("created_at desc").Limit(5).
		Find(&recent).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Doctor dashboard data retrieved successfully", gin.H{
		"stats":                 stats,
		"todayAppointments":     todayCount,
		"thisMonthAppointments": monthCount,
		"recentAppointments":    recent,
	})
}
