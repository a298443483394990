package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/notify"
	"doctor-appointment-server/internal/utils"
)

// UserHandler handles doctor applications and the public doctor directory.
type UserHandler struct {
	DB       *gorm.DB
	Notifier *notify.Notifier
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, notifier *notify.Notifier) *UserHandler {
	return &UserHandler{DB: db, Notifier: notifier}
}

// EducationEntry is one item of a doctor's education history.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year"`
}

// ApplyDoctorRequest represents a doctor account application.
type ApplyDoctorRequest struct {
	FirstName      string           `json:"firstName" binding:"required"`
	LastName       string           `json:"lastName" binding:"required"`
	Phone          string           `json:"phone" binding:"required"`
	Email          string           `json:"email" binding:"required,email"`
	Website        string           `json:"website"`
	Address        models.Address   `json:"address"`
	Specialization string           `json:"specialization" binding:"required"`
	Experience     int              `json:"experience" binding:"min=0"`
	Fees           float64          `json:"fees" binding:"required,min=0"`
	Timings        models.Timings   `json:"timings" binding:"required"`
	WorkingDays    []string         `json:"workingDays" binding:"omitempty,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Bio            string           `json:"bio" binding:"max=500"`
	Education      []EducationEntry `json:"education"`
}

// ApplyDoctor handles a user applying for a doctor account. The
// application starts pending and every admin is notified.
func (h *UserHandler) ApplyDoctor(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req ApplyDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// One application per user
	var existing models.Doctor
	if err := h.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Doctor application already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	doctor := models.Doctor{
		UserID:         userID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Email:          req.Email,
		Website:        req.Website,
		Address:        req.Address,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Fees:           req.Fees,
		Status:         models.DoctorPending,
		Timings:        req.Timings,
		Bio:            req.Bio,
		IsActive:       true,
	}
	if len(req.WorkingDays) > 0 {
		if payload, err := json.Marshal(req.WorkingDays); err == nil {
			doctor.WorkingDays = datatypes.JSON(payload)
		}
	}
	if len(req.Education) > 0 {
		if payload, err := json.Marshal(req.Education); err == nil {
			doctor.Education = datatypes.JSON(payload)
		}
	}

	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor application: "+err.Error())
		return
	}

	// Notify every admin about the new application
	var admins []models.User
	if err := h.DB.Where("is_admin = ?", true).Find(&admins).Error; err == nil {
		adminIDs := make([]string, 0, len(admins))
		for _, admin := range admins {
			adminIDs = append(adminIDs, admin.ID)
		}
		h.Notifier.NotifyMany(adminIDs, "doctor_application",
			"New Doctor Application",
			doctor.FullName()+" has applied for a doctor account",
			map[string]interface{}{
				"doctorId":   doctor.ID,
				"doctorName": doctor.FullName(),
			},
			"/admin/doctors")
	}

	utils.Created(c, "Doctor application submitted successfully", doctor)
}

// GetDoctors lists approved, active doctors with optional
// specialization and search filters.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	page, limit, offset := pageParams(c, 10)

	query := h.DB.Model(&models.Doctor{}).
		Where("status = ? AND is_active = ?", models.DoctorApproved, true)

	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("specialization LIKE ?", "%"+specialization+"%")
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR specialization LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count doctors: "+err.Error())
		return
	}

	var doctors []models.Doctor
	if err := query.Order("rating_average desc").Limit(limit).Offset(offset).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors retrieved successfully", gin.H{
		"doctors":     doctors,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// GetDoctorByID fetches a single doctor profile.
func (h *UserHandler) GetDoctorByID(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor retrieved successfully", doctor)
}
