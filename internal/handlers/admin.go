package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/booking"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/notify"
	"doctor-appointment-server/internal/utils"
)

// AdminHandler handles admin-side user/doctor management and stats.
type AdminHandler struct {
	DB       *gorm.DB
	Notifier *notify.Notifier
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, notifier *notify.Notifier) *AdminHandler {
	return &AdminHandler{DB: db, Notifier: notifier}
}

// GetUsers lists all accounts with optional name/email search.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, limit, offset := pageParams(c, 10)

	query := h.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users: "+err.Error())
		return
	}

	var users []models.User
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}

	utils.Success(c, "Users retrieved successfully", gin.H{
		"users":       sanitized,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

// GetDoctors lists doctor applications in any status, with optional
// status filter and search.
func (h *AdminHandler) GetDoctors(c *gin.Context) {
	page, limit, offset := pageParams(c, 10)

	query := h.DB.Model(&models.Doctor{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
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
	if err := query.Preload("User").Order("created_at desc").Limit(limit).Offset(offset).Find(&doctors).Error; err != nil {
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

// UpdateDoctorStatusRequest approves or rejects an application.
type UpdateDoctorStatusRequest struct {
	Status models.DoctorStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateDoctorStatus approves or rejects a doctor application, flips
// the owning user's doctor flag and notifies the applicant.
func (h *AdminHandler) UpdateDoctorStatus(c *gin.Context) {
	var req UpdateDoctorStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.Status = req.Status
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor status: "+err.Error())
		return
	}

	// Keep the role flag in sync with the application status
	if err := h.DB.Model(&models.User{}).
		Where("id = ?", doctor.UserID).
		Update("is_doctor", req.Status == models.DoctorApproved).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user doctor flag: "+err.Error())
		return
	}

	ntype := "doctor_rejected"
	if req.Status == models.DoctorApproved {
		ntype = "doctor_approved"
	}
	h.Notifier.Notify(doctor.UserID, ntype,
		"Doctor Application Status",
		"Your doctor application has been "+string(req.Status),
		map[string]interface{}{"doctorId": doctor.ID},
		"/doctor/profile")

	utils.Success(c, "Doctor "+string(req.Status)+" successfully", doctor)
}

// GetDashboard returns platform-wide aggregate stats.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	var totalUsers, totalDoctors, pendingDoctors, totalAppointments, todayAppointments int64

	today := time.Now().Format(booking.DateKeyLayout)
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&totalUsers, h.DB.Model(&models.User{})},
		{&totalDoctors, h.DB.Model(&models.Doctor{}).Where("status = ?", models.DoctorApproved)},
		{&pendingDoctors, h.DB.Model(&models.Doctor{}).Where("status = ?", models.DoctorPending)},
		{&totalAppointments, h.DB.Model(&models.Appointment{})},
		{&todayAppointments, h.DB.Model(&models.Appointment{}).Where("date = ?", today)},
	}
	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			utils.InternalServerError(c, "Failed to aggregate dashboard counts: "+err.Error())
			return
		}
	}

	var appointmentStats []statusCount
	if err := h.DB.Model(&models.Appointment{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&appointmentStats).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate appointments: "+err.Error())
		return
	}

	var recentUsers []models.User
	if err := h.DB.Order("created_at desc").Limit(5).Find(&recentUsers).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}
	recentSanitized := make([]models.UserSanitized, 0, len(recentUsers))
	for i := range recentUsers {
		recentSanitized = append(recentSanitized, recentUsers[i].Sanitize())
	}

	var recentApplications []models.Doctor
	if err := h.DB.Preload("User").
		Where("status = ?", models.DoctorPending).
		Order("created_at desc").Limit(5).
		Find(&recentApplications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Admin dashboard data retrieved successfully", gin.H{
		"totalUsers":               totalUsers,
		"totalDoctors":             totalDoctors,
		"pendingDoctors":           pendingDoctors,
		"totalAppointments":        totalAppointments,
		"todayAppointments":        todayAppointments,
		"appointmentStats":         appointmentStats,
		"recentUsers":              recentSanitized,
		"recentDoctorApplications": recentApplications,
	})
}
