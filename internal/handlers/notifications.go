package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"
)

// NotificationHandler handles a user's in-app notification inbox.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// GetNotifications lists the acting user's notifications, newest first,
// with the unread count alongside.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	page, limit, offset := pageParams(c, 20)

	var total int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count notifications: "+err.Error())
		return
	}

	var unreadCount int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unreadCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count notifications: "+err.Error())
		return
	}

	var notifications []models.Notification
	if err := h.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}

	utils.Success(c, "Notifications retrieved successfully", gin.H{
		"notifications": notifications,
		"totalPages":    totalPages(total, limit),
		"currentPage":   page,
		"total":         total,
		"unreadCount":   unreadCount,
	})
}

// MarkRead flips one notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var notification models.Notification
	if err := h.DB.First(&notification, "id = ? AND user_id = ?", c.Param("id"), userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notification: "+err.Error())
		return
	}
	notification.IsRead = true

	utils.Success(c, "Notification marked as read", notification)
}

// MarkAllRead flips every unread notification of the acting user.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notifications: "+err.Error())
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}

// DeleteNotification removes one notification owned by the acting user.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	result := h.DB.Delete(&models.Notification{}, "id = ? AND user_id = ?", c.Param("id"), userID)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete notification: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification deleted successfully", nil)
}

// ClearAll removes every notification of the acting user.
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.DB.Delete(&models.Notification{}, "user_id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear notifications: "+err.Error())
		return
	}

	utils.Success(c, "All notifications cleared", nil)
}
