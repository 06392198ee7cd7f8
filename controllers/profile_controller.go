package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/utils"
)

// GET /api/student/:id
// Hồ sơ học sinh kèm trạng thái gamification (XP, level, huy hiệu)
func GetProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var user models.User
	if err := db.
		Preload("Badges", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("awarded_at ASC")
		}).
		First(&user, "id = ?", userUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Mobile    string `json:"mobile"`
	Address   string `json:"address"`
}

// PUT /api/student/:id
// Chỉ cho sửa hồ sơ của chính mình (admin sửa được tất cả)
func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	if c.GetString("role") != string(models.RoleAdmin) && c.GetString("user_id") != userUUID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền sửa hồ sơ này"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Mobile != "" {
		user.Mobile = input.Mobile
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
			return
		}
		user.Password = string(hashed)
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật hồ sơ"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật hồ sơ thành công",
		"user":    user,
	})
}

// POST /api/student/:id/avatar (multipart: file)
func UploadAvatar(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	if c.GetString("user_id") != userUUID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền sửa hồ sơ này"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file ảnh"})
		return
	}

	publicURL, err := utils.UploadImageToSupabase(fileHeader, userUUID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload ảnh thất bại"})
		return
	}

	// Xóa ảnh cũ, lỗi cũng không sao
	if user.ProfilePic != "" {
		_ = utils.DeleteFileFromSupabase(user.ProfilePic)
	}

	if err := db.Model(&user).Update("profile_pic", publicURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật ảnh đại diện"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Cập nhật ảnh đại diện thành công",
		"profile_pic": publicURL,
	})
}
