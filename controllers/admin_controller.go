package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/utils"
)

// GET /api/admin/stats
func GetDashboardStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var totalStudents, totalTeachers, totalCourses, pendingTeachers int64
	db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&totalTeachers)
	db.Model(&models.Course{}).Count(&totalCourses)
	db.Model(&models.User{}).Where("role = ? AND status = ?", models.RoleTeacher, false).Count(&pendingTeachers)

	c.JSON(http.StatusOK, gin.H{
		"total_students":   totalStudents,
		"total_teachers":   totalTeachers,
		"total_courses":    totalCourses,
		"pending_teachers": pendingTeachers,
	})
}

// GET /api/admin/students
func GetStudents(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var students []models.User
	if err := db.
		Preload("Badges").
		Where("role = ?", models.RoleStudent).
		Order("created_at DESC").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách học sinh"})
		return
	}

	for i := range students {
		students[i].Password = ""
	}
	c.JSON(http.StatusOK, gin.H{
		"students": students,
		"total":    len(students),
	})
}

// GET /api/admin/teachers
func GetTeachers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var teachers []models.User
	if err := db.
		Where("role = ?", models.RoleTeacher).
		Order("created_at DESC").
		Find(&teachers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách giáo viên"})
		return
	}

	for i := range teachers {
		teachers[i].Password = ""
	}
	c.JSON(http.StatusOK, gin.H{
		"teachers": teachers,
		"total":    len(teachers),
	})
}

// PUT /api/admin/approve-teacher/:id
func ApproveTeacher(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	teacherUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id không hợp lệ"})
		return
	}

	var teacher models.User
	if err := db.First(&teacher, "id = ? AND role = ?", teacherUUID, models.RoleTeacher).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy giáo viên"})
		return
	}

	if err := db.Model(&teacher).Update("status", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể duyệt giáo viên"})
		return
	}

	// Gửi mail báo duyệt, lỗi gửi mail không chặn response
	go func(email, name string) {
		body := fmt.Sprintf("Xin chào %s,<br><br>Tài khoản giáo viên của bạn đã được duyệt. Bạn có thể đăng nhập và bắt đầu soạn đề thi.", name)
		if err := utils.SendEmail(email, "Tài khoản đã được duyệt", body); err != nil {
			log.Println("Gửi mail duyệt giáo viên thất bại:", err)
		}
	}(teacher.Email, teacher.FullName())

	c.JSON(http.StatusOK, gin.H{"message": "Duyệt giáo viên thành công"})
}

// DELETE /api/admin/users/:id (xóa học sinh hoặc giáo viên)
func DeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Không thể xóa tài khoản admin"})
		return
	}

	// Xóa user + huy hiệu; Result giữ lại với student_id = NULL
	// (bảng xếp hạng hiển thị entry với phần học sinh để trống)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userUUID).Delete(&models.Badge{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Result{}).
			Where("student_id = ?", userUUID).
			Update("student_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa người dùng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa tài khoản thành công"})
}

// GET /api/admin/system-data
// Toàn bộ dữ liệu hệ thống cho trang quản trị, số liệu course tính lại
// từ bảng questions
func GetSystemData(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var students, teachers []models.User
	db.Where("role = ?", models.RoleStudent).Find(&students)
	db.Where("role = ?", models.RoleTeacher).Find(&teachers)
	for i := range students {
		students[i].Password = ""
	}
	for i := range teachers {
		teachers[i].Password = ""
	}

	var courses []models.Course
	db.Find(&courses)

	var questions []models.Question
	db.Find(&questions)

	// Tính lại số liệu từng course từ danh sách câu hỏi
	counts := make(map[uuid.UUID]int)
	sums := make(map[uuid.UUID]int)
	for _, q := range questions {
		counts[q.CourseID]++
		sums[q.CourseID] += q.Marks
	}
	for i := range courses {
		courses[i].QuestionNumber = counts[courses[i].ID]
		courses[i].TotalMarks = sums[courses[i].ID]
	}

	c.JSON(http.StatusOK, gin.H{
		"students":  students,
		"teachers":  teachers,
		"courses":   courses,
		"questions": questions,
	})
}
