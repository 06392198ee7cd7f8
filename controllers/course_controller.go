package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/services"
)

type CreateCourseInput struct {
	CourseName string `json:"course_name" binding:"required"`
	TimeLimit  int    `json:"time_limit"`
}

// POST /api/exam/courses
// Lưu ý: question_number / total_marks KHÔNG nhận từ client — đề mới luôn
// bắt đầu 0 câu / 0 điểm, số liệu chỉ được tính lại từ bảng questions.
func CreateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên đề thi bắt buộc"})
		return
	}

	timeLimit := input.TimeLimit
	if timeLimit <= 0 {
		timeLimit = 30 // phút, mặc định
	}

	// Lấy userID từ context (nếu có)
	var userUUID *uuid.UUID
	if userIDStr := c.GetString("user_id"); userIDStr != "" {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}
		userUUID = &parsed
	}

	course := models.Course{
		CourseName: input.CourseName,
		Slug:       slug.Make(input.CourseName),
		TimeLimit:  timeLimit,
		CreatedBy:  userUUID,
	}

	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo đề thi"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo đề thi thành công",
		"course":  course,
	})
}

// GET /api/exam/courses
// Trả danh sách đề thi, số liệu dẫn xuất được tính lại từ bảng questions
// và ghi đè lại DB nếu phát hiện lệch (tự chữa drift).
func GetCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var courses []models.Course
	if err := db.Order("created_at DESC").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách đề thi"})
		return
	}

	// Gom số câu + tổng điểm theo course trong 1 query
	type courseAgg struct {
		CourseID   uuid.UUID
		Count      int
		TotalMarks int
	}
	var aggs []courseAgg
	if err := db.Model(&models.Question{}).
		Select("course_id, COUNT(*) AS count, COALESCE(SUM(marks), 0) AS total_marks").
		Group("course_id").
		Scan(&aggs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thống kê câu hỏi"})
		return
	}

	aggMap := make(map[uuid.UUID]courseAgg, len(aggs))
	for _, a := range aggs {
		aggMap[a.CourseID] = a
	}

	for i := range courses {
		a := aggMap[courses[i].ID]
		if courses[i].QuestionNumber != a.Count || courses[i].TotalMarks != a.TotalMarks {
			courses[i].QuestionNumber = a.Count
			courses[i].TotalMarks = a.TotalMarks
			if err := db.Model(&models.Course{}).
				Where("id = ?", courses[i].ID).
				Updates(map[string]interface{}{
					"question_number": a.Count,
					"total_marks":     a.TotalMarks,
				}).Error; err != nil {
				log.Println("Không thể ghi lại số liệu đề thi:", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   len(courses),
	})
}

// GET /api/exam/courses/:id
func GetCourseDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": course})
}

type UpdateCourseInput struct {
	CourseName string `json:"course_name"`
	TimeLimit  int    `json:"time_limit"`
}

// PUT /api/exam/courses/:id
func UpdateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	var input UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	if input.CourseName != "" {
		course.CourseName = input.CourseName
		course.Slug = slug.Make(input.CourseName)
	}
	if input.TimeLimit > 0 {
		course.TimeLimit = input.TimeLimit
	}

	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật đề thi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật đề thi thành công",
		"course":  course,
	})
}

// DELETE /api/exam/courses/:id
// Xóa đề thi kèm toàn bộ câu hỏi trong 1 transaction (cascade tường minh)
func DeleteCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseUUID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa đề thi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa đề thi thành công"})
}

// recalcCourseStats: wrapper dùng chung cho các controller câu hỏi
func recalcCourseStats(db *gorm.DB, courseID uuid.UUID) error {
	return services.RecalcCourseStats(db, courseID)
}
