package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
)

type CreateQuestionInput struct {
	CourseID string `json:"course_id" binding:"required"`
	Question string `json:"question" binding:"required"`
	Option1  string `json:"option1" binding:"required"`
	Option2  string `json:"option2" binding:"required"`
	Option3  string `json:"option3" binding:"required"`
	Option4  string `json:"option4" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Marks    int    `json:"marks" binding:"required,gt=0"`
}

// Đáp án phải trùng khớp chính xác 1 trong 4 lựa chọn
func answerMatchesOption(answer string, options []string) bool {
	for _, opt := range options {
		if answer == opt {
			return true
		}
	}
	return false
}

// POST /api/exam/questions
func CreateQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu thông tin câu hỏi"})
		return
	}

	courseUUID, err := uuid.Parse(input.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	if !answerMatchesOption(input.Answer, []string{input.Option1, input.Option2, input.Option3, input.Option4}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đáp án phải trùng với một trong 4 lựa chọn"})
		return
	}

	question := models.Question{
		CourseID: courseUUID,
		Question: input.Question,
		Option1:  input.Option1,
		Option2:  input.Option2,
		Option3:  input.Option3,
		Option4:  input.Option4,
		Answer:   input.Answer,
		Marks:    input.Marks,
	}

	// Tạo câu hỏi + tính lại số liệu đề thi trong cùng transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		return recalcCourseStats(tx, courseUUID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo câu hỏi"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thêm câu hỏi thành công",
		"question": question,
	})
}

// GET /api/exam/questions/:courseId
func GetQuestionsByCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseUUID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}

	var questions []models.Question
	if err := db.
		Where("course_id = ?", courseUUID).
		Order("created_at ASC").
		Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể truy vấn câu hỏi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     len(questions),
	})
}

type UpdateQuestionInput struct {
	Question string `json:"question"`
	Option1  string `json:"option1"`
	Option2  string `json:"option2"`
	Option3  string `json:"option3"`
	Option4  string `json:"option4"`
	Answer   string `json:"answer"`
	Marks    int    `json:"marks"`
}

// PUT /api/exam/questions/:id
func UpdateQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id không hợp lệ"})
		return
	}

	var question models.Question
	if err := db.First(&question, "id = ?", questionUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu hỏi"})
		return
	}

	var input UpdateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	if input.Question != "" {
		question.Question = input.Question
	}
	if input.Option1 != "" {
		question.Option1 = input.Option1
	}
	if input.Option2 != "" {
		question.Option2 = input.Option2
	}
	if input.Option3 != "" {
		question.Option3 = input.Option3
	}
	if input.Option4 != "" {
		question.Option4 = input.Option4
	}
	if input.Answer != "" {
		question.Answer = input.Answer
	}
	if input.Marks > 0 {
		question.Marks = input.Marks
	}

	if !answerMatchesOption(question.Answer, question.Options()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Đáp án phải trùng với một trong 4 lựa chọn"})
		return
	}

	// Cập nhật + tính lại số liệu đề thi trong cùng transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&question).Error; err != nil {
			return err
		}
		return recalcCourseStats(tx, question.CourseID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật câu hỏi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Cập nhật câu hỏi thành công",
		"question": question,
	})
}

// DELETE /api/exam/questions/:id
func DeleteQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id không hợp lệ"})
		return
	}

	var question models.Question
	if err := db.First(&question, "id = ?", questionUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy câu hỏi"})
		return
	}

	courseID := question.CourseID
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&question).Error; err != nil {
			return err
		}
		return recalcCourseStats(tx, courseID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa câu hỏi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa câu hỏi thành công"})
}
