package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/services"
	"github.com/vnkhanh/e-quiz-backend/ws"
)

type AnswerInput struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *string   `json:"selected_option"` // nil = bỏ trống
}

type SubmitExamInput struct {
	CourseID string        `json:"course_id" binding:"required"`
	Answers  []AnswerInput `json:"answers"`
}

// POST /api/exam/results
// Nộp bài thi: chấm điểm -> lưu Result (+answers) -> gamification, tất cả
// ghi DB nằm trong 1 transaction để không bao giờ có XP mà thiếu Result
// (hoặc ngược lại). Khách không đăng nhập vẫn được chấm và lưu kết quả
// nhưng bỏ qua gamification.
func SubmitExam(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input SubmitExamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
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

	// Học sinh đăng nhập (nếu có) — khách thì studentID = nil
	var studentID *uuid.UUID
	if userIDStr := c.GetString("user_id"); userIDStr != "" {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}
		studentID = &parsed
	}

	// Danh sách câu hỏi của đề tại thời điểm nộp (theo thứ tự tạo)
	var questions []models.Question
	if err := db.
		Where("course_id = ?", courseUUID).
		Order("created_at ASC").
		Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy câu hỏi của đề thi"})
		return
	}

	// Map lựa chọn theo question_id; câu trả lời lạ (không thuộc đề) bị bỏ qua,
	// câu thiếu tính là bỏ trống
	selected := make(map[uuid.UUID]*string, len(input.Answers))
	for _, ans := range input.Answers {
		selected[ans.QuestionID] = ans.SelectedOption
	}

	score := services.ScoreExam(questions, selected)

	result := models.Result{
		StudentID:  studentID,
		CourseID:   &courseUUID,
		Marks:      score.Marks,
		TotalMarks: score.TotalMarks,
	}

	var outcome services.GamificationOutcome
	gamified := false

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&result).Error; err != nil {
			return err
		}

		for i, eval := range score.Answers {
			questionID := eval.QuestionID
			ra := models.ResultAnswer{
				ResultID:       result.ID,
				QuestionID:     &questionID,
				SelectedOption: eval.SelectedOption,
				IsCorrect:      eval.IsCorrect,
				Position:       i,
			}
			if err := tx.Create(&ra).Error; err != nil {
				return err
			}
		}

		// Gamification: chỉ chạy khi có học sinh gắn với Result.
		// Không tìm thấy profile thì bỏ qua trong im lặng, Result vẫn được lưu.
		if studentID == nil {
			return nil
		}

		var student models.User
		if err := tx.Preload("Badges").First(&student, "id = ?", *studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		outcome = services.ApplyResult(&student, score.Marks, score.TotalMarks)
		gamified = true

		if err := tx.Model(&models.User{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"xp":    outcome.NewXP,
				"level": outcome.NewLevel,
			}).Error; err != nil {
			return err
		}

		for i := range outcome.NewBadges {
			outcome.NewBadges[i].UserID = student.ID
			if err := tx.Create(&outcome.NewBadges[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu kết quả thi"})
		return
	}

	// Báo realtime: course có lượt nộp mới + bảng xếp hạng có thể đổi
	ws.SendCourseResultUpdate(courseUUID.String(), result.Marks, result.TakenAt)
	ws.BroadcastLeaderboardChanged()

	resp := gin.H{
		"message":     "Nộp bài thành công",
		"result_id":   result.ID,
		"marks":       result.Marks,
		"total_marks": result.TotalMarks,
		"answers":     score.Answers,
	}
	if gamified {
		resp["gamification"] = gin.H{
			"xp_gained":  outcome.XPGained,
			"xp":         outcome.NewXP,
			"level":      outcome.NewLevel,
			"leveled_up": outcome.LeveledUp,
			"new_badges": outcome.NewBadges,
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /api/exam/results (bảng xếp hạng)
// Gom toàn bộ lịch sử, mỗi học sinh lấy lần làm tốt nhất, tối đa 100 dòng.
// Học sinh / đề thi đã bị xóa thì entry vẫn còn, phần enrich để null.
func GetLeaderboard(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var results []models.Result
	if err := db.
		Preload("Student", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "first_name", "last_name", "email", "profile_pic", "xp", "level")
		}).
		Preload("Course", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "course_name", "slug", "total_marks")
		}).
		Order("taken_at ASC").
		Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy lịch sử kết quả"})
		return
	}

	ranking := services.BuildLeaderboard(results, services.LeaderboardLimit)

	c.JSON(http.StatusOK, gin.H{
		"ranking": ranking,
		"total":   len(ranking),
	})
}

// GET /api/student/:id/results
func GetStudentResults(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	studentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id không hợp lệ"})
		return
	}

	var results []models.Result
	if err := db.
		Preload("Course", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "course_name", "time_limit")
		}).
		Where("student_id = ?", studentUUID).
		Order("taken_at DESC").
		Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy kết quả của học sinh"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

// GET /api/exam/results/:id
// Chi tiết 1 lần thi kèm câu hỏi để xem lại bài / xuất chứng nhận
func GetResultDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	resultUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "result_id không hợp lệ"})
		return
	}

	var result models.Result
	if err := db.
		Preload("Student").
		Preload("Course").
		Preload("Answers", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		}).
		Preload("Answers.Question").
		First(&result, "id = ?", resultUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kết quả"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy chi tiết kết quả"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// DELETE /api/exam/results/:id (chỉ admin)
func DeleteResult(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	resultUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "result_id không hợp lệ"})
		return
	}

	var result models.Result
	if err := db.First(&result, "id = ?", resultUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy kết quả"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("result_id = ?", resultUUID).Delete(&models.ResultAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&result).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa kết quả"})
		return
	}

	ws.BroadcastLeaderboardChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa kết quả thành công"})
}
