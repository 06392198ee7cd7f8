package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
)

// RecalcCourseStats tính lại question_number và total_marks của course từ
// bảng questions (nguồn dữ liệu gốc) rồi ghi đè lên course. Luôn tính lại
// toàn bộ chứ không cộng/trừ delta, gọi sau mỗi lần thêm/sửa/xóa câu hỏi.
func RecalcCourseStats(db *gorm.DB, courseID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Question{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return err
	}

	var totalMarks int64
	if err := db.Model(&models.Question{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(SUM(marks), 0)").
		Scan(&totalMarks).Error; err != nil {
		return err
	}

	return db.Model(&models.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"question_number": count,
			"total_marks":     totalMarks,
		}).Error
}
