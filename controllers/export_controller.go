package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
)

// GET /api/exam/courses/:id/export
// Xuất toàn bộ kết quả của 1 đề thi ra file Excel cho giáo viên/admin
func ExportCourseResults(c *gin.Context) {
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

	var results []models.Result
	if err := db.
		Preload("Student", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "first_name", "last_name", "email")
		}).
		Where("course_id = ?", courseUUID).
		Order("taken_at DESC").
		Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy kết quả của đề thi"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"STT", "Họ tên", "Email", "Điểm", "Tổng điểm", "Thời gian nộp"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range results {
		row := i + 2
		name := "(khách)"
		email := ""
		if r.Student != nil {
			name = r.Student.FullName()
			email = r.Student.Email
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), email)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Marks)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.TotalMarks)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.TakenAt.Format("2006-01-02 15:04:05"))
	}

	filename := fmt.Sprintf("ket-qua-%s.xlsx", course.Slug)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xuất file Excel"})
		return
	}
}
