package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-quiz-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.Course{},
		&models.Question{},
		&models.Result{},
		&models.ResultAnswer{},
	))
	return db
}

func addQuestion(t *testing.T, db *gorm.DB, course *models.Course, marks int) models.Question {
	t.Helper()
	q := models.Question{
		CourseID: course.ID,
		Question: "câu hỏi",
		Option1:  "A", Option2: "B", Option3: "C", Option4: "D",
		Answer: "A",
		Marks:  marks,
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

func courseStats(t *testing.T, db *gorm.DB, id interface{}) (int, int) {
	t.Helper()
	var course models.Course
	require.NoError(t, db.First(&course, "id = ?", id).Error)
	return course.QuestionNumber, course.TotalMarks
}

func TestRecalcCourseStats(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{CourseName: "Lịch sử 12", TimeLimit: 30}
	require.NoError(t, db.Create(&course).Error)

	// Thêm câu hỏi
	q1 := addQuestion(t, db, &course, 5)
	addQuestion(t, db, &course, 10)
	require.NoError(t, RecalcCourseStats(db, course.ID))

	n, marks := courseStats(t, db, course.ID)
	require.Equal(t, 2, n)
	require.Equal(t, 15, marks)

	// Sửa điểm câu hỏi
	require.NoError(t, db.Model(&q1).Update("marks", 7).Error)
	require.NoError(t, RecalcCourseStats(db, course.ID))

	n, marks = courseStats(t, db, course.ID)
	require.Equal(t, 2, n)
	require.Equal(t, 17, marks)

	// Xóa câu hỏi
	require.NoError(t, db.Delete(&q1).Error)
	require.NoError(t, RecalcCourseStats(db, course.ID))

	n, marks = courseStats(t, db, course.ID)
	require.Equal(t, 1, n)
	require.Equal(t, 10, marks)
}

func TestRecalcCourseStatsHealsDrift(t *testing.T) {
	db := newTestDB(t)

	// Course bị ghi số liệu sai từ trước (drift)
	course := models.Course{CourseName: "Đề lệch số liệu", QuestionNumber: 99, TotalMarks: 999}
	require.NoError(t, db.Create(&course).Error)
	addQuestion(t, db, &course, 3)

	require.NoError(t, RecalcCourseStats(db, course.ID))

	n, marks := courseStats(t, db, course.ID)
	require.Equal(t, 1, n)
	require.Equal(t, 3, marks)
}

func TestRecalcCourseStatsEmptyCourse(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{CourseName: "Đề rỗng", QuestionNumber: 5, TotalMarks: 50}
	require.NoError(t, db.Create(&course).Error)

	require.NoError(t, RecalcCourseStats(db, course.ID))

	n, marks := courseStats(t, db, course.ID)
	require.Equal(t, 0, n)
	require.Equal(t, 0, marks)
}
