package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/middleware"
	"github.com/vnkhanh/e-quiz-backend/models"
)

func newCourseRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DBMiddleware(db))
	r.GET("/api/exam/courses", GetCourses)
	r.GET("/api/exam/results", GetLeaderboard)
	r.DELETE("/api/exam/courses/:id", DeleteCourse)
	r.DELETE("/api/exam/questions/:id", DeleteQuestion)
	return r
}

func seedStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	student := models.User{
		FirstName: "Huy", LastName: "Ngô",
		Email: email, Password: "x",
		Role: models.RoleStudent, Level: 1,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

// Ghi thẳng 1 lượt làm bài vào DB (không qua handler nộp bài)
func seedResult(t *testing.T, db *gorm.DB, studentID, courseID uuid.UUID, questionID *uuid.UUID, marks, total int, takenAt time.Time) models.Result {
	t.Helper()
	result := models.Result{
		StudentID:  &studentID,
		CourseID:   &courseID,
		Marks:      marks,
		TotalMarks: total,
		TakenAt:    takenAt,
	}
	require.NoError(t, db.Create(&result).Error)
	if questionID != nil {
		ra := models.ResultAnswer{
			ResultID:       result.ID,
			QuestionID:     questionID,
			SelectedOption: strPtrTest("A"),
			IsCorrect:      true,
		}
		require.NoError(t, db.Create(&ra).Error)
	}
	return result
}

func TestDeleteQuestionWithRecordedAttempts(t *testing.T) {
	db := newExamTestDB(t)
	course, questions := seedCourse(t, db, 5, 10)
	student := seedStudent(t, db, "huy@example.com")
	seedResult(t, db, student.ID, course.ID, &questions[0].ID, 5, 15, time.Now())

	r := newCourseRouter(db)

	req := httptest.NewRequest(http.MethodDelete, "/api/exam/questions/"+questions[0].ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Câu trả lời đã ghi vẫn còn, tham chiếu câu hỏi về NULL,
	// lựa chọn và is_correct giữ nguyên như lúc nộp
	var ra models.ResultAnswer
	require.NoError(t, db.First(&ra).Error)
	assert.Nil(t, ra.QuestionID)
	require.NotNil(t, ra.SelectedOption)
	assert.Equal(t, "A", *ra.SelectedOption)
	assert.True(t, ra.IsCorrect)

	// Số liệu đề thi được tính lại
	var updated models.Course
	require.NoError(t, db.First(&updated, "id = ?", course.ID).Error)
	assert.Equal(t, 1, updated.QuestionNumber)
	assert.Equal(t, 10, updated.TotalMarks)
}

func TestDeleteCourseWithRecordedAttempts(t *testing.T) {
	db := newExamTestDB(t)
	course, questions := seedCourse(t, db, 5)
	student := seedStudent(t, db, "huy2@example.com")
	result := seedResult(t, db, student.ID, course.ID, &questions[0].ID, 5, 5, time.Now())

	r := newCourseRouter(db)

	req := httptest.NewRequest(http.MethodDelete, "/api/exam/courses/"+course.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var courseCount int64
	require.NoError(t, db.Model(&models.Course{}).Count(&courseCount).Error)
	assert.Equal(t, int64(0), courseCount)

	// Kết quả đã ghi vẫn còn nguyên điểm, tham chiếu đề thi về NULL
	var kept models.Result
	require.NoError(t, db.First(&kept, "id = ?", result.ID).Error)
	assert.Nil(t, kept.CourseID)
	assert.Equal(t, 5, kept.Marks)
	assert.Equal(t, 5, kept.TotalMarks)
}

func TestGetCoursesHealsDrift(t *testing.T) {
	db := newExamTestDB(t)
	course, _ := seedCourse(t, db, 5, 10)

	// Làm lệch số liệu đã lưu
	require.NoError(t, db.Model(&models.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{"question_number": 99, "total_marks": 999}).Error)

	r := newCourseRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/exam/courses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Courses []struct {
			QuestionNumber int `json:"question_number"`
			TotalMarks     int `json:"total_marks"`
		} `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, 2, resp.Courses[0].QuestionNumber)
	assert.Equal(t, 15, resp.Courses[0].TotalMarks)

	// DB cũng được chữa lại
	var healed models.Course
	require.NoError(t, db.First(&healed, "id = ?", course.ID).Error)
	assert.Equal(t, 2, healed.QuestionNumber)
	assert.Equal(t, 15, healed.TotalMarks)
}

func TestGetLeaderboardTieBreak(t *testing.T) {
	db := newExamTestDB(t)
	course, _ := seedCourse(t, db, 5)
	student := seedStudent(t, db, "huy3@example.com")

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	newer := base.Add(time.Hour)
	// Ghi lần gần hơn TRƯỚC để kết quả không phụ thuộc thứ tự DB trả về
	seedResult(t, db, student.ID, course.ID, nil, 5, 5, newer)
	seedResult(t, db, student.ID, course.ID, nil, 5, 5, base)

	r := newCourseRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/exam/results", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Ranking []struct {
			Marks   int       `json:"marks"`
			TakenAt time.Time `json:"taken_at"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ranking, 1)
	assert.Equal(t, 5, resp.Ranking[0].Marks)
	// Hòa điểm: lấy lần làm gần nhất
	assert.Equal(t, newer.Unix(), resp.Ranking[0].TakenAt.Unix())
}
