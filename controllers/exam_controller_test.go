package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-quiz-backend/config"
	"github.com/vnkhanh/e-quiz-backend/middleware"
	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/services"
)

func newExamTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateModels(db))
	return db
}

// Router tối giản cho test: DB middleware thật, auth thay bằng stub
// gắn thẳng user_id (giống OptionalAuthMiddleware sau khi verify token).
func newExamRouter(db *gorm.DB, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DBMiddleware(db))
	if userID != nil {
		id := userID.String()
		r.Use(func(c *gin.Context) {
			c.Set("user_id", id)
			c.Set("role", string(models.RoleStudent))
			c.Next()
		})
	}
	r.POST("/api/exam/results", SubmitExam)
	return r
}

func seedCourse(t *testing.T, db *gorm.DB, marks ...int) (models.Course, []models.Question) {
	t.Helper()

	course := models.Course{CourseName: "Địa lý 10", TimeLimit: 30}
	require.NoError(t, db.Create(&course).Error)

	questions := make([]models.Question, 0, len(marks))
	for i, m := range marks {
		q := models.Question{
			CourseID: course.ID,
			Question: fmt.Sprintf("Câu %d", i+1),
			Option1:  "A", Option2: "B", Option3: "C", Option4: "D",
			Answer: "A",
			Marks:  m,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	require.NoError(t, services.RecalcCourseStats(db, course.ID))
	return course, questions
}

func submitExam(t *testing.T, r *gin.Engine, courseID uuid.UUID, answers []AnswerInput) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(SubmitExamInput{
		CourseID: courseID.String(),
		Answers:  answers,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/exam/results", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func answerAll(questions []models.Question, option string) []AnswerInput {
	answers := make([]AnswerInput, 0, len(questions))
	for _, q := range questions {
		opt := option
		answers = append(answers, AnswerInput{QuestionID: q.ID, SelectedOption: &opt})
	}
	return answers
}

func TestSubmitExam(t *testing.T) {
	t.Run("học sinh nộp bài được chấm, lưu và cộng XP", func(t *testing.T) {
		db := newExamTestDB(t)
		course, questions := seedCourse(t, db, 5, 10)

		student := models.User{
			FirstName: "Minh", LastName: "Trần",
			Email: "minh@example.com", Password: "x",
			Role: models.RoleStudent, Level: 1,
		}
		require.NoError(t, db.Create(&student).Error)

		r := newExamRouter(db, &student.ID)

		// Đúng câu 5 điểm, sai câu 10 điểm
		wrong := "B"
		w := submitExam(t, r, course.ID, []AnswerInput{
			{QuestionID: questions[0].ID, SelectedOption: strPtrTest("A")},
			{QuestionID: questions[1].ID, SelectedOption: &wrong},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Marks        int `json:"marks"`
			TotalMarks   int `json:"total_marks"`
			Gamification *struct {
				XPGained  int  `json:"xp_gained"`
				XP        int  `json:"xp"`
				Level     int  `json:"level"`
				LeveledUp bool `json:"leveled_up"`
			} `json:"gamification"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Marks)
		assert.Equal(t, 15, resp.TotalMarks)
		require.NotNil(t, resp.Gamification)
		assert.Equal(t, 50, resp.Gamification.XPGained)
		assert.Equal(t, 50, resp.Gamification.XP)

		// Result + answers đã vào DB
		var result models.Result
		require.NoError(t, db.Preload("Answers").First(&result, "student_id = ?", student.ID).Error)
		assert.Equal(t, 5, result.Marks)
		assert.Len(t, result.Answers, 2)

		// Profile được cập nhật trong cùng transaction
		var updated models.User
		require.NoError(t, db.Preload("Badges").First(&updated, "id = ?", student.ID).Error)
		assert.Equal(t, 50, updated.XP)
		assert.Equal(t, 1, updated.Level)
		assert.Contains(t, badgeNamesTest(updated.Badges), services.BadgeFirstBlood)
	})

	t.Run("nộp điểm tuyệt đối hai lần chỉ có một Sharpshooter", func(t *testing.T) {
		db := newExamTestDB(t)
		course, questions := seedCourse(t, db, 5, 5)

		student := models.User{
			FirstName: "Lan", LastName: "Phạm",
			Email: "lan@example.com", Password: "x",
			Role: models.RoleStudent, Level: 1,
		}
		require.NoError(t, db.Create(&student).Error)

		r := newExamRouter(db, &student.ID)

		for i := 0; i < 2; i++ {
			w := submitExam(t, r, course.ID, answerAll(questions, "A"))
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		var count int64
		require.NoError(t, db.Model(&models.Badge{}).
			Where("user_id = ? AND name = ?", student.ID, services.BadgeSharpshooter).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)

		// XP cộng dồn cả hai lần: 2 x (10 điểm x 10)
		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", student.ID).Error)
		assert.Equal(t, 200, updated.XP)
		assert.Equal(t, 2, updated.Level)
	})

	t.Run("khách nộp bài: lưu kết quả, không gamification", func(t *testing.T) {
		db := newExamTestDB(t)
		course, questions := seedCourse(t, db, 5)

		r := newExamRouter(db, nil)

		w := submitExam(t, r, course.ID, answerAll(questions, "A"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		_, ok := resp["gamification"]
		assert.False(t, ok, "khách không được nhận gamification")

		var result models.Result
		require.NoError(t, db.First(&result, "course_id = ?", course.ID).Error)
		assert.Nil(t, result.StudentID)
		assert.Equal(t, 5, result.Marks)

		var badges int64
		require.NoError(t, db.Model(&models.Badge{}).Count(&badges).Error)
		assert.Equal(t, int64(0), badges)
	})

	t.Run("đề không tồn tại trả 404", func(t *testing.T) {
		db := newExamTestDB(t)
		r := newExamRouter(db, nil)

		w := submitExam(t, r, uuid.New(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bỏ trống toàn bộ vẫn nộp được, điểm 0", func(t *testing.T) {
		db := newExamTestDB(t)
		course, _ := seedCourse(t, db, 5, 10)

		r := newExamRouter(db, nil)

		w := submitExam(t, r, course.ID, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result models.Result
		require.NoError(t, db.Preload("Answers").First(&result, "course_id = ?", course.ID).Error)
		assert.Equal(t, 0, result.Marks)
		assert.Equal(t, 15, result.TotalMarks)
		assert.Len(t, result.Answers, 2)
	})
}

func strPtrTest(s string) *string { return &s }

func badgeNamesTest(badges []models.Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}
