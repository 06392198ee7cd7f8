package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/e-quiz-backend/models"
)

func strPtr(s string) *string { return &s }

func makeQuestion(answer string, marks int) models.Question {
	return models.Question{
		ID:      uuid.New(),
		Option1: "A",
		Option2: "B",
		Option3: "C",
		Option4: answer,
		Answer:  answer,
		Marks:   marks,
	}
}

func TestScoreExam(t *testing.T) {
	q1 := makeQuestion("Hà Nội", 5)
	q2 := makeQuestion("1945", 10)

	t.Run("đúng một câu, sai một câu", func(t *testing.T) {
		res := ScoreExam([]models.Question{q1, q2}, map[uuid.UUID]*string{
			q1.ID: strPtr("Hà Nội"),
			q2.ID: strPtr("1946"),
		})

		assert.Equal(t, 5, res.Marks)
		assert.Equal(t, 15, res.TotalMarks)
		assert.Len(t, res.Answers, 2)
		assert.True(t, res.Answers[0].IsCorrect)
		assert.False(t, res.Answers[1].IsCorrect)
	})

	t.Run("so khớp phân biệt hoa thường", func(t *testing.T) {
		res := ScoreExam([]models.Question{q1}, map[uuid.UUID]*string{
			q1.ID: strPtr("hà nội"),
		})
		assert.Equal(t, 0, res.Marks)
		assert.False(t, res.Answers[0].IsCorrect)
	})

	t.Run("câu bỏ trống luôn sai, không lỗi", func(t *testing.T) {
		res := ScoreExam([]models.Question{q1, q2}, map[uuid.UUID]*string{
			q1.ID: nil,
			// q2 không có trong map
		})
		assert.Equal(t, 0, res.Marks)
		assert.Equal(t, 15, res.TotalMarks)
		assert.Len(t, res.Answers, 2)
		assert.Nil(t, res.Answers[0].SelectedOption)
		assert.False(t, res.Answers[0].IsCorrect)
		assert.False(t, res.Answers[1].IsCorrect)
	})

	t.Run("câu trả lời lạ không thuộc đề bị bỏ qua", func(t *testing.T) {
		res := ScoreExam([]models.Question{q1}, map[uuid.UUID]*string{
			q1.ID:      strPtr("Hà Nội"),
			uuid.New(): strPtr("X"),
		})
		assert.Equal(t, 5, res.Marks)
		assert.Len(t, res.Answers, 1)
	})

	t.Run("đề không có câu hỏi", func(t *testing.T) {
		res := ScoreExam(nil, nil)
		assert.Equal(t, 0, res.Marks)
		assert.Equal(t, 0, res.TotalMarks)
		assert.Empty(t, res.Answers)
	})

	t.Run("điểm tuyệt đối", func(t *testing.T) {
		res := ScoreExam([]models.Question{q1, q2}, map[uuid.UUID]*string{
			q1.ID: strPtr("Hà Nội"),
			q2.ID: strPtr("1945"),
		})
		assert.Equal(t, 15, res.Marks)
		assert.Equal(t, 15, res.TotalMarks)
	})
}
