package services

import (
	"github.com/google/uuid"

	"github.com/vnkhanh/e-quiz-backend/models"
)

// AnswerEval là kết quả chấm của 1 câu hỏi
type AnswerEval struct {
	QuestionID     uuid.UUID
	SelectedOption *string
	IsCorrect      bool
}

// ScoreResult là kết quả chấm toàn bài, được lưu nguyên trạng vào Result
type ScoreResult struct {
	Marks      int
	TotalMarks int
	Answers    []AnswerEval
}

// ScoreExam chấm bài theo danh sách câu hỏi của course và map
// questionID -> lựa chọn của học sinh. Câu không có trong map (hoặc
// selected = nil) tính là bỏ trống và luôn sai. Lựa chọn đúng khi trùng
// khớp chính xác chuỗi đáp án (phân biệt hoa thường). Không có điểm âm,
// không có điểm một phần.
func ScoreExam(questions []models.Question, selected map[uuid.UUID]*string) ScoreResult {
	res := ScoreResult{
		Answers: make([]AnswerEval, 0, len(questions)),
	}

	for _, q := range questions {
		res.TotalMarks += q.Marks

		eval := AnswerEval{QuestionID: q.ID}
		if sel, ok := selected[q.ID]; ok && sel != nil {
			eval.SelectedOption = sel
			eval.IsCorrect = (*sel == q.Answer)
		}

		if eval.IsCorrect {
			res.Marks += q.Marks
		}
		res.Answers = append(res.Answers, eval)
	}

	return res
}
