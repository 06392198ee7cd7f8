package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result là bản ghi một lần làm bài, chỉ ghi thêm, không bao giờ sửa.
// TotalMarks là snapshot tại thời điểm nộp bài, không phụ thuộc vào
// tổng điểm hiện tại của course (course có thể bị sửa sau đó).
type Result struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// NULL nếu là khách (không đăng nhập) — vẫn chấm điểm, không gamification
	StudentID *uuid.UUID `gorm:"type:uuid;index" json:"student_id"`
	Student   *User      `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:SET NULL;" json:"student,omitempty"`

	// NULL nếu đề thi bị xóa sau khi đã có lượt làm — kết quả vẫn giữ nguyên
	CourseID *uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	Course   *Course    `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:SET NULL;" json:"course,omitempty"`

	Marks      int       `gorm:"not null" json:"marks"`
	TotalMarks int       `gorm:"not null" json:"total_marks"`
	TakenAt    time.Time `gorm:"autoCreateTime;index" json:"taken_at"`

	Answers []ResultAnswer `gorm:"foreignKey:ResultID" json:"answers,omitempty"`
}

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResultAnswer đóng băng từng câu trả lời tại thời điểm nộp bài.
// IsCorrect không bao giờ được tính lại dù câu hỏi bị sửa sau đó.
type ResultAnswer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResultID uuid.UUID `gorm:"type:uuid;not null;index" json:"result_id"`
	Result   Result    `gorm:"foreignKey:ResultID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	// NULL nếu câu hỏi bị xóa sau đó; SelectedOption/IsCorrect vẫn đóng băng
	QuestionID *uuid.UUID `gorm:"type:uuid;index" json:"question_id"`
	Question   *Question  `gorm:"foreignKey:QuestionID;references:ID;constraint:OnDelete:SET NULL;" json:"question,omitempty"`

	SelectedOption *string `gorm:"type:text" json:"selected_option"` // NULL = bỏ trống
	IsCorrect      bool    `gorm:"not null;default:false" json:"is_correct"`
	Position       int     `gorm:"not null;default:0" json:"position"`
}

func (ra *ResultAnswer) BeforeCreate(tx *gorm.DB) error {
	if ra.ID == uuid.Nil {
		ra.ID = uuid.New()
	}
	return nil
}
