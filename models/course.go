package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course là một đề thi trắc nghiệm (quiz) gồm nhiều câu hỏi.
// QuestionNumber và TotalMarks là số liệu dẫn xuất, luôn được tính lại
// từ bảng questions sau mỗi lần thêm/sửa/xóa câu hỏi.
type Course struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseName string    `gorm:"size:200;not null" json:"course_name"`
	Slug       string    `gorm:"size:220;index" json:"slug"`

	QuestionNumber int `gorm:"not null;default:0" json:"question_number"`
	TotalMarks     int `gorm:"not null;default:0" json:"total_marks"`
	TimeLimit      int `gorm:"not null;default:30" json:"time_limit"` // phút

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	Creator   *User      `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:SET NULL;" json:"creator,omitempty"`

	Questions []Question `gorm:"foreignKey:CourseID" json:"questions,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (co *Course) BeforeCreate(tx *gorm.DB) error {
	if co.ID == uuid.Nil {
		co.ID = uuid.New()
	}
	return nil
}
