package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question luôn có đúng 4 lựa chọn, Answer phải trùng khớp chính xác
// (phân biệt hoa thường) với một trong 4 lựa chọn.
type Question struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   Course    `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Question string `gorm:"type:text;not null" json:"question"`
	Option1  string `gorm:"type:text;not null" json:"option1"`
	Option2  string `gorm:"type:text;not null" json:"option2"`
	Option3  string `gorm:"type:text;not null" json:"option3"`
	Option4  string `gorm:"type:text;not null" json:"option4"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Marks    int    `gorm:"not null;default:1" json:"marks"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Options trả về 4 lựa chọn theo thứ tự hiển thị
func (q *Question) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}
