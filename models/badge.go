package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge là huy hiệu gamification, mỗi học sinh chỉ nhận 1 lần cho mỗi tên
type Badge struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_badges_user_name" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_badges_user_name" json:"name"`
	Icon      string    `gorm:"size:50" json:"icon"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
