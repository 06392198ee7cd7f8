package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"   // Quản trị hệ thống
	RoleTeacher UserRole = "teacher" // Giáo viên (soạn đề thi)
	RoleStudent UserRole = "student" // Học sinh (làm bài thi)
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`

	ProfilePic string `gorm:"type:text" json:"profile_pic"`
	Address    string `gorm:"type:text" json:"address"`
	Mobile     string `gorm:"size:20" json:"mobile"`

	// Giáo viên cần admin duyệt mới được soạn đề (status = true)
	Status *bool `gorm:"default:true" json:"status"`

	// Gamification (chỉ dùng cho học sinh)
	XP     int     `gorm:"not null;default:0" json:"xp"`
	Level  int     `gorm:"not null;default:1" json:"level"`
	Badges []Badge `gorm:"foreignKey:UserID" json:"badges"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
