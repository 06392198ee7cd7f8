package services

import (
	"math"

	"github.com/vnkhanh/e-quiz-backend/models"
)

// Điểm XP cộng cho mỗi điểm bài thi
const XPPerMark = 10

// Tên + icon các huy hiệu
const (
	BadgeFirstBlood      = "First Blood"      // có kết quả đầu tiên
	BadgeSharpshooter    = "Sharpshooter"     // đạt điểm tuyệt đối
	BadgeObsidianScholar = "Obsidian Scholar" // đạt level 5
	BadgeQuantumOverlord = "Quantum Overlord" // đạt 10000 XP
)

var badgeIcons = map[string]string{
	BadgeFirstBlood:      "Sword",
	BadgeSharpshooter:    "Target",
	BadgeObsidianScholar: "Award",
	BadgeQuantumOverlord: "Crown",
}

// LevelForXP: level = floor(sqrt(xp/100)) + 1
// Level 1: 0-99, Level 2: 100-399, Level 3: 400-899...
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100.0))) + 1
}

// GamificationOutcome mô tả thay đổi profile sau 1 Result
type GamificationOutcome struct {
	XPGained  int
	NewXP     int
	NewLevel  int
	LeveledUp bool
	NewBadges []models.Badge // chỉ các huy hiệu mới, chưa gán ID/UserID
}

// ApplyResult là hàm chuyển trạng thái thuần: (profile hiện tại, kết quả
// vừa lưu) -> thay đổi profile. Thứ tự bắt buộc: cộng XP -> tính lại level
// -> xét huy hiệu. Mỗi huy hiệu chỉ cấp khi học sinh chưa có huy hiệu cùng
// tên (idempotent), nên XP/level/badges chỉ tăng, không bao giờ giảm.
func ApplyResult(user *models.User, marks, totalMarks int) GamificationOutcome {
	out := GamificationOutcome{}

	// 1. Cộng XP
	out.XPGained = marks * XPPerMark
	out.NewXP = user.XP + out.XPGained

	// 2. Tính lại level, chỉ cập nhật khi tăng
	out.NewLevel = user.Level
	if lv := LevelForXP(out.NewXP); lv > user.Level {
		out.NewLevel = lv
		out.LeveledUp = true
	}

	held := make(map[string]bool, len(user.Badges))
	for _, b := range user.Badges {
		held[b.Name] = true
	}
	grant := func(name string) {
		if held[name] {
			return
		}
		held[name] = true
		out.NewBadges = append(out.NewBadges, models.Badge{
			Name: name,
			Icon: badgeIcons[name],
		})
	}

	// 3. Xét huy hiệu (sau khi đã cộng XP và cập nhật level)
	// "First Blood": tới được đây nghĩa là đã có ít nhất 1 Result
	grant(BadgeFirstBlood)

	// "Sharpshooter": điểm tuyệt đối, đề 0 câu không tính
	if marks == totalMarks && totalMarks > 0 {
		grant(BadgeSharpshooter)
	}

	// "Obsidian Scholar": đạt level 5
	if out.NewLevel >= 5 {
		grant(BadgeObsidianScholar)
	}

	// "Quantum Overlord": đạt 10000 XP
	if out.NewXP >= 10000 {
		grant(BadgeQuantumOverlord)
	}

	return out
}
