package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/e-quiz-backend/models"
)

func badgeNames(badges []models.Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}

func TestLevelForXP(t *testing.T) {
	// Level 1: 0-99, Level 2: 100-399, Level 3: 400-899...
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{1600, 5},
		{10000, 11},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestApplyResult(t *testing.T) {
	t.Run("cộng XP và lên level theo công thức", func(t *testing.T) {
		user := &models.User{XP: 0, Level: 1}
		out := ApplyResult(user, 12, 20)

		assert.Equal(t, 120, out.XPGained)
		assert.Equal(t, 120, out.NewXP)
		assert.Equal(t, 2, out.NewLevel)
		assert.True(t, out.LeveledUp)
		assert.Equal(t, LevelForXP(out.NewXP), out.NewLevel)
	})

	t.Run("level không bao giờ giảm", func(t *testing.T) {
		// Level lưu sẵn cao hơn level tính ra thì giữ nguyên
		user := &models.User{XP: 0, Level: 7}
		out := ApplyResult(user, 1, 10)
		assert.Equal(t, 7, out.NewLevel)
		assert.False(t, out.LeveledUp)
	})

	t.Run("First Blood luôn được cấp lần đầu", func(t *testing.T) {
		user := &models.User{XP: 0, Level: 1}
		out := ApplyResult(user, 0, 10)
		assert.Contains(t, badgeNames(out.NewBadges), BadgeFirstBlood)
	})

	t.Run("Sharpshooter khi điểm tuyệt đối, đề rỗng không tính", func(t *testing.T) {
		user := &models.User{XP: 0, Level: 1}
		out := ApplyResult(user, 10, 10)
		assert.Contains(t, badgeNames(out.NewBadges), BadgeSharpshooter)

		empty := &models.User{XP: 0, Level: 1}
		out = ApplyResult(empty, 0, 0)
		assert.NotContains(t, badgeNames(out.NewBadges), BadgeSharpshooter)
	})

	t.Run("huy hiệu idempotent, đã có thì không cấp lại", func(t *testing.T) {
		user := &models.User{
			XP:    100,
			Level: 2,
			Badges: []models.Badge{
				{Name: BadgeFirstBlood},
				{Name: BadgeSharpshooter},
			},
		}
		out := ApplyResult(user, 10, 10)
		assert.Empty(t, out.NewBadges)
	})

	t.Run("Obsidian Scholar khi đạt level 5", func(t *testing.T) {
		// 1600 XP = level 5
		user := &models.User{XP: 1500, Level: 4, Badges: []models.Badge{{Name: BadgeFirstBlood}}}
		out := ApplyResult(user, 10, 20)
		assert.Equal(t, 1600, out.NewXP)
		assert.Equal(t, 5, out.NewLevel)
		assert.Contains(t, badgeNames(out.NewBadges), BadgeObsidianScholar)
	})

	t.Run("Quantum Overlord khi chạm 10000 XP", func(t *testing.T) {
		// Ví dụ trong đề: đúng câu 5 điểm trong đề 15 điểm -> +50 XP
		user := &models.User{XP: 9950, Level: 10, Badges: []models.Badge{{Name: BadgeFirstBlood}}}
		out := ApplyResult(user, 5, 15)
		assert.Equal(t, 50, out.XPGained)
		assert.Equal(t, 10000, out.NewXP)
		assert.Contains(t, badgeNames(out.NewBadges), BadgeQuantumOverlord)
	})

	t.Run("XP chỉ tăng không giảm", func(t *testing.T) {
		user := &models.User{XP: 500, Level: 3}
		out := ApplyResult(user, 0, 10)
		assert.Equal(t, 500, out.NewXP)
		assert.Equal(t, 3, out.NewLevel)
	})
}
