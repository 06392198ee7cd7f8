package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-quiz-backend/models"
)

// Số dòng tối đa của bảng xếp hạng
const LeaderboardLimit = 100

// LeaderboardEntry là 1 dòng xếp hạng: lần làm bài tốt nhất của 1 học sinh.
// Student/Course có thể nil nếu đã bị xóa sau khi Result được ghi.
type LeaderboardEntry struct {
	StudentID  uuid.UUID      `json:"student_id"`
	Student    *models.User   `json:"student"`
	Course     *models.Course `json:"course"`
	Marks      int            `json:"marks"`
	TotalMarks int            `json:"total_marks"`
	TakenAt    time.Time      `json:"taken_at"`
}

// BuildLeaderboard gom toàn bộ lịch sử Result theo học sinh, chọn cho mỗi
// học sinh kết quả có điểm cao nhất (hòa điểm thì lấy lần gần nhất), xếp
// giảm dần theo điểm rồi cắt còn tối đa limit dòng. Kết quả của khách
// (student_id NULL) không vào bảng xếp hạng. Với cùng một lịch sử, thứ tự
// trả về luôn giống hệt nhau.
func BuildLeaderboard(results []models.Result, limit int) []LeaderboardEntry {
	if limit <= 0 {
		limit = LeaderboardLimit
	}

	best := make(map[uuid.UUID]models.Result)
	order := make([]uuid.UUID, 0)

	for _, r := range results {
		if r.StudentID == nil {
			continue
		}
		sid := *r.StudentID
		cur, ok := best[sid]
		if !ok {
			best[sid] = r
			order = append(order, sid)
			continue
		}
		// Điểm cao hơn thắng, hòa điểm thì lần gần nhất thắng
		if r.Marks > cur.Marks || (r.Marks == cur.Marks && r.TakenAt.After(cur.TakenAt)) {
			best[sid] = r
		}
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for _, sid := range order {
		r := best[sid]
		entries = append(entries, LeaderboardEntry{
			StudentID:  sid,
			Student:    r.Student,
			Course:     r.Course,
			Marks:      r.Marks,
			TotalMarks: r.TotalMarks,
			TakenAt:    r.TakenAt,
		})
	}

	// Sắp xếp ổn định: điểm giảm dần, hòa thì lần làm gần hơn đứng trước
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Marks != entries[j].Marks {
			return entries[i].Marks > entries[j].Marks
		}
		return entries[i].TakenAt.After(entries[j].TakenAt)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
