package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-quiz-backend/models"
	"github.com/vnkhanh/e-quiz-backend/services"
	"github.com/vnkhanh/e-quiz-backend/utils"
)

// Câu hỏi do Gemini sinh ra (chưa lưu DB)
type GeneratedQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Marks         int      `json:"marks"`
}

type GenerateQuizInput struct {
	Topic         string `json:"topic" binding:"required"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count" binding:"required,gt=0,lte=50"`
	// Nếu có course_id thì lưu luôn câu hỏi vào đề đó
	CourseID string `json:"course_id"`
}

func buildQuizPrompt(topic, difficulty string, count int) string {
	if difficulty == "" {
		difficulty = "medium"
	}
	return fmt.Sprintf(`Bạn là AI tạo câu hỏi trắc nghiệm giáo dục.
Hãy tạo chính xác %d câu hỏi trắc nghiệm cho chủ đề "%s" với độ khó "%s".

Yêu cầu:
- Mỗi câu hỏi có đúng 4 lựa chọn.
- "correct_answer" phải trùng khớp chính xác với một trong 4 lựa chọn.
- "marks" là điểm của câu hỏi (số nguyên dương, thường là 1).

Trả về JSON hợp lệ đúng cấu trúc:
[
  {
    "question_text": "Câu hỏi là gì?",
    "options": ["Phương án A", "Phương án B", "Phương án C", "Phương án D"],
    "correct_answer": "Phương án đúng (trùng 1 trong 4 lựa chọn)",
    "marks": 1
  }
]

Chỉ trả về JSON hợp lệ, không thêm markdown hay bất kỳ văn bản nào khác.`,
		count, topic, difficulty)
}

// Làm sạch JSON Gemini (bỏ ```json ... ``` nếu có) rồi parse
func parseGeneratedQuestions(raw string) ([]GeneratedQuestion, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	clean = strings.TrimSpace(clean)

	// Chỉ lấy phần mảng JSON nếu Gemini vẫn kèm text thừa
	if start := strings.Index(clean, "["); start >= 0 {
		if end := strings.LastIndex(clean, "]"); end > start {
			clean = clean[start : end+1]
		}
	}

	var arr []GeneratedQuestion
	if err := json.Unmarshal([]byte(clean), &arr); err != nil {
		return nil, err
	}

	valid := make([]GeneratedQuestion, 0, len(arr))
	for _, g := range arr {
		if g.QuestionText == "" || len(g.Options) != 4 {
			continue
		}
		ok := false
		for _, opt := range g.Options {
			if opt == g.CorrectAnswer {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		if g.Marks <= 0 {
			g.Marks = 1
		}
		valid = append(valid, g)
	}
	return valid, nil
}

// Lưu các câu hỏi sinh ra vào 1 đề thi + tính lại số liệu
func saveGeneratedQuestions(db *gorm.DB, courseID uuid.UUID, generated []GeneratedQuestion) ([]models.Question, error) {
	saved := make([]models.Question, 0, len(generated))
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, g := range generated {
			q := models.Question{
				CourseID: courseID,
				Question: g.QuestionText,
				Option1:  g.Options[0],
				Option2:  g.Options[1],
				Option3:  g.Options[2],
				Option4:  g.Options[3],
				Answer:   g.CorrectAnswer,
				Marks:    g.Marks,
			}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			saved = append(saved, q)
		}
		return recalcCourseStats(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// POST /api/ai/generate-quiz
// Sinh câu hỏi trắc nghiệm bằng Gemini theo chủ đề, retry với exponential
// backoff; dính rate-limit sau khi hết lượt thì trả "server busy".
func GenerateQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input GenerateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu topic hoặc question_count không hợp lệ"})
		return
	}

	prompt := buildQuizPrompt(input.Topic, input.Difficulty, input.QuestionCount)

	raw, err := services.GeminiGenerateWithRetry(prompt, services.DefaultGeminiRetry)
	if err != nil {
		if services.IsRateLimited(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server đang bận (rate limit). Vui lòng thử lại sau ít phút"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể sinh câu hỏi", "details": err.Error()})
		return
	}

	generated, err := parseGeneratedQuestions(raw)
	if err != nil || len(generated) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gemini trả kết quả không hợp lệ"})
		return
	}

	// Không có course_id: chỉ trả về cho FE xem trước
	if input.CourseID == "" {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Sinh câu hỏi thành công",
			"questions": generated,
			"total":     len(generated),
		})
		return
	}

	courseUUID, err := uuid.Parse(input.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}
	var course models.Course
	if err := db.First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	saved, err := saveGeneratedQuestions(db, courseUUID, generated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu câu hỏi vào đề thi"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   fmt.Sprintf("Đã thêm %d câu hỏi vào đề thi", len(saved)),
		"course_id": courseUUID,
		"questions": saved,
		"total":     len(saved),
	})
}

// Cắt văn bản thành các đoạn ~maxLen ký tự, ưu tiên cắt ở cuối câu
func splitTextIntoChunks(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > maxLen {
		cut := maxLen
		if idx := strings.LastIndexAny(text[:maxLen], ".!?\n"); idx > maxLen/2 {
			cut = idx + 1
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// POST /api/ai/generate-quiz-from-document (multipart: file + course_id)
// Sinh câu hỏi từ tài liệu PDF/DOCX/TXT giáo viên upload
func GenerateQuizFromDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	courseUUID, err := uuid.Parse(c.PostForm("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id không hợp lệ"})
		return
	}
	var course models.Course
	if err := db.First(&course, "id = ?", courseUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đề thi"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file tài liệu"})
		return
	}

	var text string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file"})
			return
		}
		defer file.Close()
		text, err = services.ExtractTextFromPDF(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không trích xuất được nội dung PDF"})
			return
		}
	case ".docx":
		text, err = services.ExtractTextFromDOCX(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không trích xuất được nội dung DOCX"})
			return
		}
	case ".txt":
		text, err = services.ExtractTextFromTXT(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file TXT"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chỉ hỗ trợ file .pdf, .docx, .txt"})
		return
	}

	chunks := splitTextIntoChunks(text, 2000)
	if len(chunks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tài liệu không có nội dung để xử lý"})
		return
	}

	const maxQuestions = 50
	allGenerated := []GeneratedQuestion{}

	for idx, chunk := range chunks {
		if len(allGenerated) >= maxQuestions {
			break
		}

		prompt := fmt.Sprintf(`Bạn là AI tạo câu hỏi trắc nghiệm giáo dục.
Hãy tạo 1 đến 3 câu hỏi trắc nghiệm từ đoạn tài liệu sau bằng tiếng Việt.

Yêu cầu:
- Mỗi câu hỏi có đúng 4 lựa chọn.
- "correct_answer" phải trùng khớp chính xác với một trong 4 lựa chọn.
- "marks" là điểm của câu hỏi (số nguyên dương, thường là 1).

Trả về JSON hợp lệ đúng cấu trúc:
[
  {
    "question_text": "Câu hỏi là gì?",
    "options": ["Phương án A", "Phương án B", "Phương án C", "Phương án D"],
    "correct_answer": "Phương án đúng",
    "marks": 1
  }
]

Chỉ trả về JSON hợp lệ, không thêm bất kỳ văn bản nào khác.

Đoạn văn số %d:
%s
`, idx+1, chunk)

		raw, err := services.GeminiGenerateWithRetry(prompt, services.DefaultGeminiRetry)
		if err != nil {
			fmt.Printf("Gemini lỗi ở đoạn %d: %v\n", idx+1, err)
			continue
		}

		generated, err := parseGeneratedQuestions(raw)
		if err != nil {
			fmt.Printf("Parse JSON lỗi ở đoạn %d: %v\n", idx+1, err)
			continue
		}

		for _, g := range generated {
			if len(allGenerated) >= maxQuestions {
				break
			}
			allGenerated = append(allGenerated, g)
		}
	}

	if len(allGenerated) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được câu hỏi nào từ tài liệu"})
		return
	}

	saved, err := saveGeneratedQuestions(db, courseUUID, allGenerated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu câu hỏi vào đề thi"})
		return
	}

	// Lưu tài liệu gốc lên storage để tra lại nguồn sinh đề, lỗi không chặn
	sourceURL := ""
	if url, err := utils.UploadFileToSupabase(fileHeader, uuid.New().String()); err != nil {
		fmt.Printf("Upload tài liệu nguồn thất bại: %v\n", err)
	} else {
		sourceURL = url
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    fmt.Sprintf("Tạo thành công %d câu hỏi từ tài liệu", len(saved)),
		"course_id":  courseUUID,
		"chunks":     len(chunks),
		"source_url": sourceURL,
		"questions":  saved,
		"total":      len(saved),
	})
}
