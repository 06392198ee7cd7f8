package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Hàm gọn để xử lý prompt và trả kết quả từ Gemini
func GeminiGenerateText(prompt string) (string, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash")
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %v", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini không trả kết quả hợp lệ")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// RetryPolicy mô tả chính sách gọi lại dịch vụ ngoài: số lần tối đa,
// delay ban đầu và hệ số nhân (exponential backoff)
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

var DefaultGeminiRetry = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	Multiplier:  2,
}

// IsRateLimited nhận biết lỗi quota/rate-limit (429) từ Gemini
func IsRateLimited(err error) bool {
	return err != nil && strings.Contains(err.Error(), "429")
}

// GeminiGenerateWithRetry gọi Gemini theo RetryPolicy: thất bại thì chờ
// delay rồi thử lại với delay nhân dần, hết lượt thì trả lỗi cuối cùng.
func GeminiGenerateWithRetry(prompt string, policy RetryPolicy) (string, error) {
	if policy.MaxAttempts <= 0 {
		policy = DefaultGeminiRetry
	}

	delay := policy.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		resp, err := GeminiGenerateText(prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt < policy.MaxAttempts {
			fmt.Printf("Gemini lỗi (lần %d/%d): %v, thử lại sau %v\n",
				attempt, policy.MaxAttempts, err, delay)
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * policy.Multiplier)
		}
	}
	return "", lastErr
}
