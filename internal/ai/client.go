// Package ai wraps the language model behind the three fixed prompt
// templates used by story generation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"imagibox-server/internal/interfaces"
	"imagibox-server/internal/models"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

const (
	defaultStoryMood   = "Vui vẻ"
	defaultImageMood   = "Happy"
	defaultUserChoice  = "Tiếp tục phiêu lưu"
	defaultModelName   = "gpt-4o-mini"
	defaultTimeoutSecs = 60
)

const storyGenerationTemplate = `Bạn là một nhà văn chuyên viết truyện cho trẻ em từ 5-12 tuổi.

**Nhiệm vụ:** Viết một câu chuyện ngắn khoảng 300-400 từ dựa trên ý tưởng của trẻ.

**Ý tưởng của trẻ:** %s

**Tâm trạng/Cảm xúc:** %s

**Yêu cầu:**
1. Nội dung phải phù hợp với trẻ em, tích cực, lạc quan
2. Ngôn ngữ đơn giản, dễ hiểu
3. Có bài học ý nghĩa (tình bạn, lòng dũng cảm, sự tốt bụng, v.v.)
4. Kết thúc có hậu
5. Tránh nội dung bạo lực, đáng sợ hoặc không phù hợp

Hãy viết câu chuyện theo định dạng JSON:
{
  "title": "Tiêu đề câu chuyện",
  "content": "Nội dung câu chuyện đầy đủ",
  "moral": "Bài học rút ra"
}`

const chapterContinuationTemplate = `Bạn là một nhà văn chuyên viết truyện cho trẻ em.

**Bối cảnh truyện trước đó:**
%s

**Lựa chọn của trẻ:** %s

**Nhiệm vụ:** Viết tiếp chương kế tiếp (khoảng 200-300 từ) dựa trên lựa chọn của trẻ.

**Yêu cầu:**
1. Nội dung phải phù hợp với trẻ em
2. Tiếp nối mạch truyện một cách tự nhiên
3. Cuối chương đưa ra 2 lựa chọn mới (A và B) để trẻ quyết định

Hãy trả lời theo định dạng JSON:
{
  "content": "Nội dung chương mới",
  "choiceA": "Lựa chọn A - Mô tả ngắn gọn",
  "choiceB": "Lựa chọn B - Mô tả ngắn gọn"
}`

const imagePromptTemplate = `Create a detailed image generation prompt for a children's book illustration based on this story concept:

Story idea: %s
Mood: %s

Generate a prompt for Stable Diffusion that describes a colorful, child-friendly, cartoon-style illustration.
Include: art style (3D cartoon, vibrant colors), main subjects, setting, mood, and artistic details.

Return ONLY the image prompt text, no additional explanation.`

// Compile-time check to ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)

// Client calls an OpenAI-compatible chat completion API.
type Client struct {
	client    *openai.Client
	modelName string
	timeout   time.Duration
}

// Config holds the language model connection settings.
type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Timeout   int
}

// New creates a language model client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("language model API key is not set")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModelName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeoutSecs
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:    openai.NewClientWithConfig(config),
		modelName: cfg.ModelName,
		timeout:   time.Duration(cfg.Timeout) * time.Second,
	}, nil
}

// GenerateStory produces a complete one-shot story from the child's idea.
// The raw model output still needs ParseStoryResponse.
func (c *Client) GenerateStory(ctx context.Context, prompt, mood string) (string, error) {
	if mood == "" {
		mood = defaultStoryMood
	}
	log.Info().Str("mood", mood).Msg("Generating story")
	return c.complete(ctx, fmt.Sprintf(storyGenerationTemplate, prompt, mood))
}

// GenerateNextChapter produces the next chapter given the accumulated story
// context and the child's choice.
func (c *Client) GenerateNextChapter(ctx context.Context, priorContext, userChoice string) (string, error) {
	if userChoice == "" {
		userChoice = defaultUserChoice
	}
	log.Info().Str("choice", userChoice).Msg("Generating next chapter")
	return c.complete(ctx, fmt.Sprintf(chapterContinuationTemplate, priorContext, userChoice))
}

// GenerateImagePrompt turns a story idea into an illustration prompt for the
// image model.
func (c *Client) GenerateImagePrompt(ctx context.Context, prompt, mood string) (string, error) {
	if mood == "" {
		mood = defaultImageMood
	}
	log.Info().Msg("Generating image prompt")
	text, err := c.complete(ctx, fmt.Sprintf(imagePromptTemplate, prompt, mood))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: 0.7,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("Chat completion failed")
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from model", models.ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}
