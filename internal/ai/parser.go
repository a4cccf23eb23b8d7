package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"imagibox-server/internal/models"
)

const defaultStoryTitle = "Câu chuyện của bé"

// sanitizeResponse strips code-fence markers and surrounding whitespace so
// the remaining text can be parsed as JSON.
func sanitizeResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ExtractFields parses the sanitized model output as a flat string-to-string
// mapping. A response that is not a JSON object of strings fails with
// models.ErrMalformedResponse; missing keys are left for the caller to
// default.
func ExtractFields(raw string) (map[string]string, error) {
	cleaned := sanitizeResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", models.ErrMalformedResponse)
	}

	fields := make(map[string]string)
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		log.Error().Err(err).Msg("Failed to parse model response")
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	return fields, nil
}

// StoryFields is the parsed one-shot story payload with defaults applied.
type StoryFields struct {
	Title   string
	Content string
	Moral   string
}

// ParseStoryResponse extracts title, content and moral from the raw model
// output. Missing keys fall back to a placeholder title, the raw text as
// content, and an empty moral.
func ParseStoryResponse(raw string) (StoryFields, error) {
	fields, err := ExtractFields(raw)
	if err != nil {
		return StoryFields{}, err
	}

	result := StoryFields{
		Title:   fields["title"],
		Content: fields["content"],
		Moral:   fields["moral"],
	}
	if result.Title == "" {
		result.Title = defaultStoryTitle
	}
	if result.Content == "" {
		result.Content = sanitizeResponse(raw)
	}
	return result, nil
}

// ChapterFields is the parsed chapter continuation payload. Choices may be
// empty when the model offered none.
type ChapterFields struct {
	Content string
	ChoiceA string
	ChoiceB string
}

// ParseChapterResponse extracts the chapter content and the two forward
// choices. Content falls back to the raw text when missing.
func ParseChapterResponse(raw string) (ChapterFields, error) {
	fields, err := ExtractFields(raw)
	if err != nil {
		return ChapterFields{}, err
	}

	result := ChapterFields{
		Content: fields["content"],
		ChoiceA: fields["choiceA"],
		ChoiceB: fields["choiceB"],
	}
	if result.Content == "" {
		result.Content = sanitizeResponse(raw)
	}
	return result, nil
}
