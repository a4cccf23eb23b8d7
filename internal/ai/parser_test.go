package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagibox-server/internal/models"
)

func TestParseStoryResponse_CleanJSON(t *testing.T) {
	raw := `{"title": "Chú mèo dũng cảm", "content": "Ngày xửa ngày xưa...", "moral": "Hãy dũng cảm"}`

	fields, err := ParseStoryResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Chú mèo dũng cảm", fields.Title)
	assert.Equal(t, "Ngày xửa ngày xưa...", fields.Content)
	assert.Equal(t, "Hãy dũng cảm", fields.Moral)
}

func TestParseStoryResponse_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"title\": \"T\", \"content\": \"C\", \"moral\": \"M\"}\n```"

	fields, err := ParseStoryResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "T", fields.Title)
	assert.Equal(t, "C", fields.Content)
}

func TestParseStoryResponse_DefaultsForMissingKeys(t *testing.T) {
	raw := `{"content": "Chỉ có nội dung"}`

	fields, err := ParseStoryResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Câu chuyện của bé", fields.Title)
	assert.Equal(t, "Chỉ có nội dung", fields.Content)
	assert.Empty(t, fields.Moral)
}

func TestParseStoryResponse_MalformedPayload(t *testing.T) {
	_, err := ParseStoryResponse("this is not json at all")
	assert.ErrorIs(t, err, models.ErrMalformedResponse)

	_, err = ParseStoryResponse("")
	assert.ErrorIs(t, err, models.ErrMalformedResponse)

	// Non-string values do not fit a flat string mapping.
	_, err = ParseStoryResponse(`{"title": "T", "content": 42}`)
	assert.ErrorIs(t, err, models.ErrMalformedResponse)
}

func TestParseChapterResponse_WithChoices(t *testing.T) {
	raw := `{"content": "Chương mới", "choiceA": "Đi vào rừng", "choiceB": "Về nhà"}`

	fields, err := ParseChapterResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Chương mới", fields.Content)
	assert.Equal(t, "Đi vào rừng", fields.ChoiceA)
	assert.Equal(t, "Về nhà", fields.ChoiceB)
}

func TestParseChapterResponse_MissingChoicesAreOptional(t *testing.T) {
	raw := `{"content": "Kết thúc câu chuyện"}`

	fields, err := ParseChapterResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Kết thúc câu chuyện", fields.Content)
	assert.Empty(t, fields.ChoiceA)
	assert.Empty(t, fields.ChoiceB)
}

func TestExtractFields_SurroundingWhitespace(t *testing.T) {
	fields, err := ExtractFields("\n\n   {\"a\": \"b\"}   \n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "b"}, fields)
}
