package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"imagibox-server/internal/models"
)

func newTestGate(t *testing.T, extra ...string) *Gate {
	t.Helper()
	gate, err := NewGate(extra, zap.NewNop())
	require.NoError(t, err)
	return gate
}

func TestGate_BlocksEnglishTerms(t *testing.T) {
	gate := newTestGate(t)

	assert.ErrorIs(t, gate.Check("a story about a gun"), models.ErrContentUnsafe)
	assert.ErrorIs(t, gate.Check("Blood everywhere"), models.ErrContentUnsafe)
	assert.ErrorIs(t, gate.Check("they KILL the dragon"), models.ErrContentUnsafe)
}

func TestGate_BlocksVietnameseTerms(t *testing.T) {
	gate := newTestGate(t)

	assert.ErrorIs(t, gate.Check("con rồng đã chết"), models.ErrContentUnsafe)
	assert.ErrorIs(t, gate.Check("một câu chuyện về bạo lực"), models.ErrContentUnsafe)
	assert.ErrorIs(t, gate.Check("cậu bé cầm súng"), models.ErrContentUnsafe)
}

func TestGate_MultiWordTermToleratesExtraSpaces(t *testing.T) {
	gate := newTestGate(t)

	assert.ErrorIs(t, gate.Check("bạo  lực trong phim"), models.ErrContentUnsafe)
}

func TestGate_WholeWordOnly(t *testing.T) {
	gate := newTestGate(t)

	// Substrings of blocked terms inside longer words are fine.
	assert.NoError(t, gate.Check("the knight showed great skill"))
	assert.NoError(t, gate.Check("a weaponsmith")) // "weapon" only as prefix
	assert.NoError(t, gate.Check("gundam robots are cool"))
}

func TestGate_SafePromptPasses(t *testing.T) {
	gate := newTestGate(t)

	assert.NoError(t, gate.Check("Một chú mèo con đi tìm bạn trong khu rừng"))
	assert.NoError(t, gate.Check(""))
}

func TestGate_ExtraTermsFromConfig(t *testing.T) {
	gate := newTestGate(t, "dragonfire", "  ", "ma quỷ")

	assert.ErrorIs(t, gate.Check("beware the dragonfire"), models.ErrContentUnsafe)
	assert.ErrorIs(t, gate.Check("câu chuyện ma quỷ"), models.ErrContentUnsafe)
	assert.NoError(t, gate.Check("a friendly dragon"))
}
