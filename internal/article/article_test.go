package article

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/models"
)

func rec(caption string) *models.ImageRecord {
	return &models.ImageRecord{ID: caption, Caption: caption, MimeType: "image/png", ImageData: []byte{1, 2, 3}}
}

func TestHeadingsFollowSelectionOrder(t *testing.T) {
	a, err := Build([]*models.ImageRecord{rec("C"), rec("A"), rec("B")}, Options{})
	require.NoError(t, err)

	first := strings.Index(a.HTML, "<h1>01. C</h1>")
	second := strings.Index(a.HTML, "<h1>02. A</h1>")
	third := strings.Index(a.HTML, "<h1>03. B</h1>")
	require.True(t, first >= 0 && second >= 0 && third >= 0, a.HTML)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.Equal(t, 3, strings.Count(a.HTML, "<img "))
	assert.Equal(t, 3, a.Items)
}

func TestImagesAreInlined(t *testing.T) {
	a, err := Build([]*models.ImageRecord{rec("Sunset")}, Options{})
	require.NoError(t, err)
	assert.Contains(t, a.HTML, `src="data:image/png;base64,AQID"`)
	assert.Contains(t, a.HTML, `alt="Sunset"`)
}

func TestHeadAndTailWrapItems(t *testing.T) {
	a, err := Build([]*models.ImageRecord{rec("x")}, Options{
		Head: "<p>Welcome back</p>",
		Tail: "Thanks for reading",
	})
	require.NoError(t, err)

	head := strings.Index(a.HTML, "<p>Welcome back</p>")
	item := strings.Index(a.HTML, "<h1>01. x</h1>")
	tail := strings.Index(a.HTML, "<p>Thanks for reading</p>")
	assert.True(t, head >= 0 && head < item && item < tail, a.HTML)
}

func TestCaptionsAreLiteral(t *testing.T) {
	a, err := Build([]*models.ImageRecord{rec("<script>alert(1)</script> *bold* 1. [x]")}, Options{})
	require.NoError(t, err)
	assert.NotContains(t, a.HTML, "<script>")
	assert.NotContains(t, a.HTML, "<em>")
	assert.Contains(t, a.HTML, "&lt;script&gt;")
	assert.Contains(t, a.HTML, "*bold*")
}

func TestEmptySelection(t *testing.T) {
	a, err := Build(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(a.HTML))
}
