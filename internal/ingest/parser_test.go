package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageTexts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_002.txt"), []byte("두 번째 페이지"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_001.txt"), []byte("첫 페이지"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_003.txt"), []byte("   "), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("무시"), 0o644))

	pages, err := ParsePageTexts(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Page)
	assert.Equal(t, "첫 페이지", pages[0].Text)
	assert.Equal(t, 2, pages[1].Page)
}

func TestFindPageImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_012.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page-7.PNG"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page_012.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("x"), 0o644))

	images, err := FindPageImages(dir)
	require.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Equal(t, filepath.Join(dir, "page_012.jpg"), images[12])
	assert.Equal(t, filepath.Join(dir, "page-7.PNG"), images[7])
}

func TestSplitSentences(t *testing.T) {
	text := "필터를 분리하세요. 물로 세척하세요.\n완전히 말린 뒤 장착합니다.\n\n1\n"
	sentences := SplitSentences(text)
	assert.Equal(t, []string{
		"필터를 분리하세요.",
		"물로 세척하세요.",
		"완전히 말린 뒤 장착합니다.",
	}, sentences)
}

func TestSplitSentencesKeepsUnpunctuatedLines(t *testing.T) {
	sentences := SplitSentences("경고등 표시\n점검 주기 안내")
	assert.Equal(t, []string{"경고등 표시", "점검 주기 안내"}, sentences)
}
