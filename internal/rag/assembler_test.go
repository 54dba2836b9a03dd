package rag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssembler() Assembler {
	return Assembler{
		ImageRoot:    "data/processed",
		ImageMount:   "/manual-pages",
		StaticPrefix: "/static",
	}
}

func TestContextBlockNumbersAndPages(t *testing.T) {
	block := testAssembler().ContextBlock([]Hit{
		{Page: 12, Text: "필터를 분리합니다."},
		{Page: 13, Text: "물로 세척합니다."},
	})
	assert.Contains(t, block, "1. [p.12] 필터를 분리합니다.")
	assert.Contains(t, block, "2. [p.13] 물로 세척합니다.")
}

func TestPagesMapsImagePathToMountURL(t *testing.T) {
	pages := testAssembler().Pages([]Hit{
		{ManualID: 7, Page: 12, Score: 0.9, Text: "내용", ImagePath: "data/processed/ac-01/page_012.jpg"},
	})
	require.Len(t, pages, 1)
	assert.Equal(t, "/manual-pages/ac-01/page_012.jpg", pages[0].ImageURL)
	// File does not exist, so no inline payload.
	assert.Empty(t, pages[0].ImageBase64)
}

func TestPagesFallsBackToStaticPrefix(t *testing.T) {
	pages := testAssembler().Pages([]Hit{
		{Page: 3, ImagePath: "/srv/images/page_003.png"},
	})
	require.Len(t, pages, 1)
	assert.Equal(t, "/static/srv/images/page_003.png", pages[0].ImageURL)
}

func TestPagesWithoutImage(t *testing.T) {
	pages := testAssembler().Pages([]Hit{{ManualID: 7, Page: 12, Text: "내용"}})
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].ImageURL)
	assert.Empty(t, pages[0].ImageBase64)
}

func TestEncodeImageDataURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page_001.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644))

	uri, ok := EncodeImageDataURI(path)
	require.True(t, ok)
	assert.Contains(t, uri, "data:image/png;base64,")

	_, ok = EncodeImageDataURI(filepath.Join(dir, "missing.png"))
	assert.False(t, ok)
}

func TestMimeForImage(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeForImage("a/page_001.JPG"))
	assert.Equal(t, "image/jpeg", MimeForImage("a/page_001.jpeg"))
	assert.Equal(t, "image/png", MimeForImage("a/page_001.png"))
	assert.Equal(t, "image/*", MimeForImage("a/page_001.webp"))
}
