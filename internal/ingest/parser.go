package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of one manual page.
type PageText struct {
	Page int
	Text string
}

var pageFileRe = regexp.MustCompile(`page[_-]?(\d+)`)

// ParsePDF extracts plain text per page from a manual PDF.
func ParsePDF(path string) ([]PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, PageText{Page: i, Text: text})
	}
	return pages, nil
}

// ParsePageTexts reads per-page OCR output files (page_001.txt, ...) from
// a directory, ordered by page number.
func ParsePageTexts(dir string) ([]PageText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var pages []PageText
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		page, ok := pageNumberFromName(entry.Name())
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Page: page, Text: text})
	}

	sort.Slice(pages, func(a, b int) bool { return pages[a].Page < pages[b].Page })
	return pages, nil
}

// FindPageImages scans a directory for rendered page images keyed by page
// number (page_001.jpg, page-16.png, ...).
func FindPageImages(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	images := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}
		page, ok := pageNumberFromName(entry.Name())
		if !ok {
			continue
		}
		images[page] = filepath.Join(dir, entry.Name())
	}
	return images, nil
}

func pageNumberFromName(name string) (int, bool) {
	m := pageFileRe.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return page, true
}

var sentenceEndRe = regexp.MustCompile(`([.!?。])\s+`)

// SplitSentences cuts page text into sentence-level units: first by line,
// then by sentence-ending punctuation. Blank and one-character fragments
// are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		marked := sentenceEndRe.ReplaceAllString(line, "$1\x00")
		for _, sent := range strings.Split(marked, "\x00") {
			sent = strings.TrimSpace(sent)
			if len([]rune(sent)) < 2 {
				continue
			}
			sentences = append(sentences, sent)
		}
	}
	return sentences
}
