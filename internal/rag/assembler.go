package rag

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Assembler turns retrieval hits into an LLM-ready context block and
// client-ready page descriptors.
type Assembler struct {
	ImageRoot    string // filesystem root the server mounts publicly
	ImageMount   string // URL prefix for paths under ImageRoot
	StaticPrefix string // URL prefix for anything else
}

// ContextBlock builds the numbered, page-annotated snippet list fed to the
// prompt.
func (a Assembler) ContextBlock(hits []Hit) string {
	var sb strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&sb, "%d. [p.%d] %s\n\n", i+1, hit.Page, hit.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Snippets returns the page-tagged hit texts.
func (a Assembler) Snippets(hits []Hit) []string {
	snippets := make([]string, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, fmt.Sprintf("[p.%d] %s", hit.Page, hit.Text))
	}
	return snippets
}

// Pages builds the client-facing descriptors. Hits with a registered page
// image get a public URL and, when the file is readable, an inline data
// URI; unreadable files are skipped without error.
func (a Assembler) Pages(hits []Hit) []Page {
	pages := make([]Page, 0, len(hits))
	for _, hit := range hits {
		page := Page{
			ManualID: hit.ManualID,
			Page:     hit.Page,
			Score:    hit.Score,
			Text:     hit.Text,
		}
		if hit.ImagePath != "" {
			page.ImagePath = hit.ImagePath
			page.ImageURL = a.publicURL(hit.ImagePath)
			if uri, ok := EncodeImageDataURI(hit.ImagePath); ok {
				page.ImageBase64 = uri
			}
		}
		pages = append(pages, page)
	}
	return pages
}

func (a Assembler) publicURL(path string) string {
	norm := filepath.ToSlash(path)
	root := strings.TrimSuffix(filepath.ToSlash(a.ImageRoot), "/")
	if root != "" && strings.HasPrefix(norm, root+"/") {
		return a.ImageMount + "/" + strings.TrimPrefix(norm, root+"/")
	}
	return a.StaticPrefix + "/" + strings.TrimPrefix(norm, "/")
}

// EncodeImageDataURI reads the image file and returns a self-contained
// data URI. The MIME type is inferred from the extension; unknown image
// extensions get the generic image type.
func EncodeImageDataURI(path string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("data:%s;base64,%s", MimeForImage(path), base64.StdEncoding.EncodeToString(raw)), true
}

// MimeForImage maps a file extension to its image MIME type.
func MimeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "image/*"
	}
}
