package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "hrflow/internal/errors"
)

// Minimum amount of extractable text below which a CV PDF is treated
// as unreadable (scanned image, corrupt file).
const minTextThreshold = 100

type PDFParserService interface {
	ExtractText(filepath string) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("file does not exist: %s", filePath), err)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			"failed to open PDF", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if len(text) < minTextThreshold {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			"PDF contains too little extractable text", nil)
	}

	return text, nil
}

// CleanText normalizes extracted text: trimmed lines, blank lines
// dropped.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
