package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits knowledge-base documents into overlapping chunks
// sized for embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraph boundaries are
// preferred; oversized paragraphs fall back to sentence splits.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	paragraphs := strings.Split(text, "\n\n")

	// All size accounting is in runes so multibyte text chunks the
	// same as ASCII.
	var chunks []string
	var currentChunk strings.Builder
	currentRunes := 0

	write := func(s string) {
		currentChunk.WriteString(s)
		currentRunes += utf8.RuneCountInString(s)
	}

	flush := func(sep string) {
		if currentRunes == 0 {
			return
		}
		chunks = append(chunks, currentChunk.String())
		currentChunk.Reset()
		currentRunes = 0
		if overlap > 0 {
			overlapText := lastNRunes(chunks[len(chunks)-1], overlap)
			write(overlapText)
			if overlapText != "" {
				write(sep)
			}
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraRunes := utf8.RuneCountInString(para)

		if paraRunes > maxChunkSize {
			for _, sentence := range splitIntoSentences(para) {
				if currentRunes+utf8.RuneCountInString(sentence)+1 > maxChunkSize {
					flush(" ")
				}
				if currentRunes > 0 {
					write(" ")
				}
				write(sentence)
			}
			continue
		}

		if currentRunes+paraRunes+2 > maxChunkSize {
			flush("\n\n")
		}
		if currentRunes > 0 {
			write("\n\n")
		}
		write(para)
	}

	if currentRunes > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var result []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func lastNRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
