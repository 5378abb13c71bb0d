package pipeline

import (
	"regexp"
	"strings"

	"github.com/docquery/docquery/model"
)

var (
	structuredLinePattern = regexp.MustCompile(`^(\d{10,}|[A-Z]{2,3}-\d+)`)
)

// DetectContentType classifies a single line for adaptive chunk sizing
func DetectContentType(line string) model.ContentType {
	line = strings.TrimSpace(line)

	if structuredLinePattern.MatchString(line) {
		return model.ContentTypeStructured
	}
	if len(strings.Split(line, "\t")) > 3 || len(strings.Split(line, ",")) > 3 {
		return model.ContentTypeTabular
	}
	if line == strings.ToUpper(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") || strings.HasSuffix(line, ":") {
		return model.ContentTypeHeader
	}
	return model.ContentTypeText
}

// chunkSizes is the maximum line count per chunk by content type.
// Structured and tabular data get small chunks so counting stays exhaustive.
var chunkSizes = map[model.ContentType]int{
	model.ContentTypeStructured: 25,
	model.ContentTypeTabular:    15,
	model.ContentTypeHeader:     50,
	model.ContentTypeText:       30,
}

// AdaptiveChunker splits a document line-wise, starting a new chunk whenever
// the detected content type changes or the per-type size limit is reached.
// Occurrences of the given entity keywords are counted per chunk.
func AdaptiveChunker(entityKeywords []string) ChunkFunc {
	return func(text string) ([]*model.Chunk, error) {
		lines := strings.Split(text, "\n")

		var chunks []*model.Chunk
		var currentLines []string
		currentType := model.ContentType("")
		startLine := 0

		flush := func(endLine int) {
			if len(currentLines) == 0 {
				return
			}
			content := strings.Join(currentLines, "\n")
			chunks = append(chunks, &model.Chunk{
				ID:        len(chunks),
				Content:   content,
				Type:      currentType,
				StartLine: startLine,
				EndLine:   endLine,
				LineCount: len(currentLines),
				Entities:  countEntities(content, entityKeywords),
				Metadata:  chunkMetadata(content, currentLines),
			})
			currentLines = nil
		}

		for i, line := range lines {
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				continue
			}

			contentType := DetectContentType(stripped)
			limit := chunkSizes[contentType]

			if currentType != contentType || len(currentLines) >= limit {
				flush(i)
				currentType = contentType
				startLine = i + 1
			}
			currentLines = append(currentLines, stripped)
		}
		flush(len(lines))

		return chunks, nil
	}
}

// ParagraphChunker splits text on blank lines, one chunk per paragraph
func ParagraphChunker() ChunkFunc {
	return func(text string) ([]*model.Chunk, error) {
		paragraphs := strings.Split(text, "\n\n")

		var chunks []*model.Chunk
		line := 1
		for _, para := range paragraphs {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			lineCount := strings.Count(para, "\n") + 1
			chunks = append(chunks, &model.Chunk{
				ID:        len(chunks),
				Content:   para,
				Type:      model.ContentTypeText,
				StartLine: line,
				EndLine:   line + lineCount - 1,
				LineCount: lineCount,
				Metadata:  chunkMetadata(para, strings.Split(para, "\n")),
			})
			line += lineCount + 1
		}

		return chunks, nil
	}
}

// chunkMetadata computes per-chunk statistics stored alongside the chunk:
// character length and how many of its lines are structured records.
func chunkMetadata(content string, lines []string) model.Metadata {
	recordLines := 0
	for _, line := range lines {
		if structuredLinePattern.MatchString(strings.TrimSpace(line)) {
			recordLines++
		}
	}
	return model.Metadata{
		"char_length":  len(content),
		"record_lines": recordLines,
	}
}

func countEntities(content string, entityKeywords []string) map[string]int {
	if len(entityKeywords) == 0 {
		return nil
	}
	lower := strings.ToLower(content)
	counts := map[string]int{}
	for _, entity := range entityKeywords {
		entity = strings.ToLower(entity)
		if entity == "" {
			continue
		}
		if n := strings.Count(lower, entity); n > 0 {
			counts[entity] = n
		}
	}
	return counts
}
