// ABOUTME: Splits long transcripts into token-bounded segments for embedding
// ABOUTME: Breaks on paragraph boundaries first, then sentences
package transcript

import "strings"

// Segments splits text into pieces of at most maxTokens estimated tokens.
// Paragraph boundaries are preferred; a paragraph that is itself too large
// is split on sentences. A segment never breaks mid-sentence, so a single
// sentence longer than the budget becomes its own oversized segment.
// Text within budget comes back as a single segment.
func Segments(text string, maxTokens int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	var segments []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(text) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if EstimateTokens(para) > maxTokens {
			// Paragraph alone blows the budget: fall back to sentences.
			for _, sent := range splitSentences(para) {
				if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(sent) > maxTokens {
					flush()
				}
				appendPiece(&current, sent, " ")
			}
			continue
		}

		if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(para) > maxTokens {
			flush()
		}
		appendPiece(&current, para, "\n\n")
	}
	flush()

	return segments
}

// EstimateTokens approximates the token count of text. Four characters
// per token tracks typical English clinical notes closely enough for
// budget decisions.
func EstimateTokens(text string) int {
	return len(text) / 4
}

func appendPiece(b *strings.Builder, piece, sep string) {
	if b.Len() > 0 {
		b.WriteString(sep)
	}
	b.WriteString(piece)
}

// splitParagraphs splits text by blank lines
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n\n")
}

// splitSentences splits text by period + space, keeping the period
func splitSentences(text string) []string {
	parts := strings.Split(text, ". ")

	var result []string
	for i, sent := range parts {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		if i < len(parts)-1 && !strings.HasSuffix(sent, ".") {
			sent += "."
		}
		result = append(result, sent)
	}
	return result
}
