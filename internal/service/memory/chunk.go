package memory

import "strings"

const defaultChunkSize = 1000

// ChunkRunes cuts text into consecutive pieces of at most size runes with no
// overlap. Pieces that are only whitespace are dropped.
func ChunkRunes(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}

	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		chunk := string(runes[i:end])
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
