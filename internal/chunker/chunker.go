// Package chunker implements deterministic fixed-size, fixed-overlap text
// segmentation. Chunk boundaries are measured in Unicode code points so a
// multi-byte character is never split, and the window parameters are
// validated at construction so the sliding window can never loop forever.
package chunker

import (
	"fmt"
)

// Default window parameters, matching the ingestion sizing the rest of the
// pipeline is tuned for.
const (
	// DefaultSize is the maximum number of code points per chunk.
	DefaultSize = 1000
	// DefaultOverlap is the number of code points shared between consecutive chunks.
	DefaultOverlap = 200
)

// Config holds the chunking window parameters.
type Config struct {
	// Size is the maximum chunk length in code points. Defaults to DefaultSize if zero.
	Size int
	// Overlap is the number of code points repeated from the end of one chunk
	// at the start of the next. Defaults to DefaultOverlap when Size is also
	// left zero, otherwise used as given.
	Overlap int
}

// Chunker splits text into overlapping segments.
type Chunker struct {
	// size is the validated chunk length in code points.
	size int
	// overlap is the validated overlap in code points.
	overlap int
}

// New constructs a Chunker, applying defaults and validating the window.
// Size must be strictly greater than Overlap and Overlap must be
// non-negative; anything else would make the window stall or walk backwards.
func New(cfg Config) (*Chunker, error) {
	size := cfg.Size
	overlap := cfg.Overlap
	if size == 0 && overlap == 0 {
		size = DefaultSize
		overlap = DefaultOverlap
	}
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured chunk length in code points.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in code points.
func (c *Chunker) Overlap() int { return c.overlap }

// Split segments text into chunks of at most Size code points, each starting
// Size-Overlap code points after the previous. The final chunk may be shorter
// than Size. Empty input yields a nil slice; callers that consider an empty
// document an error must reject it before chunking.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	length := len(runes)
	if length == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < length; start += step {
		end := start + c.size
		if end > length {
			end = length
		}
		chunks = append(chunks, string(runes[start:end]))
		// Once a chunk reaches the end of the text, any further window would
		// fall entirely inside this chunk's tail. Stop here so the chunk
		// count is ceil((length-overlap)/(size-overlap)) and no chunk is a
		// pure suffix of its predecessor.
		if end == length {
			break
		}
	}
	return chunks
}
