// Package text loads the fixed race-text corpus and serves random picks
// at race start.
package text

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// corpusSize is the number of race texts, stored as <dir>/1.txt..10.txt.
const corpusSize = 10

// Corpus holds the race texts loaded at startup.
type Corpus struct {
	texts []string
}

// Load reads every text in the corpus. A missing or unreadable file is a
// startup error.
func Load(dir string) (*Corpus, error) {
	texts := make([]string, 0, corpusSize)
	for i := 1; i <= corpusSize; i++ {
		path := filepath.Join(dir, strconv.Itoa(i)+".txt")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read race text: %w", err)
		}
		texts = append(texts, strings.TrimSpace(string(data)))
	}
	return &Corpus{texts: texts}, nil
}

// Pick returns a uniformly random race text.
func (c *Corpus) Pick() string {
	return c.texts[rand.Intn(len(c.texts))]
}
