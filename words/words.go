package words

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wfunc/neonwhisper/models"
)

var ErrNoWords = errors.New("no words for difficulty")

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin parses the embedded corpus.
func Builtin() ([]models.WordEntry, error) {
	return Parse(builtinYAML)
}

// Parse reads a corpus laid out as difficulty -> category -> words.
func Parse(data []byte) ([]models.WordEntry, error) {
	var doc map[string]map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse word corpus: %w", err)
	}

	var entries []models.WordEntry
	for difficulty, categories := range doc {
		for category, list := range categories {
			for _, w := range list {
				w = strings.TrimSpace(w)
				if w == "" {
					continue
				}
				entries = append(entries, models.WordEntry{
					Word:       w,
					Category:   category,
					Difficulty: models.Difficulty(strings.ToLower(difficulty)),
				})
			}
		}
	}
	// Map iteration is random; keep the corpus order stable for seeded draws.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Difficulty != b.Difficulty {
			return a.Difficulty < b.Difficulty
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Word < b.Word
	})
	return entries, nil
}

// bag deals entries without replacement and refills itself when empty.
type bag struct {
	entries []models.WordEntry
	next    []int
	last    int
}

// Corpus is an in-memory game.WordPicker. Each difficulty has its own shuffle bag so
// every word is used once before any word repeats.
type Corpus struct {
	mu   sync.Mutex
	rng  *rand.Rand
	bags map[models.Difficulty]*bag
}

// NewCorpus groups entries by difficulty. A nil rng uses a randomly seeded one.
func NewCorpus(entries []models.WordEntry, rng *rand.Rand) *Corpus {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &Corpus{rng: rng, bags: make(map[models.Difficulty]*bag)}
	for _, e := range entries {
		b, ok := c.bags[e.Difficulty]
		if !ok {
			b = &bag{last: -1}
			c.bags[e.Difficulty] = b
		}
		b.entries = append(b.entries, e)
	}
	return c
}

// Size reports how many entries the corpus holds for difficulty.
func (c *Corpus) Size(difficulty models.Difficulty) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bags[difficulty]; ok {
		return len(b.entries)
	}
	return 0
}

func (c *Corpus) Pick(difficulty models.Difficulty) (models.WordEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bags[difficulty]
	if !ok || len(b.entries) == 0 {
		return models.WordEntry{}, fmt.Errorf("%w %q", ErrNoWords, difficulty)
	}
	if len(b.next) == 0 {
		b.next = c.rng.Perm(len(b.entries))
		// Never hand out the same word twice in a row across a refill.
		if len(b.next) > 1 && b.next[0] == b.last {
			b.next[0], b.next[len(b.next)-1] = b.next[len(b.next)-1], b.next[0]
		}
	}
	i := b.next[0]
	b.next = b.next[1:]
	b.last = i
	return b.entries[i], nil
}
