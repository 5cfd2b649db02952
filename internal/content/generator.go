package content

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Generator produces randomized challenge texts from a word list, for
// races over generated rather than curated content.
type Generator struct {
	words []string
	rnd   *rand.Rand
}

// NewGenerator returns a generator over the given words, seeded with the
// current time.
func NewGenerator(words []string) *Generator {
	return &Generator{
		words: words,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Text builds a challenge of count words with the given capitalization and
// punctuation probabilities.
func (g *Generator) Text(count int, capsPct, punctPct float64, punctSet []rune) string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := g.words[g.rnd.Intn(len(g.words))]
		if g.rnd.Float64() < capsPct {
			word = capitalize(word)
		}
		if len(punctSet) > 0 && g.rnd.Float64() < punctPct {
			word += string(punctSet[g.rnd.Intn(len(punctSet))])
		}
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

// Challenge wraps Text as a Provider-style challenge with a generated ref.
func (g *Generator) Challenge(count int, capsPct, punctPct float64, punctSet []rune) Challenge {
	return Challenge{
		ID:   fmt.Sprintf("generated-%d", g.rnd.Int31()),
		Text: g.Text(count, capsPct, punctPct, punctSet),
	}
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
