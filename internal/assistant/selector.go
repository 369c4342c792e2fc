package assistant

import (
	"math/rand/v2"
	"unicode/utf8"
)

// MinExternalLength is the number of code points a generated reply must
// exceed to be used instead of a canned response.
const MinExternalLength = 10

// RandomSource picks an index in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type systemRandom struct{}

func (systemRandom) IntN(n int) int { return rand.IntN(n) }

// SystemRandom draws from the runtime's auto-seeded generator.
func SystemRandom() RandomSource { return systemRandom{} }

// Source records where a reply came from.
type Source string

const (
	SourcePool       Source = "pool"
	SourceGenerated  Source = "generated"
	SourceAdapted    Source = "adapted"
	SourceEmptyInput Source = "empty_input"
	SourceFault      Source = "fault"
)

// Selector chooses the reply text for a classified message.
type Selector struct {
	pools   map[Intent][]string
	adapter *Adapter
	rnd     RandomSource
}

func NewSelector(c *Catalog, rnd RandomSource) *Selector {
	if rnd == nil {
		rnd = SystemRandom()
	}
	pools := make(map[Intent][]string, len(c.Responses))
	for intent, responses := range c.Responses {
		pools[intent] = append([]string(nil), responses...)
	}
	return &Selector{
		pools:   pools,
		adapter: NewAdapter(c.Adaptations),
		rnd:     rnd,
	}
}

// Select returns the reply for intent. A usable external reply wins over the
// pools; for Telugu and mixed input it is adapted first and discarded if the
// adaptation does not take.
func (s *Selector) Select(intent Intent, lang Language, external string) string {
	text, _ := s.choose(intent, lang, external)
	return text
}

func (s *Selector) choose(intent Intent, lang Language, external string) (string, Source) {
	if utf8.RuneCountInString(external) > MinExternalLength {
		if !lang.NeedsAdaptation() {
			return external, SourceGenerated
		}
		if adapted, ok := s.adapter.Adapt(external); ok {
			return adapted, SourceAdapted
		}
	}
	return s.FromPool(intent), SourcePool
}

// FromPool draws uniformly from the pool of intent, falling back to the
// default pool for intents without one.
func (s *Selector) FromPool(intent Intent) string {
	pool, ok := s.pools[intent]
	if !ok || len(pool) == 0 {
		pool = s.pools[IntentDefault]
	}
	return pool[s.rnd.IntN(len(pool))]
}
