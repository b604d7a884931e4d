// Package responder builds persuasive responses from a topic's argument bank.
package responder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kopibot/kopi/internal/core"
)

// Strategy tags one of the four response-construction templates.
type Strategy string

const (
	StrategyAcknowledgeAndCounter Strategy = "acknowledge_and_counter"
	StrategyProvideEvidence       Strategy = "provide_evidence"
	StrategyLogicalProgression    Strategy = "logical_progression"
	StrategyEmotionalAppeal       Strategy = "emotional_appeal"
)

// Fixed phrase banks, one per strategy. Loaded once, never mutated.
var (
	acknowledgments = []string{
		"I understand your perspective, but let me share a different viewpoint.",
		"That's an interesting point, however, consider this:",
		"I can see why you might think that, but the evidence suggests otherwise.",
		"While I respect your opinion, I believe there's more to consider:",
	}
	evidenceIntros = []string{
		"Let me share some compelling evidence:",
		"The data clearly shows:",
		"Research consistently demonstrates:",
		"Multiple studies have proven:",
	}
	emotionalIntros = []string{
		"Think about the impact this has on real people:",
		"Consider what this means for future generations:",
		"This isn't just about data - it's about lives:",
		"The human cost of ignoring this issue is significant:",
	}
	logicalConnectors = []string{
		"Following this logic further:",
		"If we accept that premise, then:",
		"Building on that foundation:",
		"Taking this reasoning to its conclusion:",
	}
)

// SelectStrategy picks a response strategy from the turn position and the
// number of extracted user arguments. Evaluated in order, first match wins.
func SelectStrategy(historyLen int, userPoints []string) Strategy {
	switch {
	case historyLen <= 2:
		return StrategyAcknowledgeAndCounter
	case historyLen <= 4:
		return StrategyProvideEvidence
	case len(userPoints) > 2:
		return StrategyLogicalProgression
	default:
		return StrategyEmotionalAppeal
	}
}

// Generator produces templated persuasive text. The random source is seeded
// from the clock; repetition across turns is acceptable.
type Generator struct {
	rng *rand.Rand
}

// New creates a new Generator.
func New() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate builds a response for the strategy: a random phrase from the
// strategy's bank joined with a random key argument. The bool reports that
// the deterministic fallback was used (nil topic or empty argument bank).
// The returned text is always non-empty.
func (g *Generator) Generate(strategy Strategy, topic *core.DebateTopic) (string, bool) {
	if topic == nil || len(topic.KeyArguments) == 0 {
		return g.fallback(topic), true
	}

	var bank []string
	switch strategy {
	case StrategyAcknowledgeAndCounter:
		bank = acknowledgments
	case StrategyProvideEvidence:
		bank = evidenceIntros
	case StrategyEmotionalAppeal:
		bank = emotionalIntros
	case StrategyLogicalProgression:
		bank = logicalConnectors
	default:
		return fmt.Sprintf("Let me emphasize a key point about %s: %s",
			topic.Topic, g.pick(topic.KeyArguments)), false
	}

	return g.pick(bank) + " " + g.pick(topic.KeyArguments), false
}

// fallback produces a deterministic topic-referencing sentence for malformed
// topics so generation never fails.
func (g *Generator) fallback(topic *core.DebateTopic) string {
	name := "this topic"
	if topic != nil && topic.Topic != "" {
		name = topic.Topic
	}
	return fmt.Sprintf("My position on %s stands: the evidence strongly supports it.", name)
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}
