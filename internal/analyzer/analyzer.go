// Package analyzer classifies debate messages into topics and stances.
//
// Classification is deterministic keyword matching: no NLP, no inference.
// The same message always yields the same (topic key, stance) pair.
package analyzer

import (
	"strings"

	"github.com/kopibot/kopi/internal/core"
)

// FallbackReason tags a classification that degraded to a default instead
// of matching a keyword group. Empty means a normal classification.
type FallbackReason string

const (
	FallbackNone         FallbackReason = ""
	FallbackEmptyMessage FallbackReason = "empty_message"
	FallbackNoKeywords   FallbackReason = "no_keywords"
)

// Classification is the result of analyzing a message.
type Classification struct {
	TopicKey string
	Stance   core.Stance
	Fallback FallbackReason
}

// topicKeywords lists the fixed keyword groups in priority order.
// The first group with a match wins.
var topicKeywords = []struct {
	key   string
	words []string
}{
	{"climate_change", []string{"climate change", "global warming", "environment"}},
	{"earth_shape", []string{"flat earth", "earth is flat", "globe"}},
	{"vaccines", []string{"vaccines", "vaccination", "immunization"}},
	{"evolution", []string{"evolution", "darwin", "species"}},
}

// skepticalKeywords trigger the hardened climate stance.
var skepticalKeywords = []string{"fake", "hoax", "not real", "scam"}

// Keyword sets for the contrarian stance heuristic.
var (
	positiveKeywords = []string{"good", "great", "excellent", "love", "like", "support", "agree", "yes", "true"}
	negativeKeywords = []string{"bad", "terrible", "awful", "hate", "dislike", "oppose", "disagree", "no", "false"}
)

// stopWords are discarded during generic topic extraction.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "can": true, "i": true,
	"you": true, "he": true, "she": true, "it": true, "we": true, "they": true,
	"this": true, "that": true, "these": true, "those": true,
}

// GeneralTopicKey is the topic used when nothing can be extracted.
const GeneralTopicKey = "general_discussion"

// Analyzer classifies messages. It is stateless and safe for concurrent use.
type Analyzer struct{}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze maps a message to a topic key and stance. It never fails; degraded
// paths are tagged with a FallbackReason so callers can log them.
func (a *Analyzer) Analyze(message string) Classification {
	if strings.TrimSpace(message) == "" {
		return Classification{
			TopicKey: GeneralTopicKey,
			Stance:   core.StanceFor,
			Fallback: FallbackEmptyMessage,
		}
	}

	key, fallback := a.IdentifyTopic(message)
	return Classification{
		TopicKey: key,
		Stance:   a.DetermineStance(message, key),
		Fallback: fallback,
	}
}

// IdentifyTopic maps a message to a canonical topic key. Keyword groups are
// tested in priority order; with no match the key is synthesized from the
// first three stop-word-filtered words longer than three characters.
func (a *Analyzer) IdentifyTopic(message string) (string, FallbackReason) {
	lower := strings.ToLower(message)

	for _, group := range topicKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				return group.key, FallbackNone
			}
		}
	}

	var keywords []string
	for _, word := range strings.Fields(lower) {
		if stopWords[word] || len(word) <= 3 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 3 {
			break
		}
	}

	if len(keywords) == 0 {
		return GeneralTopicKey, FallbackNoKeywords
	}
	return strings.Join(keywords, "_"), FallbackNone
}

// DetermineStance resolves the stance the bot argues for a topic.
//
// earth_shape and vaccines are non-negotiable positions. For climate_change
// a skeptical message hardens the stance. Everything else takes the
// contrarian stance: oppose whichever sentiment dominates the message, with
// ties resolving to for.
func (a *Analyzer) DetermineStance(message, topicKey string) core.Stance {
	lower := strings.ToLower(message)

	switch topicKey {
	case "earth_shape", "vaccines":
		return core.StanceStronglyFor
	case "climate_change":
		for _, word := range skepticalKeywords {
			if strings.Contains(lower, word) {
				return core.StanceStronglyFor
			}
		}
		return core.StanceFor
	}

	positive := countMatches(lower, positiveKeywords)
	negative := countMatches(lower, negativeKeywords)
	if positive > negative {
		return core.StanceAgainst
	}
	return core.StanceFor
}

func countMatches(lower string, keywords []string) int {
	count := 0
	for _, word := range keywords {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count
}
