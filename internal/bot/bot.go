// Package bot orchestrates topic analysis and response generation.
package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kopibot/kopi/internal/analyzer"
	"github.com/kopibot/kopi/internal/core"
	"github.com/kopibot/kopi/internal/responder"
	"github.com/kopibot/kopi/internal/topics"
)

// maxUserArguments caps how many argument sentences are extracted per message.
const maxUserArguments = 3

// minArgumentLength filters out sentences too short to be arguments.
const minArgumentLength = 20

// Bot is the debate orchestrator. It holds only read-only state and is safe
// for concurrent use.
type Bot struct {
	analyzer *analyzer.Analyzer
	gen      *responder.Generator
}

// New creates a new Bot.
func New() *Bot {
	return &Bot{
		analyzer: analyzer.New(),
		gen:      responder.New(),
	}
}

// Reply is the result of a single response turn.
type Reply struct {
	Text     string
	Strategy responder.Strategy
	Fallback bool
}

// AnalyzeFirstMessage classifies the first message of a conversation and
// resolves the debate topic the bot will argue for its whole lifetime.
func (b *Bot) AnalyzeFirstMessage(message string) (string, *core.DebateTopic) {
	c := b.analyzer.Analyze(message)
	if c.Fallback != analyzer.FallbackNone {
		slog.Debug("Classification fell back to default", "reason", string(c.Fallback))
	}
	return c.TopicKey, b.ResolveTopic(c.TopicKey, c.Stance)
}

// ResolveTopic builds the DebateTopic for a (topic key, stance) pair. Known
// topics return the knowledge-base template verbatim; its stance takes
// precedence over the analyzer-determined one. Unknown topics get a
// synthesized generic topic with the given stance.
func (b *Bot) ResolveTopic(topicKey string, stance core.Stance) *core.DebateTopic {
	if t := topics.Get(topicKey); t != nil {
		return t
	}

	display := strings.ReplaceAll(topicKey, "_", " ")
	return &core.DebateTopic{
		Topic:  display,
		Stance: stance,
		KeyArguments: []string{
			fmt.Sprintf("There is substantial evidence supporting the position on %s", display),
			fmt.Sprintf("Expert consensus generally aligns with this view of %s", display),
			fmt.Sprintf("The practical implications of this position on %s are significant", display),
		},
		CounterResponses: map[string]string{
			"lack_evidence":       fmt.Sprintf("The evidence for this position on %s is well-documented and peer-reviewed", display),
			"expert_disagreement": fmt.Sprintf("While there may be some debate, the majority of experts agree on %s", display),
			"practical_concerns":  fmt.Sprintf("The practical benefits of this position on %s outweigh the concerns", display),
		},
	}
}

// Respond generates a persuasive reply to the user's message. It never fails:
// malformed topics degrade to a deterministic topic-referencing sentence.
func (b *Bot) Respond(message string, history []core.Message, topic *core.DebateTopic) Reply {
	userPoints := ExtractArguments(message)
	strategy := responder.SelectStrategy(len(history), userPoints)

	text, fallback := b.gen.Generate(strategy, topic)
	text = ensureStanceConsistency(text, topic)

	if fallback {
		slog.Debug("Response generation fell back to default", "strategy", string(strategy))
	}

	return Reply{Text: text, Strategy: strategy, Fallback: fallback}
}

// GenerateResponse is the string-only convenience form of Respond.
func (b *Bot) GenerateResponse(message string, history []core.Message, topic *core.DebateTopic) string {
	return b.Respond(message, history, topic).Text
}

// ExtractArguments pulls up to three argument sentences from a message:
// split on ".", trimmed, longer than 20 characters. When nothing survives
// the whole message counts as a single argument.
func ExtractArguments(message string) []string {
	var args []string
	for _, sentence := range strings.Split(message, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > minArgumentLength {
			args = append(args, sentence)
		}
		if len(args) == maxUserArguments {
			break
		}
	}

	if len(args) == 0 {
		return []string{message}
	}
	return args
}

// ensureStanceConsistency is a reserved hook for stance reinforcement.
// It currently returns the response unchanged.
func ensureStanceConsistency(text string, topic *core.DebateTopic) string {
	return text
}
