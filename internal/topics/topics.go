// Package topics defines the built-in debate knowledge base.
package topics

import (
	"sort"

	"github.com/kopibot/kopi/internal/core"
)

// builtin maps canonical topic keys to fully authored debate topics.
// It is constructed once and never mutated; Get hands out copies.
var builtin = map[string]*core.DebateTopic{
	"climate_change": {
		Topic:  "climate change",
		Stance: core.StanceStronglyFor,
		KeyArguments: []string{
			"97% of climate scientists agree that human activities are the primary cause",
			"Global temperatures have risen consistently over the past century",
			"Ice caps are melting at unprecedented rates",
			"Extreme weather events are becoming more frequent",
		},
		CounterResponses: map[string]string{
			"natural_cycles":    "While Earth has natural climate cycles, the current rate of change is far beyond natural variation",
			"data_manipulation": "Climate data comes from thousands of independent sources worldwide, making manipulation impossible",
			"economic_costs":    "The cost of inaction far exceeds the cost of addressing climate change now",
		},
	},
	"vaccines": {
		Topic:  "vaccines",
		Stance: core.StanceStronglyFor,
		KeyArguments: []string{
			"Vaccines have eradicated diseases like polio and significantly reduced mortality",
			"Rigorous clinical trials prove vaccine safety and efficacy",
			"Herd immunity protects vulnerable populations",
			"The risk of serious vaccine side effects is extremely low",
		},
		CounterResponses: map[string]string{
			"side_effects":     "Serious side effects are extremely rare and far outweighed by benefits",
			"natural_immunity": "Natural immunity comes at the cost of serious illness and potential death",
			"big_pharma":       "Vaccines are monitored by independent health agencies worldwide",
		},
	},
	"earth_shape": {
		Topic:  "earth shape",
		Stance: core.StanceStronglyFor,
		KeyArguments: []string{
			"Satellite imagery from dozens of independent space agencies shows a spherical Earth",
			"Ships disappear hull-first over the horizon, which only a curved surface explains",
			"Circumnavigation along different routes is only possible on a globe",
			"Time zones exist because the Earth is a rotating sphere lit by the Sun",
		},
		CounterResponses: map[string]string{
			"conspiracy":         "A cover-up would require millions of people across rival nations to cooperate perfectly",
			"photos_faked":       "Amateur high-altitude balloon footage shows the same curvature as agency imagery",
			"horizon_looks_flat": "The Earth is so large that its curvature is imperceptible at ground level",
		},
	},
	"evolution": {
		Topic:  "evolution",
		Stance: core.StanceFor,
		KeyArguments: []string{
			"The fossil record shows gradual change in species across millions of years",
			"DNA comparisons confirm common ancestry between species",
			"Antibiotic resistance in bacteria is evolution observed in real time",
			"Transitional fossils like Tiktaalik match evolutionary predictions precisely",
		},
		CounterResponses: map[string]string{
			"just_a_theory": "In science a theory is the highest standard of evidence, not a guess",
			"missing_links": "Thousands of transitional fossils have been catalogued and more are found every year",
			"complexity":    "Complex organs evolve through incremental steps, each useful on its own",
		},
	},
}

// Get returns a copy of the built-in topic for the given key, or nil.
func Get(key string) *core.DebateTopic {
	if t, ok := builtin[key]; ok {
		return t.Clone()
	}
	return nil
}

// Keys returns all knowledge-base topic keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(builtin))
	for k := range builtin {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Known checks if a topic key has a knowledge-base entry.
func Known(key string) bool {
	_, ok := builtin[key]
	return ok
}
