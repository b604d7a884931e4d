package topics

import (
	"testing"

	"github.com/kopibot/kopi/internal/core"
)

func TestKeys(t *testing.T) {
	keys := Keys()

	if len(keys) != 4 {
		t.Errorf("wrong count: got %d, want 4", len(keys))
	}

	required := []string{"climate_change", "earth_shape", "evolution", "vaccines"}
	for _, key := range required {
		found := false
		for _, k := range keys {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("topic %s not found", key)
		}
	}
}

func TestGet(t *testing.T) {
	t.Run("KnownTopic", func(t *testing.T) {
		topic := Get("climate_change")
		if topic == nil {
			t.Fatal("topic not found")
		}
		if topic.Topic != "climate change" {
			t.Errorf("wrong Topic: got %s, want climate change", topic.Topic)
		}
		if topic.Stance != core.StanceStronglyFor {
			t.Errorf("wrong Stance: got %s, want %s", topic.Stance, core.StanceStronglyFor)
		}
		if len(topic.KeyArguments) == 0 {
			t.Error("known topic must have key arguments")
		}
		if len(topic.CounterResponses) == 0 {
			t.Error("known topic must have counter responses")
		}
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		if Get("nonexistent") != nil {
			t.Error("expected nil for unknown topic")
		}
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		a := Get("vaccines")
		a.KeyArguments[0] = "mutated"
		a.CounterResponses["side_effects"] = "mutated"

		b := Get("vaccines")
		if b.KeyArguments[0] == "mutated" {
			t.Error("mutating a returned topic must not affect the knowledge base")
		}
		if b.CounterResponses["side_effects"] == "mutated" {
			t.Error("mutating counter responses must not affect the knowledge base")
		}
	})
}

func TestKnown(t *testing.T) {
	if !Known("vaccines") {
		t.Error("vaccines should be known")
	}
	if Known("general_discussion") {
		t.Error("general_discussion should not be known")
	}
}

func TestAllTopicsHaveArguments(t *testing.T) {
	for _, key := range Keys() {
		topic := Get(key)
		if len(topic.KeyArguments) == 0 {
			t.Errorf("topic %s has no key arguments", key)
		}
		if !topic.Stance.Valid() {
			t.Errorf("topic %s has invalid stance %q", key, topic.Stance)
		}
	}
}
