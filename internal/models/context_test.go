package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLongTermScalarsLastWriteWins(t *testing.T) {
	c := &ConversationContext{ThreadID: "t1", Version: 1}

	c.MergeLongTerm(LongTermContext{BusinessName: "Beanhouse", Industry: "coffee"})
	c.MergeLongTerm(LongTermContext{BusinessName: "Beanhouse Roasters"})

	assert.Equal(t, "Beanhouse Roasters", c.LongTerm.BusinessName)
	// An empty scalar never clobbers an existing value.
	assert.Equal(t, "coffee", c.LongTerm.Industry)
}

// Merging goal lists in either order yields the same de-duplicated set.
func TestMergeLongTermListsCommutative(t *testing.T) {
	updateA := LongTermContext{BusinessGoals: []string{"grow revenue", "open second location"}}
	updateB := LongTermContext{BusinessGoals: []string{"open second location", "launch website"}}

	ab := &ConversationContext{}
	ab.MergeLongTerm(updateA)
	ab.MergeLongTerm(updateB)

	ba := &ConversationContext{}
	ba.MergeLongTerm(updateB)
	ba.MergeLongTerm(updateA)

	assert.ElementsMatch(t, ab.LongTerm.BusinessGoals, ba.LongTerm.BusinessGoals)
	assert.Len(t, ab.LongTerm.BusinessGoals, 3)
}

func TestMergeLongTermAssetsDedupByName(t *testing.T) {
	c := &ConversationContext{}
	c.MergeLongTerm(LongTermContext{Assets: []Asset{{Name: "logo", Type: "image", URL: "https://cdn/a.png"}}})
	c.MergeLongTerm(LongTermContext{Assets: []Asset{
		{Name: "Logo", Type: "image", URL: "https://cdn/b.png"},
		{Name: "jingle", Type: "audio", URL: "https://cdn/c.mp3"},
	}})

	assert.Len(t, c.LongTerm.Assets, 2)
	// The original entry survives; the case-insensitive duplicate is dropped.
	assert.Equal(t, "https://cdn/a.png", c.LongTerm.Assets[0].URL)
}

func TestMergeLongTermCustomData(t *testing.T) {
	c := &ConversationContext{}
	c.MergeLongTerm(LongTermContext{CustomData: map[string]string{"favorite_color": "teal"}})
	c.MergeLongTerm(LongTermContext{CustomData: map[string]string{"favorite_color": "navy", "mascot": "owl"}})

	assert.Equal(t, "navy", c.LongTerm.CustomData["favorite_color"])
	assert.Equal(t, "owl", c.LongTerm.CustomData["mascot"])
}

func TestMergeShortTermTopicsMostRecentFirst(t *testing.T) {
	c := &ConversationContext{}
	c.MergeShortTerm(ShortTermContext{RecentTopics: []string{"logo design"}})
	c.MergeShortTerm(ShortTermContext{RecentTopics: []string{"pricing page"}})

	assert.Equal(t, []string{"pricing page", "logo design"}, c.ShortTerm.RecentTopics)

	// Re-mentioning a topic moves it to the front without duplicating it.
	c.MergeShortTerm(ShortTermContext{RecentTopics: []string{"logo design"}})
	assert.Equal(t, []string{"logo design", "pricing page"}, c.ShortTerm.RecentTopics)
}

func TestMergeShortTermTopicsCapped(t *testing.T) {
	c := &ConversationContext{}
	for i := 0; i < MaxRecentTopics+5; i++ {
		c.MergeShortTerm(ShortTermContext{RecentTopics: []string{topicName(i)}})
	}

	assert.Len(t, c.ShortTerm.RecentTopics, MaxRecentTopics)
	// Most recent first, oldest evicted.
	assert.Equal(t, topicName(MaxRecentTopics+4), c.ShortTerm.RecentTopics[0])
}

func topicName(i int) string {
	return "topic-" + string(rune('a'+i))
}

func TestCloneIsDeep(t *testing.T) {
	c := &ConversationContext{
		LongTerm: LongTermContext{
			BusinessGoals: []string{"grow"},
			CustomData:    map[string]string{"k": "v"},
		},
		ShortTerm: ShortTermContext{RecentTopics: []string{"a"}},
	}

	cp := c.Clone()
	cp.LongTerm.BusinessGoals[0] = "changed"
	cp.LongTerm.CustomData["k"] = "changed"
	cp.ShortTerm.RecentTopics[0] = "changed"

	assert.Equal(t, "grow", c.LongTerm.BusinessGoals[0])
	assert.Equal(t, "v", c.LongTerm.CustomData["k"])
	assert.Equal(t, "a", c.ShortTerm.RecentTopics[0])
}
