package models

import (
	"strings"
	"time"
)

// MaxRecentTopics bounds the short-term recent-topic list.
const MaxRecentTopics = 10

// Asset is a durable reference to something the user created or uploaded.
type Asset struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// LongTermContext holds durable facts about the user's business that survive
// across conversations. Known keys are typed fields; anything unanticipated
// goes into CustomData.
type LongTermContext struct {
	BusinessName   string            `json:"business_name,omitempty"`
	Industry       string            `json:"industry,omitempty"`
	TargetAudience string            `json:"target_audience,omitempty"`
	BrandTone      string            `json:"brand_tone,omitempty"`
	BusinessGoals  []string          `json:"business_goals,omitempty"`
	SellingPoints  []string          `json:"selling_points,omitempty"`
	Assets         []Asset           `json:"assets,omitempty"`
	CustomData     map[string]string `json:"custom_data,omitempty"`
}

// ShortTermContext holds ephemeral facts about the current task. Scalar
// fields are overwritten per update; RecentTopics is capped and ordered
// most-recent-first.
type ShortTermContext struct {
	CurrentTask      string            `json:"current_task,omitempty"`
	TaskType         string            `json:"task_type,omitempty"`
	RecentTopics     []string          `json:"recent_topics,omitempty"`
	PendingActions   []string          `json:"pending_actions,omitempty"`
	StylePreferences map[string]string `json:"style_preferences,omitempty"`
}

// ConversationContext is the versioned per-thread context record.
type ConversationContext struct {
	ThreadID    string           `json:"thread_id"`
	LongTerm    LongTermContext  `json:"long_term"`
	ShortTerm   ShortTermContext `json:"short_term"`
	Version     int              `json:"version"`
	LastUpdated time.Time        `json:"last_updated"`
}

// ContextUpdates is the delta an interpretation proposes to fold into the
// conversation context after a turn.
type ContextUpdates struct {
	LongTerm  *LongTermContext  `json:"long_term,omitempty"`
	ShortTerm *ShortTermContext `json:"short_term,omitempty"`
}

// IsEmpty reports whether the update carries nothing to merge.
func (u ContextUpdates) IsEmpty() bool {
	return u.LongTerm == nil && u.ShortTerm == nil
}

// MergeLongTerm folds partial long-term facts into the context. Scalars are
// last-write-wins when non-empty; list fields are union-merged with
// de-duplication (assets dedup by name) so two updates arriving in either
// order keep the same set of entries.
func (c *ConversationContext) MergeLongTerm(partial LongTermContext) {
	if partial.BusinessName != "" {
		c.LongTerm.BusinessName = partial.BusinessName
	}
	if partial.Industry != "" {
		c.LongTerm.Industry = partial.Industry
	}
	if partial.TargetAudience != "" {
		c.LongTerm.TargetAudience = partial.TargetAudience
	}
	if partial.BrandTone != "" {
		c.LongTerm.BrandTone = partial.BrandTone
	}
	c.LongTerm.BusinessGoals = unionStrings(c.LongTerm.BusinessGoals, partial.BusinessGoals)
	c.LongTerm.SellingPoints = unionStrings(c.LongTerm.SellingPoints, partial.SellingPoints)
	c.LongTerm.Assets = unionAssets(c.LongTerm.Assets, partial.Assets)
	if len(partial.CustomData) > 0 {
		if c.LongTerm.CustomData == nil {
			c.LongTerm.CustomData = make(map[string]string, len(partial.CustomData))
		}
		for k, v := range partial.CustomData {
			c.LongTerm.CustomData[k] = v
		}
	}
}

// MergeShortTerm folds partial short-term facts into the context. Scalars
// overwrite when non-empty; RecentTopics take most-recent-first order, are
// de-duplicated, and capped at MaxRecentTopics; PendingActions are replaced
// wholesale since they describe the current task only.
func (c *ConversationContext) MergeShortTerm(partial ShortTermContext) {
	if partial.CurrentTask != "" {
		c.ShortTerm.CurrentTask = partial.CurrentTask
	}
	if partial.TaskType != "" {
		c.ShortTerm.TaskType = partial.TaskType
	}
	if len(partial.RecentTopics) > 0 {
		c.ShortTerm.RecentTopics = pushTopics(c.ShortTerm.RecentTopics, partial.RecentTopics)
	}
	if partial.PendingActions != nil {
		c.ShortTerm.PendingActions = partial.PendingActions
	}
	if len(partial.StylePreferences) > 0 {
		if c.ShortTerm.StylePreferences == nil {
			c.ShortTerm.StylePreferences = make(map[string]string, len(partial.StylePreferences))
		}
		for k, v := range partial.StylePreferences {
			c.ShortTerm.StylePreferences[k] = v
		}
	}
}

// Clone returns a deep copy, used for version-history snapshots.
func (c *ConversationContext) Clone() *ConversationContext {
	cp := *c
	cp.LongTerm.BusinessGoals = append([]string(nil), c.LongTerm.BusinessGoals...)
	cp.LongTerm.SellingPoints = append([]string(nil), c.LongTerm.SellingPoints...)
	cp.LongTerm.Assets = append([]Asset(nil), c.LongTerm.Assets...)
	cp.LongTerm.CustomData = cloneMap(c.LongTerm.CustomData)
	cp.ShortTerm.RecentTopics = append([]string(nil), c.ShortTerm.RecentTopics...)
	cp.ShortTerm.PendingActions = append([]string(nil), c.ShortTerm.PendingActions...)
	cp.ShortTerm.StylePreferences = cloneMap(c.ShortTerm.StylePreferences)
	return &cp
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func unionStrings(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	out := append([]string(nil), existing...)
	for _, s := range existing {
		seen[normalizeEntry(s)] = struct{}{}
	}
	for _, s := range incoming {
		key := normalizeEntry(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func unionAssets(existing, incoming []Asset) []Asset {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	out := append([]Asset(nil), existing...)
	for _, a := range existing {
		seen[normalizeEntry(a.Name)] = struct{}{}
	}
	for _, a := range incoming {
		key := normalizeEntry(a.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// pushTopics prepends incoming topics keeping most-recent-first order,
// dropping duplicates of topics already present and trimming to the cap.
func pushTopics(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, s := range incoming {
		key := normalizeEntry(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, s := range existing {
		key := normalizeEntry(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) > MaxRecentTopics {
		out = out[:MaxRecentTopics]
	}
	return out
}

func normalizeEntry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
