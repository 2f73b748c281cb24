// Package badges holds the static badge registry. Badge award rules are
// code, not data, so the display metadata lives here rather than in the
// database; the badges table only tracks slugs and award counters.
package badges

import (
	"errors"
	"sort"
)

// Badge levels, ordered from most to least prestigious.
const (
	LevelGold   = 1
	LevelSilver = 2
	LevelBronze = 3
)

// ErrUnknownBadge is returned when a slug has no registry entry.
var ErrUnknownBadge = errors.New("unknown badge slug")

// Badge is the display metadata of a badge, keyed by slug.
type Badge struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CSSClass    string `json:"css_class"`
	Level       int    `json:"level"`
}

// LevelDisplay returns the human-readable badge level.
func (b Badge) LevelDisplay() string {
	switch b.Level {
	case LevelGold:
		return "gold"
	case LevelSilver:
		return "silver"
	default:
		return "bronze"
	}
}

// Placeholder is the fallback for database rows whose slug is no longer
// registered. Registry entries are considered more up to date than the
// database, so a stale row resolves to a nameless bronze badge instead
// of failing.
func Placeholder(slug string) Badge {
	return Badge{Slug: slug, Level: LevelBronze, CSSClass: "badge3"}
}

var registry = map[string]Badge{}

// Register adds a badge definition. Call from init or startup wiring;
// the registry is not safe for concurrent mutation.
func Register(b Badge) {
	registry[b.Slug] = b
}

// Get returns the badge registered under slug, or ErrUnknownBadge.
func Get(slug string) (Badge, error) {
	b, ok := registry[slug]
	if !ok {
		return Badge{}, ErrUnknownBadge
	}
	return b, nil
}

// GetOrPlaceholder resolves a slug, falling back to the placeholder when
// the slug is not registered.
func GetOrPlaceholder(slug string) Badge {
	if b, ok := registry[slug]; ok {
		return b
	}
	return Placeholder(slug)
}

// IsRegistered reports whether a slug has a registry entry. A false
// result for a slug that exists in the database means the registry was
// edited without cleaning up the corresponding row.
func IsRegistered(slug string) bool {
	_, ok := registry[slug]
	return ok
}

// All returns every registered badge, ordered by slug.
func All() []Badge {
	out := make([]Badge, 0, len(registry))
	for _, b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func cssClassForLevel(level int) string {
	switch level {
	case LevelGold:
		return "badge1"
	case LevelSilver:
		return "badge2"
	default:
		return "badge3"
	}
}

func init() {
	for _, b := range []Badge{
		{Slug: "disciplined", Name: "Disciplined", Description: "Deleted own post with 3 or more upvotes", Level: LevelBronze},
		{Slug: "peer-pressure", Name: "Peer Pressure", Description: "Deleted own post with 3 or more downvotes", Level: LevelBronze},
		{Slug: "nice-answer", Name: "Nice Answer", Description: "Answer voted up 10 times", Level: LevelBronze},
		{Slug: "nice-question", Name: "Nice Question", Description: "Question voted up 10 times", Level: LevelBronze},
		{Slug: "supporter", Name: "Supporter", Description: "First upvote", Level: LevelBronze},
		{Slug: "critic", Name: "Critic", Description: "First downvote", Level: LevelBronze},
		{Slug: "citizen-patrol", Name: "Citizen Patrol", Description: "First flagged post", Level: LevelBronze},
		{Slug: "teacher", Name: "Teacher", Description: "Gave an answer voted up at least once", Level: LevelBronze},
		{Slug: "student", Name: "Student", Description: "Asked a question with at least one upvote", Level: LevelBronze},
		{Slug: "editor", Name: "Editor", Description: "First edit", Level: LevelBronze},
		{Slug: "scholar", Name: "Scholar", Description: "Asked a question and accepted an answer", Level: LevelBronze},
		{Slug: "good-answer", Name: "Good Answer", Description: "Answer voted up 25 times", Level: LevelSilver},
		{Slug: "good-question", Name: "Good Question", Description: "Question voted up 25 times", Level: LevelSilver},
		{Slug: "enlightened", Name: "Enlightened", Description: "First accepted answer with at least 10 upvotes", Level: LevelSilver},
		{Slug: "civic-duty", Name: "Civic Duty", Description: "Voted 300 times", Level: LevelSilver},
		{Slug: "necromancer", Name: "Necromancer", Description: "Answered a question more than 60 days old with at least 5 upvotes", Level: LevelSilver},
		{Slug: "great-answer", Name: "Great Answer", Description: "Answer voted up 100 times", Level: LevelGold},
		{Slug: "great-question", Name: "Great Question", Description: "Question voted up 100 times", Level: LevelGold},
		{Slug: "guru", Name: "Guru", Description: "Accepted answer with at least 40 upvotes", Level: LevelGold},
		{Slug: "famous-question", Name: "Famous Question", Description: "Question viewed 10000 times", Level: LevelGold},
	} {
		if b.CSSClass == "" {
			b.CSSClass = cssClassForLevel(b.Level)
		}
		Register(b)
	}
}
