package reports

import "sort"

// Entry is the internal leaderboard shape.
type Entry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// ExternalEntry is the third-party leaderboard shape.
type ExternalEntry struct {
	U string `json:"u"`
	P int    `json:"p"`
}

// ExternalRanking is a third-party leaderboard source.
type ExternalRanking interface {
	FetchTop(limit int) []ExternalEntry
}

// StaticExternalRanking serves a fixed list; handy for demos and tests.
type StaticExternalRanking struct {
	entries []ExternalEntry
}

func NewStaticExternalRanking(entries []ExternalEntry) *StaticExternalRanking {
	return &StaticExternalRanking{entries: entries}
}

// DemoExternalRanking returns the sample adaptee.
func DemoExternalRanking() *StaticExternalRanking {
	return NewStaticExternalRanking([]ExternalEntry{
		{U: "alice", P: 420},
		{U: "bob", P: 300},
		{U: "carol", P: 180},
	})
}

func (s *StaticExternalRanking) FetchTop(limit int) []ExternalEntry {
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	return append([]ExternalEntry(nil), s.entries[:limit]...)
}

// RankingAdapter exposes an ExternalRanking in the internal shape.
type RankingAdapter struct {
	external ExternalRanking
}

func NewRankingAdapter(external ExternalRanking) *RankingAdapter {
	return &RankingAdapter{external: external}
}

func (a *RankingAdapter) Top(limit int) []Entry {
	raw := a.external.FetchTop(limit)
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		out = append(out, Entry{Username: r.U, Points: r.P})
	}
	return out
}

// Rank orders entries by points desc, then username, and cuts at limit (<=0 keeps all).
func Rank(entries []Entry, limit int) []Entry {
	out := append([]Entry(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
