package models

import (
	"sort"
	"time"
)

// NewsItem is a single business headline.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// News is an ordered list of headlines.
type News []NewsItem

func (n News) Len() int { return len(n) }

// SortNewestFirst orders the headlines by publish time, newest first.
func (n News) SortNewestFirst() {
	sort.SliceStable(n, func(i, j int) bool {
		return n[i].PublishedAt.After(n[j].PublishedAt)
	})
}
