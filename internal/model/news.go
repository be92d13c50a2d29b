package model

import "time"

// NewsItem is one headline related to a symbol.
type NewsItem struct {
	Symbol    string    `json:"symbol"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
}
