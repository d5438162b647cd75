package models

import (
	"strconv"
	"time"
)

// RawArticle is a knowledge-base article as the backend sends it.
type RawArticle struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Views    int    `json:"views"`
}

// Article is the normalized knowledge record. Unlike contracts and archive
// items, articles match the category filter exactly rather than by tag.
type Article struct {
	ID       int
	Title    string
	Summary  string
	Content  string
	Category string
	Date     string
	Views    int
}

// RecordID implements collection.Record.
func (a Article) RecordID() string {
	return strconv.Itoa(a.ID)
}

// NormalizeArticle maps a raw article into its record form.
func NormalizeArticle(raw RawArticle, loc *time.Location) (Article, error) {
	date, err := localizeTimestamp(raw.Date, loc)
	if err != nil {
		return Article{}, &NormalizeError{Entity: "article", Err: err}
	}
	return Article{
		ID:       raw.ID,
		Title:    raw.Title,
		Summary:  raw.Summary,
		Content:  raw.Content,
		Category: raw.Category,
		Date:     date,
		Views:    raw.Views,
	}, nil
}
