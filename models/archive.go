package models

import (
	"strconv"
	"time"
)

// ArchiveStat is one of the four storage stat tiles; values arrive
// preformatted ("1.2 GB", "3 年").
type ArchiveStat struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Folder groups archived contracts by contract type.
type Folder struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Size  string `json:"size"`
}

// RawArchiveItem is an archived contract row as the backend sends it.
type RawArchiveItem struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Folder string   `json:"folder"`
	Date   string   `json:"date"`
	Size   string   `json:"size"`
	Tags   []string `json:"tags"`
}

// ArchiveItem is the normalized archive record.
type ArchiveItem struct {
	ID     int
	Name   string
	Folder string
	Date   string
	Size   string
	Tags   []string
}

// RecordID implements collection.Record.
func (a ArchiveItem) RecordID() string {
	return strconv.Itoa(a.ID)
}

// HasTag reports whether the item carries the given tag.
func (a ArchiveItem) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ArchiveData is the full envelope returned by GET /archive/.
type ArchiveData struct {
	Stats     []ArchiveStat    `json:"stats"`
	Folders   []Folder         `json:"folders"`
	Contracts []RawArchiveItem `json:"contracts"`
	Tags      []string         `json:"tags"`
}

// NormalizeArchiveItem maps a raw archive row into its record form; a
// missing tag list becomes an empty set.
func NormalizeArchiveItem(raw RawArchiveItem, loc *time.Location) (ArchiveItem, error) {
	date, err := localizeTimestamp(raw.Date, loc)
	if err != nil {
		return ArchiveItem{}, &NormalizeError{Entity: "archive item", Err: err}
	}
	item := ArchiveItem{
		ID:     raw.ID,
		Name:   raw.Name,
		Folder: raw.Folder,
		Date:   date,
		Size:   raw.Size,
		Tags:   raw.Tags,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item, nil
}
