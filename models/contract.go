package models

import (
	"strconv"
	"time"
)

// RiskSummary is the per-severity risk count attached to an analyzed
// contract.
type RiskSummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the combined risk count.
func (s RiskSummary) Total() int {
	return s.High + s.Medium + s.Low
}

// AnalysisResult is one finding from the AI review of a contract.
type AnalysisResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Severity    string `json:"type"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Clause      string `json:"clause"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
}

// RawContract is a contract row exactly as the backend sends it.
type RawContract struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	ContractType string           `json:"contract_type"`
	FileSize     string           `json:"file_size"`
	UploadDate   string           `json:"upload_date"`
	Status       string           `json:"status"`
	RiskSummary  *RiskSummary     `json:"risk_summary"`
	Results      []AnalysisResult `json:"analysis_results"`
}

// Contract is the normalized record backing the contracts screen. All
// display fields are computed once at ingestion; UploadDate is already
// localized and never re-parsed downstream.
type Contract struct {
	ID         int
	Name       string
	Type       string
	Status     string
	Size       string
	UploadDate string
	Risks      RiskSummary
	Results    []AnalysisResult
}

// RecordID implements collection.Record.
func (c Contract) RecordID() string {
	return strconv.Itoa(c.ID)
}

// NormalizeContract maps a raw backend contract into its record form.
// Absent optional fields take their documented defaults: a missing
// risk_summary means zero counts, missing results mean an empty list.
func NormalizeContract(raw RawContract, loc *time.Location) (Contract, error) {
	date, err := localizeTimestamp(raw.UploadDate, loc)
	if err != nil {
		return Contract{}, &NormalizeError{Entity: "contract", Err: err}
	}

	c := Contract{
		ID:         raw.ID,
		Name:       raw.Name,
		Type:       raw.ContractType,
		Status:     raw.Status,
		Size:       raw.FileSize,
		UploadDate: date,
		Results:    raw.Results,
	}
	if raw.RiskSummary != nil {
		c.Risks = *raw.RiskSummary
	}
	if c.Results == nil {
		c.Results = []AnalysisResult{}
	}
	return c, nil
}
