package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RiskStat is one of the four stat tiles above the risk list.
type RiskStat struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Change int    `json:"change"`
	Color  string `json:"color"`
}

// RawRisk is a risk row as emitted by GET /risks/. The backend flattens
// per-contract analysis results into one list and keys each row by the
// composite id "<contractID>_<riskID>".
type RawRisk struct {
	ID           string `json:"id"`
	OriginalID   int    `json:"original_id"`
	ContractID   int    `json:"contract_id"`
	Title        string `json:"title"`
	Contract     string `json:"contract"`
	Severity     string `json:"type"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	Date         string `json:"date"`
	AIConfidence int    `json:"aiConfidence"`
	Description  string `json:"description"`
	Suggestion   string `json:"suggestion"`
	Clause       string `json:"clause"`
}

// Risk is the normalized risk record. The composite id stays the record
// identity; ContractID/OriginalID are kept split so the status PATCH can be
// addressed to /risks/{contractID}/{originalID}/status.
type Risk struct {
	ID           string
	ContractID   int
	OriginalID   int
	Title        string
	Contract     string
	Severity     string
	Category     string
	Status       string
	Date         string
	AIConfidence int
	Description  string
	Suggestion   string
	Clause       string
}

// RecordID implements collection.Record.
func (r Risk) RecordID() string {
	return r.ID
}

// NormalizeRisk maps a raw risk into its record form. When the backend
// omits the split ids, they are recovered from the composite; a composite
// that cannot be split is a schema violation.
func NormalizeRisk(raw RawRisk) (Risk, error) {
	r := Risk{
		ID:           raw.ID,
		ContractID:   raw.ContractID,
		OriginalID:   raw.OriginalID,
		Title:        raw.Title,
		Contract:     raw.Contract,
		Severity:     raw.Severity,
		Category:     raw.Category,
		Status:       raw.Status,
		Date:         raw.Date,
		AIConfidence: raw.AIConfidence,
		Description:  raw.Description,
		Suggestion:   raw.Suggestion,
		Clause:       raw.Clause,
	}
	if r.Status == "" {
		r.Status = RiskPending
	}
	if r.ContractID == 0 && strings.Contains(raw.ID, "_") {
		parts := strings.SplitN(raw.ID, "_", 2)
		cid, err1 := strconv.Atoi(parts[0])
		rid, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return Risk{}, &NormalizeError{Entity: "risk", Err: fmt.Errorf("bad composite id %q", raw.ID)}
		}
		r.ContractID = cid
		r.OriginalID = rid
	}
	return r, nil
}
