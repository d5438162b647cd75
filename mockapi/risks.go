package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nexdoc/console/models"
)

// handleListRisks flattens every analyzed contract's findings into one list,
// keyed by the composite "<contractID>_<riskID>" id, with the stat tiles in
// the same envelope.
func (s *Server) handleListRisks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	risks := make([]models.RawRisk, 0)
	var high, medium, low, resolved int

	for _, c := range s.contracts {
		for _, res := range c.Results {
			status := res.Status
			if status == "" {
				status = models.RiskPending
			}
			if status == models.RiskResolved {
				resolved++
			} else {
				switch res.Severity {
				case models.SeverityHigh:
					high++
				case models.SeverityMedium:
					medium++
				case models.SeverityLow:
					low++
				}
			}
			risks = append(risks, models.RawRisk{
				ID:           fmt.Sprintf("%d_%d", c.ID, res.ID),
				OriginalID:   res.ID,
				ContractID:   c.ID,
				Title:        res.Title,
				Contract:     c.Name,
				Severity:     res.Severity,
				Category:     res.Category,
				Status:       status,
				Date:         c.UploadDate[:10], // date-only, like the real backend
				AIConfidence: 85 + (c.ID+res.ID)%10,
				Description:  res.Description,
				Suggestion:   res.Suggestion,
				Clause:       res.Clause,
			})
		}
	}

	stats := []models.RiskStat{
		{Name: "高风险", Value: high, Color: "red"},
		{Name: "中风险", Value: medium, Color: "yellow"},
		{Name: "低风险", Value: low, Color: "blue"},
		{Name: "已解决", Value: resolved, Color: "green"},
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
		"risks": risks,
	})
}

func (s *Server) handleRiskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contractID, _ := strconv.Atoi(vars["contractId"])
	riskID, _ := strconv.Atoi(vars["riskId"])

	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch in.Status {
	case models.RiskPending, models.RiskProcessing, models.RiskResolved:
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid risk status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findContract(contractID)
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Contract not found")
		return
	}
	for i := range c.Results {
		if c.Results[i].ID == riskID {
			c.Results[i].Status = in.Status
			if s.current != nil && in.Status == models.RiskResolved {
				s.logActivity(s.current.FullName, "解决了", c.Results[i].Title)
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Risk status updated"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Risk not found")
}
