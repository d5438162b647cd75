package mockapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nexdoc/console/models"
)

func (s *Server) contractView(c *contractRecord) models.RawContract {
	raw := models.RawContract{
		ID:           c.ID,
		Name:         c.Name,
		ContractType: c.Type,
		FileSize:     c.Size,
		UploadDate:   c.UploadDate,
		Status:       c.Status,
		Results:      c.Results,
	}
	if c.Status == models.ContractAnalyzed || c.Status == models.ContractCompleted {
		summary := models.RiskSummary{}
		for _, res := range c.Results {
			switch res.Severity {
			case models.SeverityHigh:
				summary.High++
			case models.SeverityMedium:
				summary.Medium++
			case models.SeverityLow:
				summary.Low++
			}
		}
		raw.RiskSummary = &summary
	}
	return raw
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.RawContract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, s.contractView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpload accepts a multipart upload and files it as an analyzed
// contract with one canned finding, the way the public demo backend does.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "Expected multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &contractRecord{
		ID:         s.nextContractID,
		Name:       header.Filename,
		Type:       "其他",
		Size:       fmt.Sprintf("%.1f KB", float64(header.Size)/1024),
		UploadDate: nowNaiveUTC(),
		Status:     models.ContractAnalyzed,
		Results: []models.AnalysisResult{
			{
				ID:          1,
				Title:       "付款期限约定模糊",
				Severity:    models.SeverityMedium,
				Description: "付款节点未绑定到可验证的交付事件。",
				Suggestion:  "建议将付款期限与验收节点挂钩并明确天数。",
				Clause:      "甲方应及时支付合同款项。",
				Category:    "付款条款",
				Status:      models.RiskPending,
			},
		},
	}
	s.nextContractID++
	s.contracts = append(s.contracts, c)
	if s.current != nil {
		s.logActivity(s.current.FullName, "上传了", c.Name)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     c.ID,
		"name":   c.Name,
		"size":   c.Size,
		"status": c.Status,
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findContract(id)
	if c == nil {
		writeDetail(w, http.StatusNotFound, "Contract not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contract_id": c.ID,
		"status":      "completed",
		"results":     c.Results,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, ".pdf")
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, "-分析报告.pdf")
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, suffix string) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	c := s.findContract(id)
	s.mu.Unlock()

	if c == nil {
		writeDetail(w, http.StatusNotFound, "Contract not found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Name+suffix))
	fmt.Fprintf(w, "%%PDF-1.4 mock document for %s", c.Name)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDeletes[id] {
		delete(s.failDeletes, id)
		writeDetail(w, http.StatusInternalServerError, "Storage backend unavailable")
		return
	}

	for i, c := range s.contracts {
		if c.ID == id {
			s.contracts = append(s.contracts[:i], s.contracts[i+1:]...)
			if s.current != nil {
				s.logActivity(s.current.FullName, "删除了", c.Name)
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Contract deleted"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Contract not found")
}

func (s *Server) handleDemoSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]string{
		{"filename": "sample_service_agreement.pdf", "name": "技术服务合同样例"},
		{"filename": "sample_nda.pdf", "name": "保密协议样例"},
	})
}
