// Package mockapi is an in-memory stand-in for the NexDoc backend. It
// serves the same routes and wire shapes so the client packages can be
// exercised in tests and in offline demo mode; none of the real backend
// behavior (parsing, AI analysis) happens here, only canned fixtures.
package mockapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"nexdoc/console/models"
)

const naiveUTC = "2006-01-02T15:04:05"

// nowNaiveUTC formats the current time the way the real backend does:
// UTC with no zone designator.
func nowNaiveUTC() string {
	return time.Now().UTC().Format(naiveUTC)
}

type userRecord struct {
	ID         int
	Email      string
	Password   string
	FullName   string
	Role       string
	Department string
	Status     string
	LastActive string
	Contracts  int
}

type contractRecord struct {
	ID         int
	Name       string
	Type       string
	Size       string
	UploadDate string // naive UTC, as the real backend emits
	Status     string
	Results    []models.AnalysisResult
}

type articleRecord struct {
	ID       int
	Title    string
	Summary  string
	Content  string
	Category string
	Date     string
	Views    int
}

// Server holds the fixture state behind the mock routes.
type Server struct {
	mu     sync.Mutex
	router *mux.Router

	token     string
	current   *userRecord
	users     []*userRecord
	contracts []*contractRecord
	articles  []*articleRecord
	activity  []models.Activity

	nextUserID     int
	nextContractID int
	nextArticleID  int

	// failDeletes makes the next DELETE for the given contract id fail with
	// a 500, for exercising best-effort bulk deletes.
	failDeletes map[int]bool
}

// New creates a mock server seeded with the demo fixtures.
func New() *Server {
	s := &Server{
		router:      mux.NewRouter(),
		failDeletes: make(map[int]bool),
	}
	s.seed()
	s.registerRoutes()
	return s
}

// Handler returns the mock backend's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// FailNextDelete makes the next DELETE /contracts/{id} for id fail.
func (s *Server) FailNextDelete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeletes[id] = true
}

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/demo/samples", s.handleDemoSamples).Methods("GET")
	api.HandleFunc("/demo/upload", s.handleUpload).Methods("POST")

	// Authenticated routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.requireAuth)

	protected.HandleFunc("/auth/users/me", s.handleMe).Methods("GET")

	protected.HandleFunc("/contracts/", s.handleListContracts).Methods("GET")
	protected.HandleFunc("/contracts/upload", s.handleUpload).Methods("POST")
	protected.HandleFunc("/contracts/{id:[0-9]+}/analysis", s.handleAnalysis).Methods("GET")
	protected.HandleFunc("/contracts/{id:[0-9]+}/download", s.handleDownload).Methods("GET")
	protected.HandleFunc("/contracts/{id:[0-9]+}/export/pdf", s.handleExportPDF).Methods("GET")
	protected.HandleFunc("/contracts/{id:[0-9]+}", s.handleDeleteContract).Methods("DELETE")

	protected.HandleFunc("/risks/", s.handleListRisks).Methods("GET")
	protected.HandleFunc("/risks/{contractId:[0-9]+}/{riskId:[0-9]+}/status", s.handleRiskStatus).Methods("PATCH")

	protected.HandleFunc("/team/members", s.handleMembers).Methods("GET")
	protected.HandleFunc("/team/stats", s.handleTeamStats).Methods("GET")
	protected.HandleFunc("/team/activities", s.handleActivities).Methods("GET")
	protected.HandleFunc("/team/invite", s.handleInvite).Methods("POST")

	protected.HandleFunc("/archive/", s.handleArchive).Methods("GET")

	protected.HandleFunc("/knowledge/", s.handleListArticles).Methods("GET")
	protected.HandleFunc("/knowledge/", s.handleCreateArticle).Methods("POST")
}

// requireAuth checks the bearer token issued by login.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		if token == "" || auth != "Bearer "+token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode mock response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) seed() {
	s.users = []*userRecord{
		{
			ID: 1, Email: "demo@nexdoc.ai", Password: "demo123",
			FullName: "Demo User", Role: "admin", Department: "法务部",
			Status: models.MemberActive, LastActive: "刚刚", Contracts: 3,
		},
		{
			ID: 2, Email: "li.wei@nexdoc.ai", Password: "demo123",
			FullName: "李伟", Role: "member", Department: "法务部",
			Status: models.MemberActive, LastActive: "2 小时前", Contracts: 2,
		},
		{
			ID: 3, Email: "wang.fang@nexdoc.ai", Password: "demo123",
			FullName: "王芳", Role: "viewer", Department: "采购部",
			Status: models.MemberPending, LastActive: "从未登录", Contracts: 0,
		},
	}
	s.nextUserID = 4

	now := time.Now().UTC()
	s.contracts = []*contractRecord{
		{
			ID: 1, Name: "技术服务合同-2024-001", Type: "技术服务",
			Size: "2.3 MB", UploadDate: now.AddDate(0, 0, -3).Format(naiveUTC),
			Status: models.ContractAnalyzed,
			Results: []models.AnalysisResult{
				{ID: 1, Title: "违约金比例过高", Severity: models.SeverityHigh, Description: "第 8.2 条款约定的违约金比例为合同金额的 30%，超过法定合理范围。", Suggestion: "建议调整为不超过合同金额的 10%。", Clause: "如乙方违约，应向甲方支付合同金额 30% 的违约金。", Status: models.RiskPending, Category: "违约责任"},
				{ID: 2, Title: "争议解决条款缺失", Severity: models.SeverityMedium, Description: "合同未明确约定争议解决方式和管辖法院。", Suggestion: "建议补充仲裁或诉讼条款。", Clause: "本合同未尽事宜，双方协商解决。", Status: models.RiskPending, Category: "争议解决"},
			},
		},
		{
			ID: 2, Name: "采购协议-供应商A", Type: "采购",
			Size: "1.8 MB", UploadDate: now.AddDate(0, 0, -5).Format(naiveUTC),
			Status: models.ContractPending,
		},
		{
			ID: 3, Name: "保密协议-合作方B", Type: "保密",
			Size: "1.2 MB", UploadDate: now.AddDate(0, 0, -9).Format(naiveUTC),
			Status: models.ContractAnalyzed,
			Results: []models.AnalysisResult{
				{ID: 1, Title: "保密期限不明确", Severity: models.SeverityMedium, Description: "未约定保密义务的存续期限。", Suggestion: "建议明确保密期限及终止条件。", Clause: "双方应对合作信息保密。", Status: models.RiskResolved, Category: "保密条款"},
			},
		},
	}
	s.nextContractID = 4

	s.articles = []*articleRecord{
		{ID: 1, Title: "合同审查要点清单", Summary: "常见商务合同的审查清单。", Category: "合同法", Date: now.AddDate(0, 0, -12).Format(naiveUTC), Views: 320},
		{ID: 2, Title: "竞业限制条款解读", Summary: "劳动合同竞业限制的效力边界。", Category: "劳动法", Date: now.AddDate(0, 0, -20).Format(naiveUTC), Views: 154},
	}
	s.nextArticleID = 3

	s.activity = []models.Activity{
		{ID: 1, User: "Demo User", Action: "上传了", Target: "技术服务合同-2024-001", Time: "3 天前"},
		{ID: 2, User: "李伟", Action: "修复了", Target: "保密协议-合作方B 中的风险", Time: "1 天前"},
	}
}

func (s *Server) findContract(id int) *contractRecord {
	for _, c := range s.contracts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Server) logActivity(user, action, target string) {
	s.activity = append([]models.Activity{{
		ID:     len(s.activity) + 1,
		User:   user,
		Action: action,
		Target: target,
		Time:   "刚刚",
	}}, s.activity...)
}
