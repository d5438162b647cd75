package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"nexdoc/console/models"
)

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]models.Member, 0, len(s.users))
	for _, u := range s.users {
		members = append(members, models.Member{
			ID:         u.ID,
			Name:       u.FullName,
			Email:      u.Email,
			Role:       u.Role,
			Department: u.Department,
			Status:     u.Status,
			Contracts:  u.Contracts,
			LastActive: u.LastActive,
		})
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active, pending, contracts int
	for _, u := range s.users {
		switch u.Status {
		case models.MemberActive:
			active++
		case models.MemberPending:
			pending++
		}
		contracts += u.Contracts
	}
	writeJSON(w, http.StatusOK, []models.TeamStat{
		{Name: "团队成员", Value: len(s.users), Color: "blue"},
		{Name: "活跃成员", Value: active, Color: "green"},
		{Name: "处理合同", Value: contracts, Color: "purple"},
		{Name: "待处理邀请", Value: pending, Color: "yellow"},
	})
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Activity, len(s.activity))
	copy(out, s.activity)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			writeDetail(w, http.StatusBadRequest, "User already in team")
			return
		}
	}

	u := &userRecord{
		ID:         s.nextUserID,
		Email:      in.Email,
		FullName:   in.Email,
		Role:       in.Role,
		Department: "未分配",
		Status:     models.MemberPending,
		LastActive: "从未登录",
	}
	s.nextUserID++
	s.users = append(s.users, u)
	if s.current != nil {
		s.logActivity(s.current.FullName, "邀请了", in.Email)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation sent"})
}
