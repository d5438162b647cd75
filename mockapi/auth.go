package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	email := r.FormValue("username")
	password := r.FormValue("password")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Password == password {
			s.token = uuid.NewString()
			s.current = u
			writeJSON(w, http.StatusOK, map[string]string{
				"access_token": s.token,
				"token_type":   "bearer",
			})
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}

	u := &userRecord{
		ID:         s.nextUserID,
		Email:      in.Email,
		Password:   in.Password,
		FullName:   in.FullName,
		Role:       "member",
		Department: "未分配",
		Status:     "active",
		LastActive: "从未登录",
	}
	s.nextUserID++
	s.users = append(s.users, u)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        s.current.ID,
		"email":     s.current.Email,
		"full_name": s.current.FullName,
		"role":      s.current.Role,
	})
}
