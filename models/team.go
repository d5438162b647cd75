package models

import "strconv"

// Member is a team member row from GET /team/members. The backend already
// formats LastActive relative to its own clock, so it is carried verbatim
// rather than recomputed here.
type Member struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Contracts  int    `json:"contracts"`
	LastActive string `json:"lastActive"`
	Avatar     string `json:"avatar,omitempty"`
}

// RecordID implements collection.Record.
func (m Member) RecordID() string {
	return strconv.Itoa(m.ID)
}

// NormalizeMember applies the documented defaults to a member row.
func NormalizeMember(raw Member) (Member, error) {
	if raw.Status == "" {
		raw.Status = MemberPending
	}
	return raw, nil
}

// TeamStat is one of the four team stat tiles.
type TeamStat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Activity is one entry of the team activity feed.
type Activity struct {
	ID     int    `json:"id"`
	User   string `json:"user"`
	Action string `json:"action"`
	Target string `json:"target"`
	Time   string `json:"time"`
}
