package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

// TeamService backs the team screen: the member list runs through a
// collection store, while the stat tiles and activity feed are plain
// fetches the screen renders directly.
type TeamService struct {
	api      *api.Client
	validate *validator.Validate

	Store *collection.Store[models.Member]
}

// NewTeamService wires a member store against GET /team/members.
func NewTeamService(client *api.Client) *TeamService {
	s := &TeamService{
		api:      client,
		validate: validator.New(),
	}
	s.Store = collection.NewStore(s.fetchMembers)
	return s
}

func (s *TeamService) fetchMembers(ctx context.Context) ([]models.Member, error) {
	var raw []models.Member
	if err := s.api.GetJSON(ctx, "/team/members", &raw); err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(raw))
	for _, r := range raw {
		m, err := models.NormalizeMember(r)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// FilterConfig returns the team screen's filter wiring: search over name
// and email, status over the member status.
func (s *TeamService) FilterConfig() collection.FilterConfig[models.Member] {
	return collection.FilterConfig[models.Member]{
		SearchFields: func(m models.Member) []string { return []string{m.Name, m.Email} },
		Status:       func(m models.Member) string { return m.Status },
	}
}

// Stats fetches the four team stat tiles.
func (s *TeamService) Stats(ctx context.Context) ([]models.TeamStat, error) {
	var stats []models.TeamStat
	if err := s.api.GetJSON(ctx, "/team/stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Activities fetches the recent activity feed.
func (s *TeamService) Activities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := s.api.GetJSON(ctx, "/team/activities", &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// InviteInput mirrors POST /team/invite.
type InviteInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

// Invite creates a pending member. Membership changed, so the settle step
// is a full refetch rather than a local insert.
func (s *TeamService) Invite(ctx context.Context, in InviteInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid invite input: %w", err)
	}
	if err := s.api.PostJSON(ctx, "/team/invite", in, nil); err != nil {
		return err
	}
	return s.Store.Fetch(ctx)
}
