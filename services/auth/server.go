package auth

import (
	"context"

	"eventreward/pkg/api/authv1"
	"eventreward/pkg/token"
)

// Server exposes Service over authv1.
type Server struct {
	svc *Service
}

var _ authv1.AuthServiceServer = (*Server)(nil)

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.User, error) {
	user, err := s.svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (s *Server) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.TokenPair, error) {
	pair, err := s.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return toTokenPair(pair), nil
}

func (s *Server) Refresh(ctx context.Context, req *authv1.RefreshRequest) (*authv1.TokenPair, error) {
	pair, err := s.svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return toTokenPair(pair), nil
}

func (s *Server) UpdateUserRoles(ctx context.Context, req *authv1.UpdateUserRolesRequest) (*authv1.User, error) {
	user, err := s.svc.UpdateUserRoles(ctx, req.UserID, req.Roles)
	if err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func toUser(u *User) *authv1.User {
	return &authv1.User{
		UserID:      u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		Roles:       append([]string(nil), u.Roles...),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toTokenPair(p *token.Pair) *authv1.TokenPair {
	return &authv1.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.AccessExpiresAt,
	}
}
