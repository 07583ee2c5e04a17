package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventreward/pkg/api/authv1"
	"eventreward/pkg/errutil"
	"eventreward/pkg/token"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

var errBadCredentials = errors.New("invalid email or password")

type Service struct {
	repo     Repository
	sessions SessionStore
	tokens   *token.Issuer
	node     *snowflake.Node
	logger   *zap.Logger
	group    singleflight.Group
	now      func() time.Time
}

type ServiceParams struct {
	fx.In

	Repository Repository
	Sessions   SessionStore
	Tokens     *token.Issuer
	Node       *snowflake.Node
	Logger     *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     p.Repository,
		sessions: p.Sessions,
		tokens:   p.Tokens,
		node:     p.Node,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER account. Further roles are granted by an admin.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, errutil.BadRequest("password cannot be hashed", err)
	}

	user := &User{
		UserID:   s.node.Generate().String(),
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hash),
		Roles:    []string{authv1.RoleUser},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyUsed) {
			return nil, errutil.Conflict("email already registered", err)
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, errutil.Internal("failed to register user", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID))
	return user, nil
}

// Login checks the credentials and starts a new refresh session, replacing
// any previous one.
func (s *Service) Login(ctx context.Context, email, password string) (*token.Pair, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, errutil.Unauthorized(errBadCredentials.Error(), nil)
	}
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, errutil.Internal("failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errutil.Unauthorized(errBadCredentials.Error(), nil)
	}

	pair, err := s.tokens.Issue(subjectOf(user))
	if err != nil {
		return nil, errutil.Internal("failed to issue tokens", err)
	}
	if err := s.sessions.Save(ctx, user.UserID, pair.RefreshID, s.tokens.RefreshTTL()); err != nil {
		s.logger.Error("failed to store refresh session", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, errutil.Internal("failed to login", err)
	}

	if err := s.repo.TouchLastLogin(ctx, user.UserID, s.now().UTC()); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.UserID), zap.Error(err))
	}
	return pair, nil
}

// Refresh redeems a refresh token for a new pair. Each refresh token is
// redeemable once; concurrent redemptions of the same token share one result.
func (s *Service) Refresh(ctx context.Context, raw string) (*token.Pair, error) {
	v, err, _ := s.group.Do(raw, func() (any, error) {
		return s.refresh(ctx, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(*token.Pair), nil
}

func (s *Service) refresh(ctx context.Context, raw string) (*token.Pair, error) {
	claims, err := s.tokens.Verify(raw, token.KindRefresh)
	if err != nil {
		return nil, errutil.Unauthorized("invalid refresh token", err)
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, errutil.Unauthorized("invalid refresh token", err)
	}
	if err != nil {
		return nil, errutil.Internal("failed to refresh token", err)
	}

	pair, err := s.tokens.Issue(subjectOf(user))
	if err != nil {
		return nil, errutil.Internal("failed to issue tokens", err)
	}

	ok, err := s.sessions.Rotate(ctx, user.UserID, claims.ID, pair.RefreshID, s.tokens.RefreshTTL())
	if err != nil {
		s.logger.Error("failed to rotate refresh session", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, errutil.Internal("failed to refresh token", err)
	}
	if !ok {
		return nil, errutil.Unauthorized("refresh token is no longer valid", ErrSessionNotFound)
	}
	return pair, nil
}

// UpdateUserRoles replaces the roles of a user. Tokens issued before the
// change keep their old roles until they expire.
func (s *Service) UpdateUserRoles(ctx context.Context, userID string, roles []string) (*User, error) {
	roles = dedupe(roles)
	var details []errutil.Detail
	for _, r := range roles {
		if !validRole(r) {
			details = append(details, errutil.Detail{Field: "roles", Message: "unknown role " + r})
		}
	}
	if len(roles) == 0 {
		details = append(details, errutil.Detail{Field: "roles", Message: "must not be empty"})
	}
	if len(details) > 0 {
		return nil, errutil.BadRequest("invalid roles", nil, errutil.WithDetails(details...))
	}

	if err := s.repo.UpdateRoles(ctx, userID, roles); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, errutil.NotFound("user not found", err)
		}
		return nil, errutil.Internal("failed to update roles", err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errutil.Internal("failed to load user", err)
	}
	s.logger.Info("user roles updated", zap.String("user_id", userID), zap.Strings("roles", roles))
	return user, nil
}

func subjectOf(u *User) token.Subject {
	return token.Subject{UserID: u.UserID, Name: u.Name, Email: u.Email, Roles: u.Roles}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToUpper(strings.TrimSpace(v))
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
