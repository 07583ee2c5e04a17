// Package token issues and verifies the HS256 JWTs shared by the auth service
// and the gateway.
package token

import (
	"errors"
	"fmt"
	"time"

	"eventreward/pkg/config"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

// minSecretLen is the HS256 key size.
const minSecretLen = 32

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

var Module = fx.Module("token", fx.Provide(NewIssuer))

// Subject is the identity a token pair is issued for.
type Subject struct {
	UserID string
	Name   string
	Email  string
	Roles  []string
}

// Claims is a verified token.
type Claims struct {
	Subject
	Kind      Kind
	ID        string
	ExpiresAt time.Time
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
}

type privateClaims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	Kind  Kind     `json:"kind"`
}

type Issuer struct {
	signer     jose.Signer
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg *config.Config) (*Issuer, error) {
	return New(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
}

func New(secret, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	key := []byte(secret)
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	return &Issuer{
		signer:     signer,
		secret:     key,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// Issue signs a fresh access and refresh token for s. Only the access token
// carries the profile and roles.
func (i *Issuer) Issue(s Subject) (*Pair, error) {
	now := i.now()

	access, accessExp, err := i.sign(s, KindAccess, uuid.NewString(), now, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshID := uuid.NewString()
	refresh, refreshExp, err := i.sign(Subject{UserID: s.UserID}, KindRefresh, refreshID, now, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshID:        refreshID,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) sign(s Subject, kind Kind, id string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	std := jwt.Claims{
		Issuer:   i.issuer,
		Subject:  s.UserID,
		ID:       id,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(exp),
	}
	priv := privateClaims{Name: s.Name, Email: s.Email, Roles: s.Roles, Kind: kind}

	raw, err := jwt.Signed(i.signer).Claims(std).Claims(priv).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return raw, exp, nil
}

// Verify checks signature, issuer, expiry and kind of raw.
func (i *Issuer) Verify(raw string, kind Kind) (*Claims, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var (
		std  jwt.Claims
		priv privateClaims
	)
	if err := tok.Claims(i.secret, &std, &priv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	err = std.ValidateWithLeeway(jwt.Expected{Issuer: i.issuer, Time: i.now()}, 0)
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if priv.Kind != kind || std.Subject == "" {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}

	claims := &Claims{
		Subject: Subject{
			UserID: std.Subject,
			Name:   priv.Name,
			Email:  priv.Email,
			Roles:  priv.Roles,
		},
		Kind: priv.Kind,
		ID:   std.ID,
	}
	if std.Expiry != nil {
		claims.ExpiresAt = std.Expiry.Time()
	}
	return claims, nil
}
