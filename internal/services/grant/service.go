package grant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"walletid/internal/crypto"
	"walletid/internal/domain"
	"walletid/internal/metrics"
	"walletid/internal/session"
)

// Check outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeExpired = "expired"
	outcomeRevoked = "revoked"
)

// Service issues, checks and revokes access grants.
type Service struct {
	store   domain.GrantStore
	session *session.Context
	codec   crypto.DIDCodec
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// New returns a grant service. sess may be nil for a verify-only service.
func New(
	store domain.GrantStore,
	sess *session.Context,
	codec crypto.DIDCodec,
	m *metrics.Metrics,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		session: sess,
		codec:   codec,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides time.Now. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// IssueGrant signs draft with the session key and records it.
func (s *Service) IssueGrant(ctx context.Context, draft domain.AccessGrantDraft) (g domain.AccessGrant, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpGrantIssue, start, err) }()

	if s.session == nil {
		return domain.AccessGrant{}, domain.ErrNoSession
	}
	issuer, ok := s.session.DID()
	if !ok {
		return domain.AccessGrant{}, domain.ErrNoSession
	}
	err = s.session.Guard(func() error {
		var signErr error
		g, signErr = s.session.SignGrant(draft)
		return signErr
	})
	if err != nil {
		return domain.AccessGrant{}, err
	}
	rec := domain.GrantRecord{Grant: g, IssuerDID: issuer, IssuedAt: s.now().UTC()}
	if err := s.store.SaveGrant(ctx, rec); err != nil {
		return domain.AccessGrant{}, fmt.Errorf("record grant: %w", err)
	}
	s.log.Info("grant issued", "grant_id", g.ID, "grantee", g.Grantee, "expires_at", g.ExpiresAt)
	return g, nil
}

// CheckGrant reports whether g is signed by issuer, still within its expiry
// and not revoked. A bad signature yields Valid=false with a nil error; only
// a malformed issuer DID or a registry failure is an error.
func (s *Service) CheckGrant(
	ctx context.Context,
	g domain.AccessGrant,
	issuer domain.DID,
) (st domain.GrantStatus, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpGrantCheck, start, err) }()

	pub, err := s.codec.Decode(issuer)
	if err != nil {
		return domain.GrantStatus{}, err
	}
	st.Valid = crypto.VerifyGrant(g, pub)
	if !st.Valid {
		s.metrics.GrantCheck(outcomeInvalid)
		return st, nil
	}
	st.Expired = g.Expired(s.now())
	if s.store != nil {
		st.Revoked, err = s.store.IsRevoked(ctx, issuer, g.ID)
		if err != nil {
			return domain.GrantStatus{}, fmt.Errorf("check revocation: %w", err)
		}
	}
	switch {
	case st.Revoked:
		s.metrics.GrantCheck(outcomeRevoked)
	case st.Expired:
		s.metrics.GrantCheck(outcomeExpired)
	default:
		s.metrics.GrantCheck(outcomeOK)
	}
	return st, nil
}

// RevokeGrant marks the grant issuer issued under id as revoked.
func (s *Service) RevokeGrant(ctx context.Context, issuer domain.DID, id string) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpGrantRevoke, start, err) }()

	if err := s.store.Revoke(ctx, issuer, id); err != nil {
		return err
	}
	s.log.Info("grant revoked", "grant_id", id, "issuer", issuer)
	return nil
}

// ListGrants returns every grant recorded by this issuer.
func (s *Service) ListGrants(ctx context.Context) ([]domain.GrantRecord, error) {
	return s.store.ListGrants(ctx)
}

// Compile-time assertion that Service implements domain.GrantService.
var _ domain.GrantService = (*Service)(nil)
