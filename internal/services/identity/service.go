package identity

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

// exportName is the object name used when publishing the identity.
const exportName = "identity.json"

// Service manages the wallet identity using a backing store and the
// process session.
type Service struct {
	store    domain.IdentityStore
	session  *session.Context
	codec    crypto.DIDCodec
	uploader domain.Uploader
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithUploader enables PublishIdentity.
func WithUploader(u domain.Uploader) Option { return func(s *Service) { s.uploader = u } }

// WithMetrics records operation counters on m.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New returns an identity service backed by store and sess.
func New(store domain.IdentityStore, sess *session.Context, codec crypto.DIDCodec, opts ...Option) *Service {
	s := &Service{
		store:   store,
		session: sess,
		codec:   codec,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIdentity generates a fresh mnemonic of entropyBits, derives the key
// pair from it and stores the public identity. The mnemonic is returned once
// and is not kept anywhere.
func (s *Service) CreateIdentity(entropyBits int) (string, domain.Identity, error) {
	mnemonic, err := crypto.GenerateMnemonic(entropyBits)
	if err != nil {
		return "", domain.Identity{}, err
	}
	s.session.MarkGenerated()
	id, err := s.RestoreIdentity(mnemonic)
	if err != nil {
		return "", domain.Identity{}, err
	}
	return mnemonic, id, nil
}

// RestoreIdentity derives the key pair from mnemonic, installs it in the
// session and stores the public identity. When the stored identity already
// has the same DID its creation time is kept.
func (s *Service) RestoreIdentity(mnemonic string) (id domain.Identity, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpDerive, start, err) }()

	keys, err := crypto.DeriveKeyPair(mnemonic)
	if err != nil {
		return domain.Identity{}, err
	}
	defer keys.Wipe()

	id = s.codec.NewIdentity(keys.Public, s.now())
	prev, found, err := s.store.LoadIdentity()
	if err != nil {
		return domain.Identity{}, err
	}
	if found && prev.DID == id.DID && !prev.CreatedAt.IsZero() {
		id.CreatedAt = prev.CreatedAt
	}
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, fmt.Errorf("save identity: %w", err)
	}
	s.session.SetSession(keys, id.DID)
	s.log.Info("identity ready", "did", id.DID, "fingerprint", crypto.Fingerprint(keys.Public))
	return id, nil
}

// LoadIdentity returns the stored public identity.
func (s *Service) LoadIdentity() (domain.Identity, bool, error) {
	return s.store.LoadIdentity()
}

// ExportIdentity returns the stored identity as JSON with exactly the did,
// publicKey and createdAt fields.
func (s *Service) ExportIdentity() ([]byte, error) {
	id, found, err := s.store.LoadIdentity()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNoIdentity
	}
	b, err := crypto.MarshalIdentity(id)
	if err != nil {
		return nil, err
	}
	if did, ok := s.session.DID(); ok && did == id.DID {
		s.session.MarkExported()
	}
	return b, nil
}

// ImportIdentity validates an exported identity and stores it. Importing
// does not give access to the private key; signing still requires the
// mnemonic.
func (s *Service) ImportIdentity(data []byte) (domain.Identity, error) {
	id, err := s.codec.ParseIdentity(data)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, fmt.Errorf("save identity: %w", err)
	}
	s.log.Info("identity imported", "did", id.DID)
	return id, nil
}

// PublishIdentity uploads the exported identity and returns its content
// identifier and gateway URL.
func (s *Service) PublishIdentity(ctx context.Context) (cid string, url string, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.OpPublish, start, err) }()

	if s.uploader == nil {
		return "", "", domain.ErrMissingCredential
	}
	b, err := s.ExportIdentity()
	if err != nil {
		return "", "", err
	}
	cid, err = s.uploader.Upload(ctx, exportName, b)
	if err != nil {
		return "", "", fmt.Errorf("publish identity: %w", err)
	}
	url = s.uploader.GatewayURL(cid)
	s.log.Info("identity published", "cid", cid, "url", url)
	return cid, url, nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
