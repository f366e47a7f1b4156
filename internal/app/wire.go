package app

import (
	"errors"
	"fmt"
	"log/slog"

	"walletid/internal/crypto"
	"walletid/internal/domain"
	"walletid/internal/gateway"
	"walletid/internal/metrics"
	"walletid/internal/server"
	grantsvc "walletid/internal/services/grant"
	identitysvc "walletid/internal/services/identity"
	"walletid/internal/session"
	"walletid/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	Codec    crypto.DIDCodec
	Session  *session.Context
	Metrics  *metrics.Metrics
	Identity domain.IdentityService
	Grants   domain.GrantService
	Uploader domain.Uploader // nil when no gateway is configured

	grantStore *store.GrantSQLiteStore
}

// NewWire constructs the dependency graph from cfg. sess is the process
// session; it is shared so the caller can wipe it on exit.
func NewWire(cfg Config, log *slog.Logger, sess *session.Context) (*Wire, error) {
	if log == nil {
		log = slog.Default()
	}
	if sess == nil {
		sess = session.New(log)
	}
	codec, err := crypto.NewDIDCodec(cfg.DIDEncoding)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	// Gateway client; a configured URL without a credential is an error now
	// rather than at the first publish.
	var uploader domain.Uploader
	if cfg.Gateway.URL != "" {
		gw, err := gateway.NewHTTP(gateway.Config{
			BaseURL:       cfg.Gateway.URL,
			PublicURL:     cfg.Gateway.PublicURL,
			Token:         cfg.Gateway.Token,
			RatePerSecond: cfg.Gateway.RatePerSecond,
			Burst:         cfg.Gateway.Burst,
			Timeout:       cfg.Gateway.Timeout,
			HTTP:          cfg.HTTP,
		})
		if err != nil {
			return nil, fmt.Errorf("gateway: %w", err)
		}
		uploader = gw
	}

	// Stores
	identityStore := store.NewIdentityFileStore(cfg.Home)
	grantStore, err := store.OpenGrantStore(cfg.GrantsPath())
	if err != nil {
		return nil, fmt.Errorf("open grant registry: %w", err)
	}

	// High-level services
	idOpts := []identitysvc.Option{identitysvc.WithMetrics(m), identitysvc.WithLogger(log)}
	if uploader != nil {
		idOpts = append(idOpts, identitysvc.WithUploader(uploader))
	}
	ids := identitysvc.New(identityStore, sess, codec, idOpts...)
	grants := grantsvc.New(grantStore, sess, codec, m, log)

	return &Wire{
		Config:     cfg,
		Log:        log,
		Codec:      codec,
		Session:    sess,
		Metrics:    m,
		Identity:   ids,
		Grants:     grants,
		Uploader:   uploader,
		grantStore: grantStore,
	}, nil
}

// Server builds the verification server from the wired services.
func (w *Wire) Server() *server.Server {
	return server.New(server.Config{
		Listen:        w.Config.Server.Listen,
		RatePerSecond: w.Config.Server.RatePerSecond,
		Burst:         w.Config.Server.Burst,
	}, w.Grants, w.Codec, w.Metrics, w.Log)
}

// Close releases the grant registry and wipes the session.
func (w *Wire) Close() error {
	w.Session.ClearSession()
	var errs []error
	if w.grantStore != nil {
		errs = append(errs, w.grantStore.Close())
	}
	return errors.Join(errs...)
}
