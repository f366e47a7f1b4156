package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"walletid/internal/crypto"
	"walletid/internal/domain"
)

// Context is a process-scoped session. The zero value is not usable; call New.
type Context struct {
	mu    sync.RWMutex
	keys  domain.KeyPair
	did   domain.DID
	state domain.IdentityState
	log   *slog.Logger
}

// New returns an empty session in the Unset state.
func New(log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	return &Context{state: domain.StateUnset, log: log}
}

// SetLogger replaces the logger, e.g. once configuration has been loaded.
func (c *Context) SetLogger(log *slog.Logger) {
	if log == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = log
}

// MarkGenerated records that a fresh mnemonic exists but no key is derived yet.
func (c *Context) MarkGenerated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.StateUnset || c.state == domain.StateWiped {
		c.state = domain.StateGenerated
	}
}

// SetSession installs keys as the live key pair. Any previous key is wiped
// first. The caller should wipe its own copy of keys afterwards.
func (c *Context) SetSession(keys domain.KeyPair, did domain.DID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys.Wipe()
	c.keys = keys
	c.did = did
	c.state = domain.StateDerived
	c.log.Debug("session started", "did", did)
}

// MarkExported records that the public identity left the process.
func (c *Context) MarkExported() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == domain.StateDerived {
		c.state = domain.StateExported
	}
}

// ClearSession zeroes the private key. It is safe to call repeatedly and on
// a session that never held a key.
func (c *Context) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live() {
		return
	}
	c.keys.Wipe()
	c.keys.Public = domain.Ed25519Public{}
	c.did = ""
	c.state = domain.StateWiped
	c.log.Debug("session wiped")
}

// HasSession reports whether a private key is held.
func (c *Context) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live()
}

// State returns the current lifecycle state.
func (c *Context) State() domain.IdentityState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// DID returns the identifier of the live key, if any.
func (c *Context) DID() (domain.DID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.did, c.live()
}

// PublicKey returns the public half of the live key.
func (c *Context) PublicKey() (domain.Ed25519Public, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.live() {
		return domain.Ed25519Public{}, domain.ErrNoSession
	}
	return c.keys.Public, nil
}

// Sign signs msg with the live key.
func (c *Context) Sign(msg []byte) (domain.Signature, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.live() {
		return domain.Signature{}, domain.ErrNoSession
	}
	return crypto.Sign(c.keys.Private, msg), nil
}

// EncryptionKey derives the vault key for password from the live key.
func (c *Context) EncryptionKey(password string) ([crypto.VaultKeyBytes]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.live() {
		return [crypto.VaultKeyBytes]byte{}, domain.ErrNoSession
	}
	return crypto.DeriveEncryptionKey(c.keys.Private, password)
}

// SignGrant signs draft with the live key.
func (c *Context) SignGrant(draft domain.AccessGrantDraft) (domain.AccessGrant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.live() {
		return domain.AccessGrant{}, domain.ErrNoSession
	}
	return crypto.SignGrant(draft, c.keys.Private)
}

// Guard runs fn and wipes the session if fn panics or fails with
// domain.ErrCryptoOperation. A panic is re-raised after wiping.
func (c *Context) Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.ClearSession()
			panic(r)
		}
		if errors.Is(err, domain.ErrCryptoOperation) {
			c.log.Warn("wiping session after fatal error", "err", err)
			c.ClearSession()
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (c *Context) live() bool {
	return c.state == domain.StateDerived || c.state == domain.StateExported
}
