package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"walletid/internal/domain"
)

// GrantSQLiteStore is the issuer's registry of signed grants and revocations.
type GrantSQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenGrantStore opens/creates the SQLite database at path and runs migrations.
func OpenGrantStore(path string) (*GrantSQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &GrantSQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *GrantSQLiteStore) Close() error { return s.db.Close() }

func (s *GrantSQLiteStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS grants (
  issuer_did TEXT NOT NULL,
  id TEXT NOT NULL,
  grantee TEXT NOT NULL,
  permissions TEXT NOT NULL,
  expires_at_ms INTEGER NOT NULL,
  signature TEXT NOT NULL,
  issued_at_ms INTEGER NOT NULL,
  revoked_at_ms INTEGER,
  PRIMARY KEY (issuer_did, id)
);

CREATE INDEX IF NOT EXISTS grants_grantee ON grants (grantee);
`)
	return err
}

// SaveGrant inserts a newly issued grant. Signed grants are immutable, so an
// existing (issuer, ID) pair is an error.
func (s *GrantSQLiteStore) SaveGrant(ctx context.Context, rec domain.GrantRecord) error {
	perms, err := json.Marshal(nonNil(rec.Grant.Permissions))
	if err != nil {
		return err
	}
	issued := rec.IssuedAt
	if issued.IsZero() {
		issued = s.now()
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO grants (id, issuer_did, grantee, permissions, expires_at_ms, signature, issued_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Grant.ID,
		string(rec.IssuerDID),
		rec.Grant.Grantee,
		string(perms),
		rec.Grant.ExpiresAt.UnixMilli(),
		rec.Grant.Signature,
		issued.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save grant %s: %w", rec.Grant.ID, err)
	}
	return nil
}

// LoadGrant returns the grant issuer issued under id and whether it exists.
func (s *GrantSQLiteStore) LoadGrant(ctx context.Context, issuer domain.DID, id string) (domain.GrantRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, issuer_did, grantee, permissions, expires_at_ms, signature, issued_at_ms, revoked_at_ms
FROM grants WHERE issuer_did = ? AND id = ?`, string(issuer), id)
	rec, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GrantRecord{}, false, nil
	}
	if err != nil {
		return domain.GrantRecord{}, false, err
	}
	return rec, true, nil
}

// ListGrants returns every grant, oldest first.
func (s *GrantSQLiteStore) ListGrants(ctx context.Context) ([]domain.GrantRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, issuer_did, grantee, permissions, expires_at_ms, signature, issued_at_ms, revoked_at_ms
FROM grants ORDER BY issued_at_ms ASC, issuer_did ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GrantRecord
	for rows.Next() {
		rec, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Revoke marks the grant issuer issued under id as revoked. Revoking twice
// keeps the first timestamp.
func (s *GrantSQLiteStore) Revoke(ctx context.Context, issuer domain.DID, id string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE grants SET revoked_at_ms = COALESCE(revoked_at_ms, ?) WHERE issuer_did = ? AND id = ?`,
		s.now().UnixMilli(), string(issuer), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrGrantNotFound, id)
	}
	return nil
}

// IsRevoked reports whether issuer revoked its grant id. Grants this
// registry never recorded are not revoked; IDs are only unique per issuer.
func (s *GrantSQLiteStore) IsRevoked(ctx context.Context, issuer domain.DID, id string) (bool, error) {
	var revoked sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT revoked_at_ms FROM grants WHERE issuer_did = ? AND id = ?`, string(issuer), id,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return revoked.Valid, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(r rowScanner) (domain.GrantRecord, error) {
	var (
		rec       domain.GrantRecord
		issuer    string
		perms     string
		expiresMs int64
		issuedMs  int64
		revokedMs sql.NullInt64
	)
	err := r.Scan(
		&rec.Grant.ID,
		&issuer,
		&rec.Grant.Grantee,
		&perms,
		&expiresMs,
		&rec.Grant.Signature,
		&issuedMs,
		&revokedMs,
	)
	if err != nil {
		return domain.GrantRecord{}, err
	}
	if err := json.Unmarshal([]byte(perms), &rec.Grant.Permissions); err != nil {
		return domain.GrantRecord{}, fmt.Errorf("grant %s permissions: %w", rec.Grant.ID, err)
	}
	rec.IssuerDID = domain.DID(issuer)
	rec.Grant.ExpiresAt = time.UnixMilli(expiresMs).UTC()
	rec.IssuedAt = time.UnixMilli(issuedMs).UTC()
	if revokedMs.Valid {
		at := time.UnixMilli(revokedMs.Int64).UTC()
		rec.RevokedAt = &at
	}
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Compile-time assertion that GrantSQLiteStore implements domain.GrantStore.
var _ domain.GrantStore = (*GrantSQLiteStore)(nil)
