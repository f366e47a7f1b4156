package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"walletid/internal/domain"
	"walletid/internal/store"
)

func openGrants(t *testing.T) *store.GrantSQLiteStore {
	t.Helper()
	s, err := store.OpenGrantStore(filepath.Join(t.TempDir(), "grants.db"))
	if err != nil {
		t.Fatalf("OpenGrantStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

const sampleIssuer domain.DID = "did:key:zissuer"

func sampleRecord(id string, issued time.Time) domain.GrantRecord {
	return domain.GrantRecord{
		Grant: domain.AccessGrant{
			ID:          id,
			Grantee:     "did:key:zgrantee",
			Permissions: []string{"write", "read"},
			ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			Signature:   "ab",
		},
		IssuerDID: sampleIssuer,
		IssuedAt:  issued,
	}
}

func TestGrantStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openGrants(t)

	rec := sampleRecord("g1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := s.SaveGrant(ctx, rec); err != nil {
		t.Fatalf("SaveGrant: %v", err)
	}
	got, ok, err := s.LoadGrant(ctx, sampleIssuer, "g1")
	if err != nil || !ok {
		t.Fatalf("LoadGrant: ok=%v err=%v", ok, err)
	}
	if got.Grant.Grantee != rec.Grant.Grantee || got.IssuerDID != rec.IssuerDID {
		t.Fatalf("mismatch: %+v", got)
	}
	if len(got.Grant.Permissions) != 2 || got.Grant.Permissions[0] != "write" {
		t.Fatalf("permissions must keep issue order, got %v", got.Grant.Permissions)
	}
	if !got.Grant.ExpiresAt.Equal(rec.Grant.ExpiresAt) || !got.IssuedAt.Equal(rec.IssuedAt) {
		t.Fatal("timestamps changed")
	}
	if got.RevokedAt != nil {
		t.Fatal("new grant must not be revoked")
	}
}

func TestGrantStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openGrants(t)
	rec := sampleRecord("g1", time.Now())
	if err := s.SaveGrant(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGrant(ctx, rec); err == nil {
		t.Fatal("want error when re-saving an existing grant")
	}
}

func TestGrantStore_LoadMissing(t *testing.T) {
	_, ok, err := openGrants(t).LoadGrant(context.Background(), sampleIssuer, "nope")
	if err != nil || ok {
		t.Fatalf("want (false, nil), got (%v, %v)", ok, err)
	}
}

func TestGrantStore_Revoke(t *testing.T) {
	ctx := context.Background()
	s := openGrants(t)
	if err := s.SaveGrant(ctx, sampleRecord("g1", time.Now())); err != nil {
		t.Fatal(err)
	}

	revoked, err := s.IsRevoked(ctx, sampleIssuer, "g1")
	if err != nil || revoked {
		t.Fatalf("fresh grant: revoked=%v err=%v", revoked, err)
	}
	if err := s.Revoke(ctx, sampleIssuer, "g1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	first, _, err := s.LoadGrant(ctx, sampleIssuer, "g1")
	if err != nil || first.RevokedAt == nil {
		t.Fatalf("revoked_at not set: %v", err)
	}
	if err := s.Revoke(ctx, sampleIssuer, "g1"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	second, _, _ := s.LoadGrant(ctx, sampleIssuer, "g1")
	if !second.RevokedAt.Equal(*first.RevokedAt) {
		t.Fatal("second revoke moved the timestamp")
	}
	revoked, err = s.IsRevoked(ctx, sampleIssuer, "g1")
	if err != nil || !revoked {
		t.Fatalf("want revoked, got %v %v", revoked, err)
	}

	if err := s.Revoke(ctx, sampleIssuer, "missing"); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Fatalf("want ErrGrantNotFound, got %v", err)
	}
	if revoked, err := s.IsRevoked(ctx, sampleIssuer, "missing"); err != nil || revoked {
		t.Fatalf("unknown grant: revoked=%v err=%v", revoked, err)
	}
}

func TestGrantStore_IDsScopedByIssuer(t *testing.T) {
	ctx := context.Background()
	s := openGrants(t)
	const other domain.DID = "did:key:zother"

	mine := sampleRecord("g1", time.Now())
	theirs := sampleRecord("g1", time.Now())
	theirs.IssuerDID = other
	if err := s.SaveGrant(ctx, mine); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGrant(ctx, theirs); err != nil {
		t.Fatalf("same ID under another issuer must be accepted: %v", err)
	}

	if err := s.Revoke(ctx, sampleIssuer, "g1"); err != nil {
		t.Fatal(err)
	}
	if revoked, err := s.IsRevoked(ctx, sampleIssuer, "g1"); err != nil || !revoked {
		t.Fatalf("own grant: revoked=%v err=%v", revoked, err)
	}
	if revoked, err := s.IsRevoked(ctx, other, "g1"); err != nil || revoked {
		t.Fatalf("other issuer's grant must stay unrevoked: revoked=%v err=%v", revoked, err)
	}
	if err := s.Revoke(ctx, "did:key:znobody", "g1"); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Fatalf("want ErrGrantNotFound for an issuer without g1, got %v", err)
	}
	rec, ok, err := s.LoadGrant(ctx, other, "g1")
	if err != nil || !ok || rec.IssuerDID != other || rec.RevokedAt != nil {
		t.Fatalf("LoadGrant(other): %+v ok=%v err=%v", rec, ok, err)
	}
}

func TestGrantStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	s := openGrants(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		if err := s.SaveGrant(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.ListGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 || recs[0].Grant.ID != "c" || recs[2].Grant.ID != "b" {
		t.Fatalf("unexpected order: %v", recs)
	}
}

func TestGrantStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grants.db")
	s, err := store.OpenGrantStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGrant(ctx, sampleRecord("g1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := store.OpenGrantStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, ok, err := s2.LoadGrant(ctx, sampleIssuer, "g1"); err != nil || !ok {
		t.Fatalf("grant lost after reopen: ok=%v err=%v", ok, err)
	}
}
