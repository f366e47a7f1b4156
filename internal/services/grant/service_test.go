package grant_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"walletid/internal/crypto"
	"walletid/internal/domain"
	"walletid/internal/metrics"
	"walletid/internal/services/grant"
	"walletid/internal/session"
	"walletid/internal/store"
)

const (
	issuerMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	granteeDID     = "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *grant.Service
	sess    *session.Context
	store   *store.GrantSQLiteStore
	metrics *metrics.Metrics
	issuer  domain.DID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.OpenGrantStore(filepath.Join(t.TempDir(), "grants.db"))
	if err != nil {
		t.Fatalf("OpenGrantStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	keys, err := crypto.DeriveKeyPair(issuerMnemonic)
	if err != nil {
		t.Fatal(err)
	}
	issuer := crypto.DIDCodec{}.Encode(keys.Public)
	sess := session.New(nil)
	sess.SetSession(keys, issuer)
	keys.Wipe()
	t.Cleanup(sess.ClearSession)

	m := metrics.New()
	svc := grant.New(st, sess, crypto.DIDCodec{}, m, nil)
	svc.SetClock(func() time.Time { return now })
	return fixture{svc: svc, sess: sess, store: st, metrics: m, issuer: issuer}
}

func draft(expires time.Time) domain.AccessGrantDraft {
	return domain.AccessGrantDraft{
		Grantee:     granteeDID,
		Permissions: []string{"write", "read"},
		ExpiresAt:   expires,
	}
}

func TestIssueAndCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.IssueGrant(ctx, draft(now.Add(time.Hour)))
	if err != nil {
		t.Fatalf("IssueGrant: %v", err)
	}
	if g.ID == "" || len(g.Signature) != 128 {
		t.Fatalf("unexpected grant %+v", g)
	}
	if g.Permissions[0] != "write" {
		t.Fatalf("caller permission order should be kept, got %v", g.Permissions)
	}

	rec, found, err := f.store.LoadGrant(ctx, f.issuer, g.ID)
	if err != nil || !found {
		t.Fatalf("grant not recorded: %v %v", found, err)
	}
	if rec.IssuerDID != f.issuer {
		t.Fatalf("issuer = %s", rec.IssuerDID)
	}

	st, err := f.svc.CheckGrant(ctx, g, f.issuer)
	if err != nil {
		t.Fatalf("CheckGrant: %v", err)
	}
	if !st.OK() {
		t.Fatalf("status = %+v, want valid", st)
	}
	assertChecks(t, f.metrics, map[string]int{"ok": 1})
}

func assertChecks(t *testing.T, m *metrics.Metrics, want map[string]int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("# HELP walletid_grant_checks_total Grant checks by outcome (ok, invalid, expired, revoked).\n")
	b.WriteString("# TYPE walletid_grant_checks_total counter\n")
	for _, outcome := range []string{"expired", "invalid", "ok", "revoked"} {
		if n, ok := want[outcome]; ok {
			fmt.Fprintf(&b, "walletid_grant_checks_total{outcome=%q} %d\n", outcome, n)
		}
	}
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(b.String()), "walletid_grant_checks_total"); err != nil {
		t.Fatal(err)
	}
}

func TestCheckGrant_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.IssueGrant(ctx, draft(now))
	if err != nil {
		t.Fatal(err)
	}
	st, err := f.svc.CheckGrant(ctx, g, f.issuer)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Valid || !st.Expired || st.OK() {
		t.Fatalf("grant expiring at now must be expired, got %+v", st)
	}
	assertChecks(t, f.metrics, map[string]int{"expired": 1})
}

func TestCheckGrant_Revoked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.IssueGrant(ctx, draft(now.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RevokeGrant(ctx, f.issuer, g.ID); err != nil {
		t.Fatalf("RevokeGrant: %v", err)
	}
	st, err := f.svc.CheckGrant(ctx, g, f.issuer)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Valid || !st.Revoked || st.OK() {
		t.Fatalf("status = %+v, want revoked", st)
	}
	assertChecks(t, f.metrics, map[string]int{"revoked": 1})

	if err := f.svc.RevokeGrant(ctx, f.issuer, "missing"); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Fatalf("want ErrGrantNotFound, got %v", err)
	}
}

func TestCheckGrant_RevocationIsPerIssuer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := draft(now.Add(time.Hour))
	d.ID = "g1"
	if _, err := f.svc.IssueGrant(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RevokeGrant(ctx, f.issuer, "g1"); err != nil {
		t.Fatal(err)
	}

	phrase, err := crypto.GenerateMnemonic(crypto.DefaultEntropyBits)
	if err != nil {
		t.Fatal(err)
	}
	otherKeys, err := crypto.DeriveKeyPair(phrase)
	if err != nil {
		t.Fatal(err)
	}
	defer otherKeys.Wipe()
	otherIssuer := crypto.DIDCodec{}.Encode(otherKeys.Public)
	theirs, err := crypto.SignGrant(d, otherKeys.Private)
	if err != nil {
		t.Fatal(err)
	}

	st, err := f.svc.CheckGrant(ctx, theirs, otherIssuer)
	if err != nil {
		t.Fatal(err)
	}
	if !st.OK() {
		t.Fatalf("another issuer's g1 must not inherit the local revocation, got %+v", st)
	}
	if err := f.svc.RevokeGrant(ctx, otherIssuer, "g1"); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Fatalf("want ErrGrantNotFound for a grant this wallet never issued, got %v", err)
	}
}

func TestCheckGrant_TamperedAndWrongIssuer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.IssueGrant(ctx, draft(now.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}

	tampered := g
	tampered.Permissions = []string{"read", "write", "admin"}
	st, err := f.svc.CheckGrant(ctx, tampered, f.issuer)
	if err != nil {
		t.Fatal(err)
	}
	if st.Valid {
		t.Fatal("tampered grant must not verify")
	}

	st, err = f.svc.CheckGrant(ctx, g, granteeDID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Valid {
		t.Fatal("grant must not verify under another issuer")
	}
	assertChecks(t, f.metrics, map[string]int{"invalid": 2})

	if _, err := f.svc.CheckGrant(ctx, g, "did:web:example"); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat for a bad issuer, got %v", err)
	}
}

func TestCheckGrant_PermutedPermissionsStillValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, err := f.svc.IssueGrant(ctx, draft(now.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	g.Permissions = []string{"read", "write", "read"}
	st, err := f.svc.CheckGrant(ctx, g, f.issuer)
	if err != nil {
		t.Fatal(err)
	}
	if !st.OK() {
		t.Fatalf("permission order must not matter, got %+v", st)
	}
}

func TestIssueGrant_NoSession(t *testing.T) {
	f := newFixture(t)
	f.sess.ClearSession()
	if _, err := f.svc.IssueGrant(context.Background(), draft(now.Add(time.Hour))); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
	recs, err := f.svc.ListGrants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("nothing should be recorded, got %d", len(recs))
	}
}

func TestIssueGrant_InvalidDraft(t *testing.T) {
	f := newFixture(t)
	d := draft(now.Add(time.Hour))
	d.Grantee = " "
	if _, err := f.svc.IssueGrant(context.Background(), d); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
	if !f.sess.HasSession() {
		t.Fatal("a format error must not wipe the session")
	}
}

func TestListGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.IssueGrant(ctx, draft(now.Add(time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := f.svc.ListGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 grants, got %d", len(recs))
	}
	for _, r := range recs {
		if r.IssuerDID != f.issuer {
			t.Fatalf("issuer = %s", r.IssuerDID)
		}
	}
}

func TestVerifyOnlyService(t *testing.T) {
	f := newFixture(t)
	g, err := f.svc.IssueGrant(context.Background(), draft(now.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	verifier := grant.New(nil, nil, crypto.DIDCodec{}, nil, nil)
	verifier.SetClock(func() time.Time { return now })
	st, err := verifier.CheckGrant(context.Background(), g, f.issuer)
	if err != nil {
		t.Fatal(err)
	}
	if !st.OK() {
		t.Fatalf("status = %+v", st)
	}
	if _, err := verifier.IssueGrant(context.Background(), draft(now)); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("want ErrNoSession, got %v", err)
	}
}
