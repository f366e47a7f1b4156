package crypto_test

import (
	"errors"
	"testing"
	"time"

	"walletid/internal/crypto"
	"walletid/internal/domain"
)

const (
	goldenGrantee    = "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK"
	goldenGrantSig   = "3ade38a84e96bdd0bbb427c663bda547853757f92f51cb0abb35cc22ecae25f5a3bca9b12eed0071c1615a680a0b932e43c1b52a0b9fb702d423743114a8f40e"
	goldenGrantBytes = `{"id":"grant-1","grantee":"did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK","permissions":["read","write"],"expiresAt":1767225600000}`
)

func goldenDraft(perms ...string) domain.AccessGrantDraft {
	return domain.AccessGrantDraft{
		ID:          "grant-1",
		Grantee:     goldenGrantee,
		Permissions: perms,
		ExpiresAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCanonicalGrantPayload_Golden(t *testing.T) {
	got, err := crypto.CanonicalGrantPayload(goldenDraft("write", "read", "write"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != goldenGrantBytes {
		t.Fatalf("canonical payload mismatch:\n got %s\nwant %s", got, goldenGrantBytes)
	}
}

func TestCanonicalGrantPayload_NoHTMLEscaping(t *testing.T) {
	d := goldenDraft("a&b", "<admin>")
	got, err := crypto.CanonicalGrantPayload(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"grant-1","grantee":"` + goldenGrantee + `","permissions":["<admin>","a&b"],"expiresAt":1767225600000}`
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestCanonicalGrantPayload_EmptyPermissions(t *testing.T) {
	got, err := crypto.CanonicalGrantPayload(goldenDraft())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"grant-1","grantee":"` + goldenGrantee + `","permissions":[],"expiresAt":1767225600000}`
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestSignGrant_Golden(t *testing.T) {
	kp := goldenKeys(t)
	g, err := crypto.SignGrant(goldenDraft("read", "write"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	if g.Signature != goldenGrantSig {
		t.Fatalf("grant signature mismatch: got %s", g.Signature)
	}
	if !crypto.VerifyGrant(g, kp.Public) {
		t.Fatal("golden grant does not verify")
	}
}

func TestSignGrant_PermutationInvariant(t *testing.T) {
	kp := goldenKeys(t)
	a, err := crypto.SignGrant(goldenDraft("read", "write"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	b, err := crypto.SignGrant(goldenDraft("write", "read"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	c, err := crypto.SignGrant(goldenDraft("write", "read", "read"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	if a.Signature != b.Signature || a.Signature != c.Signature {
		t.Fatal("permission order or duplicates changed the signature")
	}
	if b.Permissions[0] != "write" {
		t.Fatal("signed grant must keep the caller's permission order")
	}
}

func TestVerifyGrant_Tampering(t *testing.T) {
	kp := goldenKeys(t)
	g, err := crypto.SignGrant(goldenDraft("read"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}

	mutations := map[string]func(*domain.AccessGrant){
		"id":          func(g *domain.AccessGrant) { g.ID = "grant-2" },
		"grantee":     func(g *domain.AccessGrant) { g.Grantee = "did:key:zother" },
		"permissions": func(g *domain.AccessGrant) { g.Permissions = []string{"read", "write"} },
		"expiresAt":   func(g *domain.AccessGrant) { g.ExpiresAt = g.ExpiresAt.Add(time.Millisecond) },
		"signature":   func(g *domain.AccessGrant) { g.Signature = flipHex(g.Signature) },
		"bad hex":     func(g *domain.AccessGrant) { g.Signature = "xyz" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cp := g
			cp.Permissions = append([]string(nil), g.Permissions...)
			mutate(&cp)
			if crypto.VerifyGrant(cp, kp.Public) {
				t.Fatal("tampered grant verifies")
			}
		})
	}

	other := kp.Public
	other[0] ^= 1
	if crypto.VerifyGrant(g, other) {
		t.Fatal("grant verifies under a different issuer")
	}
}

func TestVerifyGrant_SubMillisecondIgnored(t *testing.T) {
	kp := goldenKeys(t)
	g, err := crypto.SignGrant(goldenDraft("read"), kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	g.ExpiresAt = g.ExpiresAt.Add(300 * time.Microsecond)
	if !crypto.VerifyGrant(g, kp.Public) {
		t.Fatal("expiresAt is signed at millisecond precision")
	}
}

func TestSignGrant_AssignsID(t *testing.T) {
	kp := goldenKeys(t)
	d := goldenDraft("read")
	d.ID = ""
	g, err := crypto.SignGrant(d, kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.ID) != 36 {
		t.Fatalf("want uuid id, got %q", g.ID)
	}
	if !crypto.VerifyGrant(g, kp.Public) {
		t.Fatal("grant with generated id does not verify")
	}
}

func TestSignGrant_RequiresGrantee(t *testing.T) {
	kp := goldenKeys(t)
	d := goldenDraft("read")
	d.Grantee = " "
	if _, err := crypto.SignGrant(d, kp.Private); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
}

func TestSignGrant_RejectsInvalidUTF8(t *testing.T) {
	kp := goldenKeys(t)
	cases := map[string]func(d *domain.AccessGrantDraft){
		"id":         func(d *domain.AccessGrantDraft) { d.ID = "grant-\xff" },
		"grantee":    func(d *domain.AccessGrantDraft) { d.Grantee = "alice\xff" },
		"permission": func(d *domain.AccessGrantDraft) { d.Permissions = []string{"read", "wr\xfeite"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := goldenDraft("read")
			mutate(&d)
			if _, err := crypto.SignGrant(d, kp.Private); !errors.Is(err, domain.ErrInvalidFormat) {
				t.Fatalf("want ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestVerifyGrant_InvalidUTF8DoesNotCollide(t *testing.T) {
	kp := goldenKeys(t)
	d := goldenDraft("read")
	d.Grantee = "alice\uFFFD"
	g, err := crypto.SignGrant(d, kp.Private)
	if err != nil {
		t.Fatal(err)
	}
	for _, grantee := range []string{"alice\xff", "alice\xfe"} {
		forged := g
		forged.Grantee = grantee
		if crypto.VerifyGrant(forged, kp.Public) {
			t.Fatalf("grantee %q verified under the signature for %q", grantee, d.Grantee)
		}
	}
	if !crypto.VerifyGrant(g, kp.Public) {
		t.Fatal("original grant no longer verifies")
	}
}

func TestAccessGrant_UnmarshalErrorsAreInvalidFormat(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"wrong type":      `{"id":1}`,
		"array":           `[]`,
		"missing expires": `{"id":"g","grantee":"x","signature":"00"}`,
		"missing id":      `{"grantee":"x","expiresAt":1,"signature":"00"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			var g domain.AccessGrant
			if err := g.UnmarshalJSON([]byte(in)); !errors.Is(err, domain.ErrInvalidFormat) {
				t.Fatalf("want ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestCanonicalPermissions(t *testing.T) {
	got := crypto.CanonicalPermissions([]string{"b", "a", "b", "c", "a"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
	if crypto.CanonicalPermissions(nil) == nil {
		t.Fatal("want non-nil empty slice")
	}
}

func flipHex(s string) string {
	if s[0] == '0' {
		return "1" + s[1:]
	}
	return "0" + s[1:]
}
