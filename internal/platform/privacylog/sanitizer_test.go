package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	return payload
}

func TestSanitizingHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test",
		"mnemonic", "abandon abandon",
		"password", "hunter2",
		"private_key", "62a7",
		"status", "ok",
	)

	payload := decodeLine(t, &buf)
	for _, key := range []string{"mnemonic", "password", "private_key"} {
		if got, _ := payload[key].(string); got != redactedValue {
			t.Fatalf("%s: expected redacted, got %q", key, got)
		}
	}
	if payload["status"] != "ok" {
		t.Fatal("non-sensitive attribute changed")
	}
	if strings.Contains(buf.String(), "hunter2") {
		t.Fatal("password leaked into output")
	}
}

func TestSanitizingHandlerFingerprintsIdentities(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("grant issued", "did", "did:key:z6Mkabc", "grantee", "did:key:z6Mkdef")

	payload := decodeLine(t, &buf)
	if _, ok := payload["did"]; ok {
		t.Fatal("did should not be present in plain form")
	}
	fp, _ := payload["did_fp"].(string)
	if !strings.HasPrefix(fp, "fp_") {
		t.Fatalf("unexpected fingerprint %q", fp)
	}
	if fp != FingerprintID("did:key:z6Mkabc") {
		t.Fatal("fingerprint not stable within a process")
	}
}

func TestSanitizingHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil))).
		With("seed", "deadbeef").
		With(slog.Group("vault", slog.String("password", "x"), slog.Int("size", 3)))
	logger.Info("sealed")

	payload := decodeLine(t, &buf)
	if payload["seed"] != redactedValue {
		t.Fatalf("seed not redacted: %v", payload["seed"])
	}
	group, _ := payload["vault"].(map[string]any)
	if group["password"] != redactedValue {
		t.Fatalf("grouped password not redacted: %v", group)
	}
	if group["size"] != float64(3) {
		t.Fatalf("grouped size changed: %v", group["size"])
	}
}

func TestSanitizingHandlerImplementsSlogHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info disabled under warn level")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelWarn, "msg", 0)
	rec.AddAttrs(slog.String("token", "abc"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if strings.Contains(buf.String(), "abc") {
		t.Fatal("token leaked")
	}
	if WrapHandler(nil) != nil {
		t.Fatal("nil handler should stay nil")
	}
}
