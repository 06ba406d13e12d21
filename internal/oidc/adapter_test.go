package oidc_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
	"github.com/dropDatabas3/tokenbridge/internal/store"
	_ "github.com/dropDatabas3/tokenbridge/internal/store/memory"
)

func newFactory(t *testing.T) (*oidc.AdapterFactory, store.AdapterConnection) {
	t.Helper()
	conn, err := store.Open(context.Background(), "memory", store.AdapterConfig{})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return oidc.NewAdapterFactory(conn.Records(), nil), conn
}

func TestAdapter_UpsertFindRoundTrip(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindAccessToken)
	ctx := context.Background()

	payload := map[string]any{
		"sub":     "user-1",
		"grantId": "grant-1",
		"iat":     int64(1700000000),
	}
	if err := a.Upsert(ctx, "tok-1", payload, time.Minute); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := a.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got["sub"] != "user-1" {
		t.Fatalf("sub = %v", got["sub"])
	}
	// El storage puede serializar números como float64 o texto;
	// el adapter los devuelve coercionados.
	if got["iat"] != int64(1700000000) {
		t.Fatalf("iat = %v (%T), want int64", got["iat"], got["iat"])
	}
}

func TestAdapter_KindPartitioning(t *testing.T) {
	f, _ := newFactory(t)
	ctx := context.Background()

	at := f.For(oidc.KindAccessToken)
	rt := f.For(oidc.KindRefreshToken)

	if err := at.Upsert(ctx, "same-id", map[string]any{"k": "access"}, 0); err != nil {
		t.Fatalf("upsert access: %v", err)
	}
	if err := rt.Upsert(ctx, "same-id", map[string]any{"k": "refresh"}, 0); err != nil {
		t.Fatalf("upsert refresh: %v", err)
	}

	got, err := at.Find(ctx, "same-id")
	if err != nil {
		t.Fatalf("find access: %v", err)
	}
	if got["k"] != "access" {
		t.Fatalf("cross-kind bleed: %v", got["k"])
	}

	// Destroy de un kind no toca el otro.
	if err := at.Destroy(ctx, "same-id"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := rt.Find(ctx, "same-id"); err != nil {
		t.Fatalf("refresh record gone after access destroy: %v", err)
	}
}

func TestAdapter_ExpiredRecordReapedOnRead(t *testing.T) {
	f, conn := newFactory(t)
	a := f.For(oidc.KindAuthorizationCode)
	ctx := context.Background()

	if err := a.Upsert(ctx, "code-1", map[string]any{"sub": "u"}, time.Millisecond); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := a.Find(ctx, "code-1"); !repository.IsNotFound(err) {
		t.Fatalf("want ErrNotFound for expired record, got %v", err)
	}
	// El reaping es un borrado real, no solo un filtro de lectura.
	if _, err := conn.Records().Get(ctx, oidc.KindAuthorizationCode, "code-1"); !repository.IsNotFound(err) {
		t.Fatalf("expired record still stored: %v", err)
	}
}

func TestAdapter_ZeroTTLNeverExpires(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindGrant)
	ctx := context.Background()

	if err := a.Upsert(ctx, "g-1", map[string]any{}, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := a.Find(ctx, "g-1"); err != nil {
		t.Fatalf("zero-ttl record should live: %v", err)
	}
}

func TestAdapter_ConsumeIdempotent(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindAuthorizationCode)
	ctx := context.Background()

	if err := a.Upsert(ctx, "code-1", map[string]any{"sub": "u"}, time.Minute); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := a.Consume(ctx, "code-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}

	first, err := a.Find(ctx, "code-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	ts, ok := first["consumed"].(int64)
	if !ok || ts == 0 {
		t.Fatalf("consumed = %v (%T), want unix seconds", first["consumed"], first["consumed"])
	}

	// Segundo consume no cambia el timestamp original.
	time.Sleep(10 * time.Millisecond)
	if err := a.Consume(ctx, "code-1"); err != nil {
		t.Fatalf("second consume: %v", err)
	}
	second, err := a.Find(ctx, "code-1")
	if err != nil {
		t.Fatalf("find after second consume: %v", err)
	}
	if second["consumed"] != ts {
		t.Fatalf("consumed timestamp moved: %v -> %v", ts, second["consumed"])
	}
}

func TestAdapter_ConsumeMissingIsNoop(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindAuthorizationCode)
	if err := a.Consume(context.Background(), "nope"); err != nil {
		t.Fatalf("consume missing: %v", err)
	}
}

func TestAdapter_RevokeByGrantID(t *testing.T) {
	f, _ := newFactory(t)
	ctx := context.Background()

	seed := func(kind, id string) {
		t.Helper()
		err := f.For(kind).Upsert(ctx, id, map[string]any{"grantId": "grant-1"}, time.Minute)
		if err != nil {
			t.Fatalf("seed %s/%s: %v", kind, id, err)
		}
	}
	seed(oidc.KindAccessToken, "at-1")
	seed(oidc.KindRefreshToken, "rt-1")
	seed(oidc.KindSession, "sess-1")
	// Interaction no es grantable: la revocación no lo alcanza.
	seed(oidc.KindInteraction, "int-1")

	if err := f.For(oidc.KindAccessToken).RevokeByGrantID(ctx, "grant-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	for _, probe := range []struct{ kind, id string }{
		{oidc.KindAccessToken, "at-1"},
		{oidc.KindRefreshToken, "rt-1"},
		{oidc.KindSession, "sess-1"},
	} {
		if _, err := f.For(probe.kind).Find(ctx, probe.id); !repository.IsNotFound(err) {
			t.Fatalf("%s/%s survived revocation: %v", probe.kind, probe.id, err)
		}
	}
	if _, err := f.For(oidc.KindInteraction).Find(ctx, "int-1"); err != nil {
		t.Fatalf("non-grantable record should survive: %v", err)
	}
}

func TestAdapter_RevokeFromNonGrantableKindIsNoop(t *testing.T) {
	f, _ := newFactory(t)
	ctx := context.Background()

	err := f.For(oidc.KindAccessToken).Upsert(ctx, "at-1", map[string]any{"grantId": "grant-1"}, time.Minute)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.For(oidc.KindInteraction).RevokeByGrantID(ctx, "grant-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := f.For(oidc.KindAccessToken).Find(ctx, "at-1"); err != nil {
		t.Fatalf("revoke from non-grantable kind must not delete: %v", err)
	}
}

func TestAdapter_GrantCleanerRemovesAllKinds(t *testing.T) {
	f, _ := newFactory(t)
	ctx := context.Background()

	for _, s := range []struct{ kind, id string }{
		{oidc.KindAccessToken, "at-1"},
		{oidc.KindInteraction, "int-1"},
		{oidc.KindGrant, "grant-1"},
	} {
		err := f.For(s.kind).Upsert(ctx, s.id, map[string]any{"grantId": "grant-1"}, time.Minute)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := f.For(oidc.KindGrant).GrantCleaner(ctx, "grant-1"); err != nil {
		t.Fatalf("grant cleaner: %v", err)
	}
	for _, probe := range []struct{ kind, id string }{
		{oidc.KindAccessToken, "at-1"},
		{oidc.KindInteraction, "int-1"},
		{oidc.KindGrant, "grant-1"},
	} {
		if _, err := f.For(probe.kind).Find(ctx, probe.id); !repository.IsNotFound(err) {
			t.Fatalf("%s/%s survived grant cleanup: %v", probe.kind, probe.id, err)
		}
	}
}

func TestAdapter_CleanExpired(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindAccessToken)
	ctx := context.Background()

	if err := a.Upsert(ctx, "old", map[string]any{}, time.Millisecond); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := a.Upsert(ctx, "fresh", map[string]any{}, time.Hour); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if err := a.CleanExpired(ctx); err != nil {
		t.Fatalf("clean expired: %v", err)
	}
	if _, err := a.Find(ctx, "old"); !repository.IsNotFound(err) {
		t.Fatalf("expired record survived sweep: %v", err)
	}
	if _, err := a.Find(ctx, "fresh"); err != nil {
		t.Fatalf("live record swept: %v", err)
	}
}

func TestAdapter_DestroyMissingIsNoop(t *testing.T) {
	f, _ := newFactory(t)
	if err := f.For(oidc.KindSession).Destroy(context.Background(), "nope"); err != nil {
		t.Fatalf("destroy missing: %v", err)
	}
}

func TestAdapter_UpsertReplaceClearsConsumed(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindDeviceCode)
	ctx := context.Background()

	if err := a.Upsert(ctx, "dc-1", map[string]any{"v": 1}, time.Minute); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := a.Consume(ctx, "dc-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := a.Upsert(ctx, "dc-1", map[string]any{"v": 2}, time.Minute); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := a.Find(ctx, "dc-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, ok := got["consumed"]; ok {
		t.Fatal("replacement record must start unconsumed")
	}
}

func TestAdapter_FindByUserCode(t *testing.T) {
	f, _ := newFactory(t)
	a := f.For(oidc.KindDeviceCode)
	ctx := context.Background()

	if err := a.Upsert(ctx, "dc-1", map[string]any{"userCode": "WDJB-MJHT"}, time.Minute); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := a.FindByUserCode(ctx, "WDJB-MJHT")
	if err != nil {
		t.Fatalf("find by user code: %v", err)
	}
	if got["userCode"] != "WDJB-MJHT" {
		t.Fatalf("payload = %v", got)
	}
	if _, err := a.FindByUserCode(ctx, "XXXX-XXXX"); !repository.IsNotFound(err) {
		t.Fatalf("unknown user code: %v", err)
	}
}
