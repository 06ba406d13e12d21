package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	"github.com/dropDatabas3/tokenbridge/internal/store/memory"
)

func strptr(s string) *string { return &s }

func TestRecords_UserCodeUniqueness(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	err := conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "dc-1", Kind: "DeviceCode", UserCode: strptr("WDJB-MJHT"),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Mismo user_code en otro registro: conflicto, incluso cruzando kinds.
	err = conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "sess-1", Kind: "Session", UserCode: strptr("WDJB-MJHT"),
	})
	if !repository.IsConflict(err) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	// Reemplazar el mismo registro con el mismo código es válido.
	err = conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "dc-1", Kind: "DeviceCode", UserCode: strptr("WDJB-MJHT"),
	})
	if err != nil {
		t.Fatalf("self replace: %v", err)
	}
}

func TestRecords_ReplaceReleasesOldIndexes(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	err := conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "dc-1", Kind: "DeviceCode", UserCode: strptr("AAAA-AAAA"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Reemplazo con código nuevo libera el anterior.
	err = conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "dc-1", Kind: "DeviceCode", UserCode: strptr("BBBB-BBBB"),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	err = conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "dc-2", Kind: "DeviceCode", UserCode: strptr("AAAA-AAAA"),
	})
	if err != nil {
		t.Fatalf("old user code must be free after replace: %v", err)
	}
	if _, err := conn.Records().GetByUserCode(ctx, "DeviceCode", "AAAA-AAAA"); err != nil {
		t.Fatalf("lookup new owner: %v", err)
	}
}

func TestRecords_PayloadIsolation(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	payload := map[string]any{"scope": "read"}
	if err := conn.Records().Upsert(ctx, repository.UpsertRecordInput{
		ID: "t-1", Kind: "AccessToken", Payload: payload,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Mutar el mapa del caller no toca lo almacenado.
	payload["scope"] = "admin"
	rec, err := conn.Records().Get(ctx, "AccessToken", "t-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Payload["scope"] != "read" {
		t.Fatalf("stored payload aliased: %v", rec.Payload["scope"])
	}

	// Mutar lo retornado tampoco.
	rec.Payload["scope"] = "admin"
	again, _ := conn.Records().Get(ctx, "AccessToken", "t-1")
	if again.Payload["scope"] != "read" {
		t.Fatalf("returned payload aliased: %v", again.Payload["scope"])
	}
}

func TestRecords_DeleteExpired(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	seed := []repository.UpsertRecordInput{
		{ID: "dead-1", Kind: "AccessToken", ExpiresAt: &past},
		{ID: "dead-2", Kind: "Session", ExpiresAt: &past},
		{ID: "alive", Kind: "AccessToken", ExpiresAt: &future},
		{ID: "forever", Kind: "Grant"},
	}
	for _, in := range seed {
		if err := conn.Records().Upsert(ctx, in); err != nil {
			t.Fatalf("seed %s: %v", in.ID, err)
		}
	}

	n, err := conn.Records().DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	if _, err := conn.Records().Get(ctx, "AccessToken", "alive"); err != nil {
		t.Fatalf("live record deleted: %v", err)
	}
	if _, err := conn.Records().Get(ctx, "Grant", "forever"); err != nil {
		t.Fatalf("no-expiry record deleted: %v", err)
	}
}

func TestPolicies_OrderingPriorityThenAge(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	mk := func(priority int) string {
		t.Helper()
		p, err := conn.Policies().Create(ctx, repository.ExchangePolicyInput{
			ClientID: "c1", Priority: priority, Enabled: true,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return p.ID
	}
	older := mk(5)
	newer := mk(5)
	top := mk(9)

	got, err := conn.Policies().ListEnabledByClient(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{top, older, newer}
	if len(got) != 3 {
		t.Fatalf("got %d policies", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPolicies_DisabledExcludedFromEnabledList(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	if _, err := conn.Policies().Create(ctx, repository.ExchangePolicyInput{ClientID: "c1", Enabled: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := conn.Policies().Create(ctx, repository.ExchangePolicyInput{ClientID: "c1", Enabled: false}); err != nil {
		t.Fatalf("create: %v", err)
	}

	enabled, _ := conn.Policies().ListEnabledByClient(ctx, "c1")
	all, _ := conn.Policies().ListByClient(ctx, "c1")
	if len(enabled) != 1 || len(all) != 2 {
		t.Fatalf("enabled=%d all=%d", len(enabled), len(all))
	}
}

func TestEvents_NewestFirstPagination(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := conn.Events().Create(ctx, &repository.ExchangeEvent{
			ID: fmt.Sprintf("ev-%d", i), ClientID: "c1", CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("create event: %v", err)
		}
	}
	_ = conn.Events().Create(ctx, &repository.ExchangeEvent{ID: "other", ClientID: "c2"})

	page, total, err := conn.Events().ListByClient(ctx, "c1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].ID != "ev-4" || page[1].ID != "ev-3" {
		t.Fatalf("page = %+v", page)
	}

	page, _, _ = conn.Events().ListByClient(ctx, "c1", 2, 4)
	if len(page) != 1 || page[0].ID != "ev-0" {
		t.Fatalf("last page = %+v", page)
	}

	page, total, _ = conn.Events().ListByClient(ctx, "c1", 2, 10)
	if len(page) != 0 || total != 5 {
		t.Fatalf("past-the-end page = %+v total=%d", page, total)
	}
}

func TestClients_Lifecycle(t *testing.T) {
	conn := memory.NewConnection()
	ctx := context.Background()

	_, err := conn.Clients().Create(ctx, repository.ClientInput{
		ClientID: "client-a", Name: "A", SecretHash: "hash", Enabled: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := conn.Clients().Create(ctx, repository.ClientInput{ClientID: "client-a"}); !repository.IsConflict(err) {
		t.Fatalf("duplicate client_id: want conflict, got %v", err)
	}

	c, err := conn.Clients().GetByClientID(ctx, "client-a")
	if err != nil || c.Name != "A" {
		t.Fatalf("get: %+v %v", c, err)
	}

	if err := conn.Clients().Delete(ctx, "client-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := conn.Clients().GetByClientID(ctx, "client-a"); !repository.IsNotFound(err) {
		t.Fatalf("want not found after delete, got %v", err)
	}
}
