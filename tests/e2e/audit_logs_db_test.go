package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB接続文字列を環境変数から読む。
func auditTestDSN(t *testing.T) string {
	t.Helper()
	v := os.Getenv("TEST_DATABASE_DSN")
	if v == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping DB check")
	}
	return v
}

func Test_AuditLogs_UpdateStock_IsRecorded(t *testing.T) {
	requireE2E(t)
	dsn := auditTestDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("sql.Open(pgx) failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	c := NewTestClient(t)
	admin := adminLogin(t, c, ctx)
	user, _ := registerAndLogin(t, c, ctx)

	_, variantID, _ := setupCheckoutFixture(t, c, ctx, admin, user, 5, 1000)

	//在庫更新で監査ログが発生する
	b, _ := json.Marshal(map[string]interface{}{"stock": 9, "reason": "audit e2e"})
	resp, body := c.doJSON(ctx, t, http.MethodPatch, fmt.Sprintf("/admin/variants/%d/stock", variantID), admin, b)
	requireStatus(t, resp, http.StatusNoContent, body)

	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	err = db.QueryRowContext(qctx,
		`SELECT count(*) FROM audit_logs
		 WHERE action = 'UPDATE_STOCK' AND resource_type = 'variant' AND resource_id = $1`,
		variantID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("query audit_logs failed: %v", err)
	}
	if count == 0 {
		t.Fatalf("no UPDATE_STOCK audit log for variant %d", variantID)
	}

	//調整履歴も残る
	var delta int64
	err = db.QueryRowContext(qctx,
		`SELECT delta FROM inventory_adjustments
		 WHERE variant_id = $1 ORDER BY id DESC LIMIT 1`,
		variantID,
	).Scan(&delta)
	if err != nil {
		t.Fatalf("query inventory_adjustments failed: %v", err)
	}
	if delta != 4 {
		t.Fatalf("delta=%d want=4 (5 -> 9)", delta)
	}
}
