package repository

import (
	"context"

	"shop/internal/domain/model"
)

// バリアント在庫の台帳。増減は必ず条件付きUPDATEで行い、
// 呼び出し側のトランザクション内で実行される（独自のTxは張らない）。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算。足りなければfalse。
	// チェックと減算は1つのUPDATE（stock >= qty を条件）で行う。
	Reserve(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）。常に成功する。
	Release(ctx context.Context, variantID int64, qty int64) error

	// 在庫の現在値を設定（管理者の手動調整）
	SetStock(ctx context.Context, variantID int64, newStock int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error

	// 在庫が閾値以下のバリアント一覧
	ListLowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error)
}
