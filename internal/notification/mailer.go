package notification

import (
	"context"

	"go.uber.org/zap"
)

// 注文確認メールの内容
type OrderConfirmation struct {
	To          string
	OrderNumber int64
	Total       int64
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, m OrderConfirmation) error
}

// 実際には送らずログに出すだけの実装。
// SMTP連携に差し替えるまでの暫定。
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOrderConfirmation(_ context.Context, c OrderConfirmation) error {
	m.log.Info("order confirmation mail",
		zap.String("to", c.To),
		zap.Int64("order_number", c.OrderNumber),
		zap.Int64("total", c.Total),
	)
	return nil
}
