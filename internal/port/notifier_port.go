package port

import (
	"context"

	"github.com/nikolayk812/marketgo/internal/domain"
)

// Notifier delivers user-facing email. Best-effort: callers log failures
// and move on, delivery never rolls back state.
type Notifier interface {
	SendWelcome(ctx context.Context, email, username string) error
	SendPurchase(ctx context.Context, email, username string, summary domain.PurchaseSummary) error
}
