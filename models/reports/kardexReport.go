package reports

import (
	"context"
	"time"

	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type KardexFilter struct {
	AccountName *string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type KardexEntry struct {
	ID             int               `json:"id"`
	AccountName    string            `json:"account_name"`
	Nature         models.CashNature `json:"nature"`
	Concept        string            `json:"concept"`
	PaymentMedium  string            `json:"payment_medium"`
	Amount         decimal.Decimal   `json:"amount"`
	SignedAmount   decimal.Decimal   `json:"signed_amount"`
	RunningBalance decimal.Decimal   `json:"running_balance"`
	CreatedAt      time.Time         `json:"created_at"`
}

// GetKardex lists movements by (account, created_at, id) with a running sum of
// signed_amount that restarts at each account. The window runs over the rows
// left after filtering, so a date range starts every account at zero.
func GetKardex(ctx context.Context, db *gorm.DB, filter KardexFilter) ([]*KardexEntry, error) {
	dbCtx := db.WithContext(ctx).Model(&models.CashMovement{}).
		Select(`id, account_name, nature, concept, payment_medium, amount, signed_amount, created_at,
			ROUND(SUM(signed_amount) OVER (
				PARTITION BY account_name
				ORDER BY created_at, id
				ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
			), 4) AS running_balance`)

	if filter.AccountName != nil && *filter.AccountName != "" {
		dbCtx = dbCtx.Where("account_name = ?", *filter.AccountName)
	}
	if filter.DateFrom != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.DateTo)
	}

	results := make([]*KardexEntry, 0)
	if err := dbCtx.Order("account_name, created_at, id").Scan(&results).Error; err != nil {
		return nil, utils.TransactionAborted(err)
	}
	return results, nil
}
