package reports

import (
	"context"

	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type AccountBalanceResponse struct {
	AccountName  string          `json:"account_name"`
	TotalInflow  decimal.Decimal `json:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`
	Balance      decimal.Decimal `json:"balance"`
	Movements    int             `json:"movements"`
}

// GetGlobalBalance sums signed_amount over every movement. Nothing is cached.
// Sums are rounded back to the column scale: a no-op for MySQL DECIMAL, needed
// where the store sums in floating point (SQLite).
func GetGlobalBalance(ctx context.Context, db *gorm.DB) (*BalanceResponse, error) {
	var result BalanceResponse
	if err := db.WithContext(ctx).Model(&models.CashMovement{}).
		Select("ROUND(COALESCE(SUM(signed_amount), 0), 4) AS balance").
		Scan(&result).Error; err != nil {
		return nil, utils.TransactionAborted(err)
	}
	return &result, nil
}

// GetAccountBalances is the same sum grouped by account, ordered by account name.
func GetAccountBalances(ctx context.Context, db *gorm.DB) ([]*AccountBalanceResponse, error) {
	sql := `
SELECT
    account_name,
    ROUND(COALESCE(SUM(CASE WHEN nature = ? THEN amount ELSE 0 END), 0), 4) AS total_inflow,
    ROUND(COALESCE(SUM(CASE WHEN nature = ? THEN amount ELSE 0 END), 0), 4) AS total_outflow,
    ROUND(COALESCE(SUM(signed_amount), 0), 4) AS balance,
    COUNT(id) AS movements
FROM
    cash_movements
GROUP BY
    account_name
ORDER BY
    account_name
`
	results := make([]*AccountBalanceResponse, 0)
	if err := db.WithContext(ctx).Raw(sql, models.CashNatureInflow, models.CashNatureOutflow).Scan(&results).Error; err != nil {
		return nil, utils.TransactionAborted(err)
	}
	return results, nil
}
