package models

import (
	"context"
	"strings"
	"time"

	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashMovement is one financial event of the parish cash book.
// SignedAmount is +Amount for inflows and -Amount for outflows on every row.
type CashMovement struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Nature        CashNature      `gorm:"size:10;not null;index" json:"nature"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	SignedAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"signed_amount"`
	AccountName   string          `gorm:"size:100;not null;index" json:"account_name"`
	PaymentMedium string          `gorm:"size:50;not null" json:"payment_medium"`
	Concept       string          `gorm:"size:255;not null" json:"concept"`
	Reference     *string         `gorm:"size:100" json:"reference"`
	Description   *string         `gorm:"type:text" json:"description"`
	PersonId      *int            `gorm:"index" json:"person_id"`
	Person        *Person         `gorm:"foreignKey:PersonId" json:"-"`
	CreatedBy     int             `gorm:"index;not null" json:"created_by"`
	Creator       *User           `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt     time.Time       `gorm:"index;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCashMovement struct {
	Nature        CashNature      `json:"nature" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	AccountName   string          `json:"account_name" validate:"required,max=100"`
	PaymentMedium string          `json:"payment_medium" validate:"required,max=50"`
	Concept       string          `json:"concept" validate:"required,max=255"`
	Reference     *string         `json:"reference" validate:"omitempty,max=100"`
	Description   *string         `json:"description" validate:"omitempty,max=2000"`
	PersonId      *int            `json:"person_id" validate:"omitempty,gt=0"`
}

// CashMovementPatch carries only the fields to change; nil means unchanged.
type CashMovementPatch struct {
	Nature        *CashNature      `json:"nature"`
	Amount        *decimal.Decimal `json:"amount"`
	AccountName   *string          `json:"account_name" validate:"omitempty,max=100"`
	PaymentMedium *string          `json:"payment_medium" validate:"omitempty,max=50"`
	Concept       *string          `json:"concept" validate:"omitempty,max=255"`
	Reference     *string          `json:"reference" validate:"omitempty,max=100"`
	Description   *string          `json:"description" validate:"omitempty,max=2000"`
	PersonId      *int             `json:"person_id" validate:"omitempty,gt=0"`
}

type CashMovementFilter struct {
	AccountName *string
	Nature      *CashNature
	DateFrom    *time.Time
	DateTo      *time.Time
}

const movementRelation = "cash_movements"

func (m CashMovement) GetCursorTime() time.Time {
	return m.CreatedAt
}

func (m CashMovement) GetId() int {
	return m.ID
}

// movementAmounts is the only way amount and signed amount are produced.
type movementAmounts struct {
	Nature       CashNature
	Amount       decimal.Decimal
	SignedAmount decimal.Decimal
}

// money columns are decimal(20,4)
const moneyScale int32 = 4

// fitsMoneyScale reports whether d survives the column without rounding.
// Trailing zeros past the scale are fine.
func fitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(moneyScale))
}

func newMovementAmounts(nature CashNature, amount decimal.Decimal) (movementAmounts, error) {
	if !nature.IsValid() {
		return movementAmounts{}, utils.ValidationFailed("nature", "nature must be inflow or outflow")
	}
	if !amount.IsPositive() {
		return movementAmounts{}, utils.ValidationFailed("amount", "amount must be greater than zero")
	}
	if !fitsMoneyScale(amount) {
		return movementAmounts{}, utils.ValidationFailed("amount", "amount supports at most 4 decimal places")
	}
	signed := amount
	if nature == CashNatureOutflow {
		signed = amount.Neg()
	}
	return movementAmounts{Nature: nature, Amount: amount, SignedAmount: signed}, nil
}

func (a movementAmounts) columns() map[string]interface{} {
	return map[string]interface{}{
		"nature":        a.Nature,
		"amount":        a.Amount,
		"signed_amount": a.SignedAmount,
	}
}

func (input *NewCashMovement) validate() (movementAmounts, error) {
	input.AccountName = strings.TrimSpace(input.AccountName)
	input.PaymentMedium = strings.TrimSpace(input.PaymentMedium)
	input.Concept = strings.TrimSpace(input.Concept)
	if err := utils.ValidateStruct(input); err != nil {
		return movementAmounts{}, err
	}
	return newMovementAmounts(input.Nature, input.Amount)
}

func (patch *CashMovementPatch) isEmpty() bool {
	return patch.Nature == nil && patch.Amount == nil && patch.AccountName == nil &&
		patch.PaymentMedium == nil && patch.Concept == nil && patch.Reference == nil &&
		patch.Description == nil && patch.PersonId == nil
}

func (patch *CashMovementPatch) validate() error {
	if patch.isEmpty() {
		return utils.ValidationFailed("", "no fields to update")
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return err
	}
	if patch.Nature != nil && !patch.Nature.IsValid() {
		return utils.ValidationFailed("nature", "nature must be inflow or outflow")
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return utils.ValidationFailed("amount", "amount must be greater than zero")
	}
	if patch.Amount != nil && !fitsMoneyScale(*patch.Amount) {
		return utils.ValidationFailed("amount", "amount supports at most 4 decimal places")
	}
	for field, value := range map[string]*string{
		"account_name":   patch.AccountName,
		"payment_medium": patch.PaymentMedium,
		"concept":        patch.Concept,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return utils.ValidationFailed(field, "must not be empty")
		}
	}
	return nil
}

// columns builds the update set. Nature, amount and signed amount are written
// together from the final values whenever either input changes.
func (patch *CashMovementPatch) columns(current *CashMovement) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if patch.Nature != nil || patch.Amount != nil {
		nature := current.Nature
		if patch.Nature != nil {
			nature = *patch.Nature
		}
		amount := current.Amount
		if patch.Amount != nil {
			amount = *patch.Amount
		}
		amounts, err := newMovementAmounts(nature, amount)
		if err != nil {
			return nil, err
		}
		for k, v := range amounts.columns() {
			updates[k] = v
		}
	}
	if patch.AccountName != nil {
		updates["account_name"] = strings.TrimSpace(*patch.AccountName)
	}
	if patch.PaymentMedium != nil {
		updates["payment_medium"] = strings.TrimSpace(*patch.PaymentMedium)
	}
	if patch.Concept != nil {
		updates["concept"] = strings.TrimSpace(*patch.Concept)
	}
	if patch.Reference != nil {
		updates["reference"] = nullableText(*patch.Reference)
	}
	if patch.Description != nil {
		updates["description"] = nullableText(*patch.Description)
	}
	if patch.PersonId != nil {
		updates["person_id"] = *patch.PersonId
	}
	return updates, nil
}

// an empty string clears an optional text column
func nullableText(value string) interface{} {
	value = strings.TrimSpace(value)
	if value == "" {
		return gorm.Expr("NULL")
	}
	return value
}

// CashLedger writes and reads cash movements. Balances are never stored;
// see models/reports for the aggregations.
type CashLedger struct {
	db *gorm.DB
}

func NewCashLedger(db *gorm.DB) *CashLedger {
	return &CashLedger{db: db}
}

func (l *CashLedger) Record(ctx context.Context, input *NewCashMovement, creatorId int) (*CashMovement, error) {
	ctx, span := tracer.Start(ctx, "CashLedger.Record")
	defer span.End()

	amounts, err := input.validate()
	if err != nil {
		return nil, err
	}
	if creatorId <= 0 {
		return nil, utils.ValidationFailed("created_by", "creator is required")
	}
	span.SetAttributes(attribute.String("nature", string(amounts.Nature)))

	movement := CashMovement{
		Nature:        amounts.Nature,
		Amount:        amounts.Amount,
		SignedAmount:  amounts.SignedAmount,
		AccountName:   input.AccountName,
		PaymentMedium: input.PaymentMedium,
		Concept:       input.Concept,
		Reference:     trimmedOrNil(input.Reference),
		Description:   trimmedOrNil(input.Description),
		PersonId:      input.PersonId,
		CreatedBy:     creatorId,
	}
	err = runInTransaction(ctx, l.db, "RecordCashMovement", func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&movement).Error; err != nil {
			return classifyWriteError(movementRelation, err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &movement, nil
}

func (l *CashLedger) Update(ctx context.Context, id int, patch *CashMovementPatch) (*CashMovement, error) {
	ctx, span := tracer.Start(ctx, "CashLedger.Update")
	defer span.End()
	span.SetAttributes(attribute.Int("movement.id", id))

	if err := patch.validate(); err != nil {
		return nil, err
	}

	var movement CashMovement
	err := runInTransaction(ctx, l.db, "UpdateCashMovement", func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Take(&movement, id).Error; err != nil {
			return classifyReadError(movementRelation, id, err)
		}
		updates, err := patch.columns(&movement)
		if err != nil {
			return err
		}
		if err := tx.Model(&CashMovement{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return classifyWriteError(movementRelation, err)
		}
		var fresh CashMovement
		if err := tx.Take(&fresh, id).Error; err != nil {
			return err
		}
		movement = fresh
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &movement, nil
}

// Delete removes the row for good.
func (l *CashLedger) Delete(ctx context.Context, id int) (bool, error) {
	ctx, span := tracer.Start(ctx, "CashLedger.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int("movement.id", id))

	ctx, cancel := context.WithTimeout(ctx, config.TxTimeout())
	defer cancel()

	result := l.db.WithContext(ctx).Delete(&CashMovement{}, id)
	if result.Error != nil {
		return false, logAbort(ctx, "DeleteCashMovement", "delete", classifyWriteError(movementRelation, result.Error))
	}
	if result.RowsAffected == 0 {
		return false, utils.NotFound(movementRelation, id)
	}
	return true, nil
}

func (l *CashLedger) Get(ctx context.Context, id int) (*CashMovement, error) {
	var movement CashMovement
	if err := l.db.WithContext(ctx).Take(&movement, id).Error; err != nil {
		return nil, classifyReadError(movementRelation, id, err)
	}
	return &movement, nil
}

// List pages movements newest first.
func (l *CashLedger) List(ctx context.Context, filter CashMovementFilter, limit *int, after *string) (*Connection[CashMovement], error) {
	dbCtx := l.db.WithContext(ctx).Model(&CashMovement{})
	if filter.AccountName != nil && *filter.AccountName != "" {
		dbCtx = dbCtx.Where("account_name = ?", *filter.AccountName)
	}
	if filter.Nature != nil {
		dbCtx = dbCtx.Where("nature = ?", *filter.Nature)
	}
	if filter.DateFrom != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.DateTo)
	}
	conn, err := fetchPageNewestFirst[CashMovement](dbCtx, limit, after, "created_at")
	if err != nil {
		return nil, classifyWriteError(movementRelation, err)
	}
	return conn, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return utils.NilIfEmpty(trimmed)
}
