package models

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("parish-backend/models")

// MySQL server error numbers that mean a rule of the schema rejected the write.
var mysqlConstraintErrors = map[uint16]bool{
	1062: true, // duplicate entry
	1216: true, // child row: foreign key fails (legacy)
	1217: true, // parent row: foreign key fails (legacy)
	1451: true, // cannot delete or update a parent row
	1452: true, // cannot add or update a child row
}

// runInTransaction opens one transaction bounded by DB_TX_TIMEOUT_SECONDS and
// always releases it: commit when fn returns nil, rollback on error or panic.
// Errors that are not domain errors surface as TransactionAborted.
func runInTransaction(ctx context.Context, db *gorm.DB, funcName string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, config.TxTimeout())
	defer cancel()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return logAbort(ctx, funcName, "begin", utils.TransactionAborted(tx.Error))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			config.LogError(config.GetLogger(), "models", funcName, "rollback", nil, rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		if utils.KindOf(err) == "" {
			err = utils.TransactionAborted(err)
		}
		return logAbort(ctx, funcName, "rollback", err)
	}

	if err := tx.Commit().Error; err != nil {
		return logAbort(ctx, funcName, "commit", utils.TransactionAborted(err))
	}
	committed = true
	return nil
}

// lockForUpdate adds FOR UPDATE on MySQL. SQLite holds a database-wide write
// lock per transaction and has no row locks.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// store failures are logged; validation and not-found outcomes are the caller's business.
func logAbort(ctx context.Context, funcName string, step string, err error) error {
	switch utils.KindOf(err) {
	case utils.KindConstraintViolation, utils.KindTransactionAborted:
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		data := logrus.Fields{"correlation_id": cid}
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			data["trace_id"] = sc.TraceID().String()
		}
		config.LogError(config.GetLogger(), "models", funcName, step, data, err)
	}
	return err
}

// classifyWriteError maps a store error raised while writing relation to a domain error.
func classifyWriteError(relation string, err error) error {
	if err == nil {
		return nil
	}
	if utils.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.TransactionAborted(err)
	}
	if isConstraintError(err) {
		return utils.ConstraintViolation(relation, err)
	}
	return utils.TransactionAborted(err)
}

// classifyReadError maps a single-row lookup failure.
func classifyReadError(relation string, id int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(relation, id)
	}
	return classifyWriteError(relation, err)
}

func isConstraintError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && mysqlConstraintErrors[myErr.Number] {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	// sqlite reports constraint failures only through its message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "foreign key constraint failed") ||
		strings.Contains(msg, "check constraint failed") ||
		strings.Contains(msg, "not null constraint failed")
}
