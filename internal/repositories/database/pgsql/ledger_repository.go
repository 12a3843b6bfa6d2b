package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/apperrors"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portsrepo "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/repositories"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils/accounting"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultLedgerPageSize = 50

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

// newPgxLedgerRepository creates a new repository for transactions and journal entries.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// nextTransactionSequence allocates the tenant's next transaction sequence inside tx.
// The row lock taken by the upsert serialises concurrent postings of the same tenant.
func (r *PgxLedgerRepository) nextTransactionSequence(ctx context.Context, tx pgx.Tx, tenantID string) (int64, error) {
	query := `
		INSERT INTO transaction_sequences (tenant_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_value = transaction_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, tenantID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate transaction sequence for tenant %s: %w", tenantID, err)
	}
	return seq, nil
}

// PostTransaction saves a transaction and its entries and updates account balances within a DB transaction.
func (r *PgxLedgerRepository) PostTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// Will be ignored if transaction is committed successfully
	defer r.Rollback(ctx, tx)

	// 1. Allocate the transaction number
	seq, err := r.nextTransactionSequence(ctx, tx, txn.TenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to number transaction", err)
	}
	txn.TransactionNumber = domain.FormatTransactionNumber(txn.TenantID, seq)

	// 2. Lock every referenced account
	accountIDs := make([]string, 0, len(txn.Entries))
	seen := make(map[string]struct{}, len(txn.Entries))
	for _, e := range txn.Entries {
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			accountIDs = append(accountIDs, e.AccountID)
		}
	}

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, txn.TenantID, accountIDs)
	if err != nil {
		// Error includes ErrNotFound if any account is missing
		return nil, apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	accountTypes := make(map[string]domain.AccountType, len(lockedAccounts))
	for id, acc := range lockedAccounts {
		accountTypes[id] = acc.AccountType
	}
	balanceChanges, err := accounting.NetBalanceChanges(txn.Entries, accountTypes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to calculate balance changes", err)
	}

	// 3. Insert the header and its entries
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transactions (
			transaction_id, tenant_id, transaction_number, transaction_type, amount, transaction_date, description,
			member_id, reference_id, reference_type, status, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`,
		txn.TransactionID,
		txn.TenantID,
		txn.TransactionNumber,
		txn.TransactionType,
		txn.Amount,
		txn.TransactionDate,
		txn.Description,
		txn.MemberID,
		txn.ReferenceID,
		txn.ReferenceType,
		txn.Status,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	entryQuery := `
		INSERT INTO journal_entries (entry_id, transaction_id, account_id, entry_type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, e := range txn.Entries {
		batch.Queue(entryQuery, e.EntryID, txn.TransactionID, e.AccountID, e.EntryType, e.Amount, e.Description, e.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, mapQueryError(err, "insert transaction %s", txn.TransactionNumber)
	}

	// 4. Apply balance deltas
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, txn.CreatedBy, txn.CreatedAt); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update account balances", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return &txn, nil
}

// FindTransactionByID retrieves a transaction and its journal entries.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, tenant_id, transaction_number, transaction_type, amount, transaction_date, description,
		       member_id, reference_id, reference_type, status, created_at, created_by, last_updated_at, last_updated_by
		FROM transactions
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	var txn domain.Transaction
	err := r.Pool.QueryRow(ctx, query, tenantID, transactionID).Scan(
		&txn.TransactionID,
		&txn.TenantID,
		&txn.TransactionNumber,
		&txn.TransactionType,
		&txn.Amount,
		&txn.TransactionDate,
		&txn.Description,
		&txn.MemberID,
		&txn.ReferenceID,
		&txn.ReferenceType,
		&txn.Status,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapQueryError(err, "find transaction %s", transactionID)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT entry_id, transaction_id, account_id, entry_type, amount, description, created_at
		FROM journal_entries
		WHERE transaction_id = $1
		ORDER BY created_at, entry_id;`, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	txn.Entries = []domain.JournalEntry{}
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.EntryID, &e.TransactionID, &e.AccountID, &e.EntryType, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for transaction "+transactionID, err)
		}
		txn.Entries = append(txn.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for transaction "+transactionID, err)
	}

	return &txn, nil
}

// ListLedgerLines retrieves a page of journal lines, newest first, using token-based pagination.
func (r *PgxLedgerRepository) ListLedgerLines(ctx context.Context, tenantID string, filter domain.LedgerFilter, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	args := []any{tenantID}
	conditions := []string{"t.tenant_id = $1"}
	addArg := func(clause string, v ...any) {
		placeholders := make([]any, len(v))
		for i := range v {
			args = append(args, v[i])
			placeholders[i] = "$" + strconv.Itoa(len(args))
		}
		conditions = append(conditions, fmt.Sprintf(clause, placeholders...))
	}

	if filter.AccountID != nil {
		addArg("je.account_id = %s", *filter.AccountID)
	}
	if filter.StartDate != nil {
		addArg("t.transaction_date >= %s", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addArg("t.transaction_date <= %s", *filter.EndDate)
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastEntryID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		// Tuple comparison is concise and efficient in Postgres
		addArg("(t.transaction_date, je.entry_id) < (%s, %s)", lastDate, lastEntryID)
	}
	args = append(args, fetchLimit)

	query := `
		SELECT je.entry_id, je.transaction_id, je.account_id, je.entry_type, je.amount, je.description, je.created_at,
		       t.transaction_number, t.transaction_type, t.transaction_date, t.member_id, a.code, a.name
		FROM journal_entries je
		JOIN transactions t ON t.transaction_id = je.transaction_id
		JOIN accounts a ON a.account_id = je.account_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY t.transaction_date DESC, je.entry_id DESC
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query general ledger for tenant "+tenantID, err)
	}
	defer rows.Close()

	lines := make([]domain.LedgerLine, 0, fetchLimit)
	for rows.Next() {
		var l domain.LedgerLine
		if err := rows.Scan(
			&l.EntryID,
			&l.TransactionID,
			&l.AccountID,
			&l.EntryType,
			&l.Amount,
			&l.Description,
			&l.CreatedAt,
			&l.TransactionNumber,
			&l.TransactionType,
			&l.TransactionDate,
			&l.MemberID,
			&l.AccountCode,
			&l.AccountName,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan general ledger row", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating general ledger rows", err)
	}

	var nextTokenVal *string
	if len(lines) > limit {
		// The token points to the last item included in this page.
		last := lines[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.EntryID)
		nextTokenVal = &token
		lines = lines[:limit]
	}

	return lines, nextTokenVal, nil
}
