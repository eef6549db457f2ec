package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/yourorg/adminstate/internal/domain"
)

// CreateTransaction appends a ledger entry. Transactions carry no owner, so
// any admin may write.
func (s *Service) CreateTransaction(ctx context.Context, caller domain.Identity, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("create_transaction", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Transaction{}, deny(log, "create_transaction", err)
	}
	if err := s.validate.CreateTransaction(req); err != nil {
		return domain.Transaction{}, fail(log, "create_transaction", err)
	}

	tx := s.state.CreateTransaction(req)
	s.state.RecordAudit(caller, "create_transaction", "transaction", strconv.FormatUint(uint64(tx.ID), 10),
		detailsJSON(map[string]any{"type": tx.Type, "category": tx.Category, "amount": tx.Amount}))
	s.publishRecordGauges()

	ok("create_transaction")
	log.Info("transaction created",
		slog.Uint64("transaction_id", uint64(tx.ID)),
		slog.String("type", string(tx.Type)),
	)
	return tx, nil
}

// GetTransaction looks up a ledger entry by id. Admin-only.
func (s *Service) GetTransaction(ctx context.Context, caller domain.Identity, id domain.TransactionID) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_transaction", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Transaction{}, deny(log, "get_transaction", err)
	}
	tx, found := s.state.TransactionByID(id)
	if !found {
		ok("get_transaction")
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	ok("get_transaction")
	return tx, nil
}

// ListTransactions returns one page over the ledger in insertion order.
// Admin-only, no row-level restriction.
func (s *Service) ListTransactions(ctx context.Context, caller domain.Identity, filter domain.TransactionFilter, pg domain.Pagination) (domain.Page[domain.Transaction], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_transactions", caller)
	pg = pg.OrDefault()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Page[domain.Transaction]{}, deny(log, "list_transactions", err)
	}
	ok("list_transactions")
	return s.state.ListTransactions(filter, pg), nil
}

// FinancialSummary aggregates the ledger over [from, to] inclusive.
// Admin-only.
func (s *Service) FinancialSummary(ctx context.Context, caller domain.Identity, from, to domain.Timestamp) (domain.FinancialSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("financial_summary", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.FinancialSummary{}, deny(log, "financial_summary", err)
	}
	if from > to {
		return domain.FinancialSummary{}, fail(log, "financial_summary",
			fmt.Errorf("%w: period start after period end", domain.ErrValidation))
	}
	ok("financial_summary")
	return s.state.FinancialSummary(from, to), nil
}
