package store

import "github.com/yourorg/adminstate/internal/domain"

// CreateTransaction inserts a new ledger entry. The effective date defaults
// to creation time and the currency to USD when unset.
func (s *Store) CreateTransaction(req domain.CreateTransactionRequest) domain.Transaction {
	now := s.clock.Now()
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	date := req.Date
	if date == 0 {
		date = now
	}

	tx := domain.Transaction{
		ID:          s.nextTransactionID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Currency:    currency,
		Description: req.Description,
		Reference:   req.Reference,
		Date:        date,
		CreatedAt:   now,
	}
	s.nextTransactionID++
	s.transactions[tx.ID] = tx
	return tx
}

// TransactionByID looks up a ledger entry. Absence is not an error.
func (s *Store) TransactionByID(id domain.TransactionID) (domain.Transaction, bool) {
	tx, ok := s.transactions[id]
	return tx, ok
}

// ListTransactions returns one page over ledger entries in insertion order.
// Transactions carry no owner, so there is no row-level restriction here.
func (s *Store) ListTransactions(filter domain.TransactionFilter, pg domain.Pagination) domain.Page[domain.Transaction] {
	matched := make([]domain.Transaction, 0, len(s.transactions))
	for _, id := range sortedKeys(s.transactions) {
		tx := s.transactions[id]
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}
		if filter.Category != nil && tx.Category != *filter.Category {
			continue
		}
		if filter.FromDate != nil && tx.Date < *filter.FromDate {
			continue
		}
		if filter.ToDate != nil && tx.Date > *filter.ToDate {
			continue
		}
		matched = append(matched, tx)
	}
	return paginate(matched, pg)
}

// FinancialSummary accumulates transactions dated within [from, to]
// inclusive. Subscription-tagged income feeds the MRR bucket; MRR is that
// total over 12 with integer division.
func (s *Store) FinancialSummary(from, to domain.Timestamp) domain.FinancialSummary {
	var income, expenses, subscription uint64
	for _, tx := range s.transactions {
		if tx.Date < from || tx.Date > to {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			income += tx.Amount
			if tx.Category == domain.CategorySubscription {
				subscription += tx.Amount
			}
		case domain.TransactionExpense:
			expenses += tx.Amount
		}
	}
	return domain.FinancialSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Net:           int64(income) - int64(expenses),
		MRR:           subscription / 12,
		PeriodStart:   from,
		PeriodEnd:     to,
	}
}
