package domain

// TransactionID identifies a Transaction.
type TransactionID uint64

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// TransactionCategory labels what a transaction was for.
type TransactionCategory string

const (
	CategorySubscription   TransactionCategory = "subscription"
	CategoryDonation       TransactionCategory = "donation"
	CategoryService        TransactionCategory = "service"
	CategoryInfrastructure TransactionCategory = "infrastructure"
	CategoryMarketing      TransactionCategory = "marketing"
	CategoryPayroll        TransactionCategory = "payroll"
	CategoryLegal          TransactionCategory = "legal"
	CategoryOther          TransactionCategory = "other"
)

// Valid reports whether c is a known category.
func (c TransactionCategory) Valid() bool {
	switch c {
	case CategorySubscription, CategoryDonation, CategoryService,
		CategoryInfrastructure, CategoryMarketing, CategoryPayroll,
		CategoryLegal, CategoryOther:
		return true
	}
	return false
}

// Transaction is a ledger entry. Amount is in minor currency units.
// Transactions are global: no owner field, no row-level security.
type Transaction struct {
	ID          TransactionID       `json:"id"`
	Type        TransactionType     `json:"type"`
	Category    TransactionCategory `json:"category"`
	Amount      uint64              `json:"amount"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	Reference   string              `json:"reference,omitempty"`
	Date        Timestamp           `json:"date"`
	CreatedAt   Timestamp           `json:"created_at"`
}

// CreateTransactionRequest carries the fields for a new ledger entry. Date
// defaults to creation time and currency to USD when unset.
type CreateTransactionRequest struct {
	Type        TransactionType     `json:"type" validate:"required"`
	Category    TransactionCategory `json:"category" validate:"required"`
	Amount      uint64              `json:"amount" validate:"max=100000000"`
	Currency    string              `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Description string              `json:"description" validate:"required,max=1000"`
	Reference   string              `json:"reference,omitempty" validate:"omitempty,max=200"`
	Date        Timestamp           `json:"date,omitempty"`
}

// TransactionFilter is a conjunction of optional predicates. FromDate and
// ToDate bound the effective date inclusively.
type TransactionFilter struct {
	Type     *TransactionType
	Category *TransactionCategory
	FromDate *Timestamp
	ToDate   *Timestamp
}

// FinancialSummary aggregates transactions dated within a period. MRR is
// subscription income divided by 12 using integer division, a deliberately
// coarse approximation.
type FinancialSummary struct {
	TotalIncome   uint64    `json:"total_income"`
	TotalExpenses uint64    `json:"total_expenses"`
	Net           int64     `json:"net"`
	MRR           uint64    `json:"mrr"`
	PeriodStart   Timestamp `json:"period_start"`
	PeriodEnd     Timestamp `json:"period_end"`
}
