package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single income or expense entry belonging to exactly one
// household. Income and expense share one schema; the unused variant's fields
// are written as empty strings rather than omitted, so consumers can treat
// the two as a tagged union keyed by Type.
type Transaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HouseholdID primitive.ObjectID `bson:"household_id" json:"household_id"`

	// Date is ISO "YYYY-MM-DD"; Month is the derived "YYYY-MM" prefix.
	// ISO date strings sort lexicographically in calendar order, which is
	// what the month and range filters rely on.
	Date  string `bson:"date" json:"date"`
	Month string `bson:"month" json:"month"`

	Type   string  `bson:"type" json:"type"` // income | expense
	Amount float64 `bson:"amount" json:"amount"`

	// Expense variant.
	ExpenseCategory      string `bson:"expense_category" json:"expense_category"`
	ExpenseCategoryOther string `bson:"expense_category_other" json:"expense_category_other"`
	ExpensePaymentMethod string `bson:"expense_payment_method" json:"expense_payment_method"`
	ExpenseBankWallet    string `bson:"expense_bank_wallet" json:"expense_bank_wallet"`

	// Income variant.
	IncomeSource        string `bson:"income_source" json:"income_source"`
	IncomeSourceOther   string `bson:"income_source_other" json:"income_source_other"`
	IncomeReceiptMethod string `bson:"income_receipt_method" json:"income_receipt_method"`

	Notes string `bson:"notes" json:"notes"`

	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// MonthOf derives the "YYYY-MM" month from an ISO date string.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
