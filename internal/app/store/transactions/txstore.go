// Package txstore persists transactions and feeds live snapshots to
// subscribers.
package txstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/htmlsanitize"
	"github.com/exodologio/exodologio/internal/domain/models"
)

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{c: db.Collection("transactions"), log: log}
}

// Input is the client-submitted transaction payload. Amount is a string so
// the decimal comma Greek keyboards produce is accepted.
type Input struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Amount string `json:"amount"`

	ExpenseCategory      string `json:"expense_category"`
	ExpenseCategoryOther string `json:"expense_category_other"`
	ExpensePaymentMethod string `json:"expense_payment_method"`
	ExpenseBankWallet    string `json:"expense_bank_wallet"`

	IncomeSource        string `json:"income_source"`
	IncomeSourceOther   string `json:"income_source_other"`
	IncomeReceiptMethod string `json:"income_receipt_method"`

	Notes string `json:"notes"`
}

// ParseAmount converts the submitted amount to a positive float. A decimal
// comma is tolerated.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, errs.New(errs.ValidationFailed, "amount must be a positive number")
	}
	return v, nil
}

// Validate checks the payload and returns the normalized document fields.
// Variant fields for the opposite type are blanked so an income document
// never carries expense metadata and vice versa.
func (in Input) Validate() (models.Transaction, error) {
	var t models.Transaction

	if strings.TrimSpace(in.Date) == "" {
		return t, errs.New(errs.ValidationFailed, "date is required")
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return t, err
	}

	t.Date = strings.TrimSpace(in.Date)
	t.Month = models.MonthOf(t.Date)
	t.Amount = amount
	t.Notes = htmlsanitize.StripOneLine(in.Notes)

	switch in.Type {
	case models.TypeIncome:
		t.Type = models.TypeIncome
		t.IncomeSource = strings.TrimSpace(in.IncomeSource)
		if t.IncomeSource == "" {
			t.IncomeSource = models.IncomeSourceSalary
		}
		if t.IncomeSource == models.IncomeSourceOtherLabel {
			t.IncomeSourceOther = htmlsanitize.StripOneLine(in.IncomeSourceOther)
			if t.IncomeSourceOther == "" {
				return models.Transaction{}, errs.New(errs.ValidationFailed, "custom income source is required")
			}
		}
		t.IncomeReceiptMethod = strings.TrimSpace(in.IncomeReceiptMethod)
		if t.IncomeReceiptMethod == "" {
			return models.Transaction{}, errs.New(errs.ValidationFailed, "receipt method is required")
		}

	case models.TypeExpense:
		t.Type = models.TypeExpense
		t.ExpenseCategory = strings.TrimSpace(in.ExpenseCategory)
		if t.ExpenseCategory == "" {
			return models.Transaction{}, errs.New(errs.ValidationFailed, "expense category is required")
		}
		if t.ExpenseCategory == models.ExpenseCategoryOtherLabel {
			t.ExpenseCategoryOther = htmlsanitize.StripOneLine(in.ExpenseCategoryOther)
			if t.ExpenseCategoryOther == "" {
				return models.Transaction{}, errs.New(errs.ValidationFailed, "custom expense category is required")
			}
		}
		t.ExpensePaymentMethod = strings.TrimSpace(in.ExpensePaymentMethod)
		if models.PaymentMethodNeedsBank(t.ExpensePaymentMethod) {
			t.ExpenseBankWallet = strings.TrimSpace(in.ExpenseBankWallet)
			if t.ExpenseBankWallet == "" {
				return models.Transaction{}, errs.New(errs.ValidationFailed, "bank/wallet is required for this payment method")
			}
		}

	default:
		return models.Transaction{}, errs.New(errs.ValidationFailed, `type must be "income" or "expense"`)
	}

	return t, nil
}

// Create validates and inserts a transaction for the household.
func (s *Store) Create(ctx context.Context, householdID, userID primitive.ObjectID, in Input) (models.Transaction, error) {
	t, err := in.Validate()
	if err != nil {
		return models.Transaction{}, err
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.HouseholdID = householdID
	t.CreatedBy = userID
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// Update replaces the editable fields of a transaction while preserving its
// creation metadata. The household filter prevents cross-household edits.
func (s *Store) Update(ctx context.Context, householdID, id primitive.ObjectID, in Input) (models.Transaction, error) {
	t, err := in.Validate()
	if err != nil {
		return models.Transaction{}, err
	}

	set := bson.M{
		"date":                   t.Date,
		"month":                  t.Month,
		"type":                   t.Type,
		"amount":                 t.Amount,
		"expense_category":       t.ExpenseCategory,
		"expense_category_other": t.ExpenseCategoryOther,
		"expense_payment_method": t.ExpensePaymentMethod,
		"expense_bank_wallet":    t.ExpenseBankWallet,
		"income_source":          t.IncomeSource,
		"income_source_other":    t.IncomeSourceOther,
		"income_receipt_method":  t.IncomeReceiptMethod,
		"notes":                  t.Notes,
		"updated_at":             time.Now().UTC(),
	}

	var updated models.Transaction
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "household_id": householdID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return models.Transaction{}, errs.New(errs.NotFound, "transaction not found")
	}
	if err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

// Delete removes a transaction owned by the household.
func (s *Store) Delete(ctx context.Context, householdID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "household_id": householdID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.New(errs.NotFound, "transaction not found")
	}
	return nil
}

// List returns the household's transactions newest-recorded first.
func (s *Store) List(ctx context.Context, householdID primitive.ObjectID) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"household_id": householdID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Transaction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
