package txstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/domain/models"
	"github.com/exodologio/exodologio/internal/testutil"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"10.50", 10.50, false},
		{"10,50", 10.50, false},
		{" 3 ", 3, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{
			name:    "missing date",
			in:      Input{Type: models.TypeExpense, Amount: "5", ExpenseCategory: "Υγεία"},
			wantErr: true,
		},
		{
			name:    "income without receipt method",
			in:      Input{Date: "2024-03-01", Type: models.TypeIncome, Amount: "100", IncomeSource: models.IncomeSourceSalary},
			wantErr: true,
		},
		{
			name: "income other without custom source",
			in: Input{Date: "2024-03-01", Type: models.TypeIncome, Amount: "100",
				IncomeSource: models.IncomeSourceOtherLabel, IncomeReceiptMethod: "Μετρητά"},
			wantErr: true,
		},
		{
			name: "expense other without custom category",
			in: Input{Date: "2024-03-01", Type: models.TypeExpense, Amount: "5",
				ExpenseCategory: models.ExpenseCategoryOtherLabel},
			wantErr: true,
		},
		{
			name: "card payment without bank wallet",
			in: Input{Date: "2024-03-01", Type: models.TypeExpense, Amount: "5",
				ExpenseCategory: "Υγεία", ExpensePaymentMethod: models.PaymentMethodDebitCard},
			wantErr: true,
		},
		{
			name:    "unknown type",
			in:      Input{Date: "2024-03-01", Type: "transfer", Amount: "5"},
			wantErr: true,
		},
		{
			name: "valid income",
			in: Input{Date: "2024-03-01", Type: models.TypeIncome, Amount: "1200,50",
				IncomeSource: models.IncomeSourceSalary, IncomeReceiptMethod: "Τράπεζα"},
		},
		{
			name: "valid cash expense",
			in: Input{Date: "2024-03-01", Type: models.TypeExpense, Amount: "42",
				ExpenseCategory: "Σούπερ μάρκετ", ExpensePaymentMethod: "Μετρητά"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && errs.KindOf(err) != errs.ValidationFailed {
				t.Errorf("kind = %v, want ValidationFailed", errs.KindOf(err))
			}
		})
	}
}

func TestInputValidate_BlanksOppositeVariant(t *testing.T) {
	in := Input{
		Date: "2024-03-01", Type: models.TypeIncome, Amount: "100",
		IncomeSource: models.IncomeSourceSalary, IncomeReceiptMethod: "Μετρητά",
		// Stray expense fields must not survive into the document.
		ExpenseCategory: "Υγεία", ExpensePaymentMethod: models.PaymentMethodDebitCard,
		ExpenseBankWallet: "Alpha Bank",
	}
	got, err := in.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.ExpenseCategory != "" || got.ExpensePaymentMethod != "" || got.ExpenseBankWallet != "" {
		t.Errorf("expense fields leaked into income doc: %+v", got)
	}
	if got.Month != "2024-03" {
		t.Errorf("month = %q", got.Month)
	}
}

func TestCRUDAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, zap.NewNop())
	householdID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	first, err := s.Create(ctx, householdID, userID, Input{
		Date: "2024-03-01", Type: models.TypeExpense, Amount: "10",
		ExpenseCategory: "Υγεία",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create(ctx, householdID, userID, Input{
		Date: "2024-02-15", Type: models.TypeIncome, Amount: "1000",
		IncomeSource: models.IncomeSourceSalary, IncomeReceiptMethod: "Τράπεζα",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Newest recorded first, regardless of transaction date.
	list, err := s.List(ctx, householdID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("List order wrong: %v", list)
	}

	// Update preserves creation metadata.
	updated, err := s.Update(ctx, householdID, first.ID, Input{
		Date: "2024-03-02", Type: models.TypeExpense, Amount: "12,50",
		ExpenseCategory: "Σούπερ μάρκετ", ExpensePaymentMethod: models.PaymentMethodDebitCard,
		ExpenseBankWallet: "Alpha Bank",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Amount != 12.50 || updated.ExpenseBankWallet != "Alpha Bank" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.CreatedBy != userID || !updated.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("creation metadata changed: %+v", updated)
	}

	// Foreign household cannot touch it.
	otherHousehold := primitive.NewObjectID()
	if _, err := s.Update(ctx, otherHousehold, first.ID, Input{
		Date: "2024-03-02", Type: models.TypeExpense, Amount: "1", ExpenseCategory: "Υγεία",
	}); errs.KindOf(err) != errs.NotFound {
		t.Errorf("cross-household update kind = %v, want NotFound", errs.KindOf(err))
	}
	if err := s.Delete(ctx, otherHousehold, first.ID); errs.KindOf(err) != errs.NotFound {
		t.Errorf("cross-household delete kind = %v, want NotFound", errs.KindOf(err))
	}

	if err := s.Delete(ctx, householdID, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ = s.List(ctx, householdID)
	if len(list) != 1 {
		t.Errorf("after delete len = %d", len(list))
	}
}

func TestWatch_DeliversSnapshots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, zap.NewNop())
	householdID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	sub, err := s.Watch(ctx, householdID)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer sub.Close()

	initial := <-sub.C
	if len(initial) != 0 {
		t.Errorf("initial snapshot = %v", initial)
	}

	if _, err := s.Create(ctx, householdID, userID, Input{
		Date: "2024-03-01", Type: models.TypeExpense, Amount: "9",
		ExpenseCategory: "Υγεία",
	}); err != nil {
		t.Fatal(err)
	}

	// Either the change stream or the poll loop must eventually deliver the
	// new state.
	for snapshot := range sub.C {
		if len(snapshot) == 1 {
			return
		}
	}
	t.Error("feed closed before delivering the new transaction")
}

func TestDeliverDropsStaleSnapshot(t *testing.T) {
	ch := make(chan []models.Transaction, 1)
	stale := []models.Transaction{{Notes: "stale"}}
	fresh := []models.Transaction{{Notes: "fresh"}}

	// With the buffer full, delivering again must replace the undrained
	// snapshot instead of blocking or queueing.
	deliver(ch, stale)
	deliver(ch, fresh)

	got := <-ch
	if len(got) != 1 || got[0].Notes != "fresh" {
		t.Errorf("received %v, want the fresh snapshot", got)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra snapshot %v", extra)
	default:
	}
}
