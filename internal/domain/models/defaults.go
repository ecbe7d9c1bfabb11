package models

// Seeded option lists. Labels are data, not identifiers: the app ships with
// the Greek labels its households actually use, and households extend the
// bank/wallet list themselves.

// ExpenseCategories are the selectable expense categories.
var ExpenseCategories = []string{
	"Σούπερ μάρκετ",
	"Ενοίκιο / Δάνειο",
	"Λογαριασμοί",
	"Καύσιμα / Μετακινήσεις",
	"Φαγητό έξω / Καφέδες",
	"Παιδιά / Σχολείο",
	"Υγεία",
	"Ψυχαγωγία",
	ExpenseCategoryOtherLabel,
}

// ExpensePaymentMethods are the selectable ways an expense was paid.
var ExpensePaymentMethods = []string{
	"Μετρητά",
	PaymentMethodDebitCard,
	PaymentMethodCreditCard,
	PaymentMethodBankAccount,
	"Άλλο",
}

// DefaultBankWallets seeds a new household's bank/wallet list.
var DefaultBankWallets = []string{
	"Alpha Bank",
	"Eurobank",
	"Τράπεζα Πειραιώς",
	"Εθνική Τράπεζα",
	"Revolut Bank",
	"N26 Bank",
	"Binance",
	"Nexo",
	"Kucoin",
	"ByBit",
	"Kast",
}

// Sentinel labels with special validation rules.
const (
	ExpenseCategoryOtherLabel = "Άλλα"
	IncomeSourceSalary        = "Μισθός"
	IncomeSourceOtherLabel    = "Άλλο"

	PaymentMethodDebitCard   = "Χρεωστική κάρτα"
	PaymentMethodCreditCard  = "Πιστωτική κάρτα"
	PaymentMethodBankAccount = "Λογαριασμός Τράπεζας"
)

// PaymentMethodNeedsBank reports whether the payment method draws on a
// funding account, which makes the bank/wallet selection mandatory.
func PaymentMethodNeedsBank(method string) bool {
	switch method {
	case PaymentMethodDebitCard, PaymentMethodCreditCard, PaymentMethodBankAccount:
		return true
	}
	return false
}
