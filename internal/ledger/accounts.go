package ledger

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Account models a chart of accounts row.
type Account struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Code     string      `json:"code"`
	Type     AccountType `json:"type"`
	IsSystem bool        `json:"is_system"`
}

// System account names. Postings reference accounts through AccountSet,
// resolved once at bootstrap, so these names never leak into hot paths.
const (
	AccountCash         = "Cash"
	AccountInventory    = "Inventory"
	AccountCOGS         = "COGS"
	AccountSalesRevenue = "Sales Revenue"
	AccountTaxPayable   = "Tax Payable"
)

// systemAccounts is the fixed chart created at startup.
var systemAccounts = []Account{
	{Name: AccountCash, Code: "1000", Type: AccountTypeAsset, IsSystem: true},
	{Name: AccountInventory, Code: "1200", Type: AccountTypeAsset, IsSystem: true},
	{Name: AccountCOGS, Code: "5000", Type: AccountTypeExpense, IsSystem: true},
	{Name: AccountSalesRevenue, Code: "4000", Type: AccountTypeIncome, IsSystem: true},
	{Name: AccountTaxPayable, Code: "2100", Type: AccountTypeLiability, IsSystem: true},
}

// SystemAccounts returns a copy of the fixed chart definition.
func SystemAccounts() []Account {
	out := make([]Account, len(systemAccounts))
	copy(out, systemAccounts)
	return out
}

// AccountSet holds the resolved ids of the system accounts.
type AccountSet struct {
	Cash         int64
	Inventory    int64
	COGS         int64
	SalesRevenue int64
	TaxPayable   int64
}
