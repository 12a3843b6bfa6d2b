package domain

import "fmt"

// Standard chart-of-accounts codes created for every SACCO.
const (
	CodeCashAtBank        = "1000"
	CodeLoanPortfolio     = "1100"
	CodeInventory         = "1200"
	CodeMemberSavings     = "2000"
	CodeInsurancePayable  = "2100"
	CodeAccountsPayable   = "2200"
	CodeRetainedEarnings  = "3000"
	CodeInterestIncome    = "4000"
	CodeCommissionIncome  = "4100"
	CodeTradingIncome     = "4200"
	CodeOperatingExpenses = "5000"
)

// ChartAccount describes one default account.
type ChartAccount struct {
	Code string
	Name string
	Type AccountType
}

// StandardChart is the default chart of accounts.
var StandardChart = []ChartAccount{
	{Code: CodeCashAtBank, Name: "Cash at Bank", Type: Asset},
	{Code: CodeLoanPortfolio, Name: "Loan Portfolio", Type: Asset},
	{Code: CodeInventory, Name: "Inventory", Type: Asset},
	{Code: CodeMemberSavings, Name: "Member Savings", Type: Liability},
	{Code: CodeInsurancePayable, Name: "Insurance Premiums Payable", Type: Liability},
	{Code: CodeAccountsPayable, Name: "Accounts Payable", Type: Liability},
	{Code: CodeRetainedEarnings, Name: "Retained Earnings", Type: Equity},
	{Code: CodeInterestIncome, Name: "Interest Income", Type: Revenue},
	{Code: CodeCommissionIncome, Name: "Commission Income", Type: Revenue},
	{Code: CodeTradingIncome, Name: "Trading Income", Type: Revenue},
	{Code: CodeOperatingExpenses, Name: "Operating Expenses", Type: Expense},
}

// PostingRule is the standard debit/credit account pair for a business event.
type PostingRule struct {
	DebitCode  string
	CreditCode string
}

var postingRules = map[TransactionType]PostingRule{
	TxnDeposit:             {DebitCode: CodeCashAtBank, CreditCode: CodeMemberSavings},
	TxnWithdrawal:          {DebitCode: CodeMemberSavings, CreditCode: CodeCashAtBank},
	TxnLoanDisbursement:    {DebitCode: CodeLoanPortfolio, CreditCode: CodeCashAtBank},
	TxnLoanRepayment:       {DebitCode: CodeCashAtBank, CreditCode: CodeLoanPortfolio},
	TxnInsurancePremium:    {DebitCode: CodeCashAtBank, CreditCode: CodeInsurancePayable},
	TxnMerchandisePurchase: {DebitCode: CodeInventory, CreditCode: CodeCashAtBank},
}

// PostingRuleFor returns the standard posting for a transaction type.
func PostingRuleFor(t TransactionType) (PostingRule, error) {
	rule, ok := postingRules[t]
	if !ok {
		return PostingRule{}, fmt.Errorf("no standard posting rule for transaction type %q", t)
	}
	return rule, nil
}

// ChartAccountByCode looks up a standard chart entry.
func ChartAccountByCode(code string) (ChartAccount, bool) {
	for _, c := range StandardChart {
		if c.Code == code {
			return c, true
		}
	}
	return ChartAccount{}, false
}
