package ledger

// Side represents the natural balance of an account class: debit-positive
// accounts report debit-credit, credit-positive accounts report credit-debit.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// BASRange maps a contiguous interval of BAS account numbers to its account
// type and natural balance side. The table is ordered and non-overlapping;
// both type derivation and report sectioning consult it so the range
// literals live in exactly one place.
type BASRange struct {
	Lo, Hi int
	Type   AccountType
	Normal Side
}

// BASRanges is the BAS-standard classification of the 1000–8999 number space.
var BASRanges = []BASRange{
	{1000, 1999, AccountTypeAsset, SideDebit},
	{2000, 2079, AccountTypeLiability, SideCredit},
	{2080, 2099, AccountTypeEquity, SideCredit},
	{2100, 2999, AccountTypeLiability, SideCredit},
	{3000, 3999, AccountTypeRevenue, SideCredit},
	{4000, 7999, AccountTypeExpense, SideDebit},
	{8000, 8399, AccountTypeRevenue, SideCredit},
	{8400, 8999, AccountTypeExpense, SideDebit},
}

// ValidNumber reports whether s is a well-formed BAS account number:
// exactly four digits with a leading digit in 1..8.
func ValidNumber(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s[0] >= '1' && s[0] <= '8'
}

// numberValue converts a validated account number to its integer value.
func numberValue(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// rangeFor returns the BAS range covering the account number, if any.
func rangeFor(number string) (BASRange, bool) {
	if !ValidNumber(number) {
		return BASRange{}, false
	}
	n := numberValue(number)
	for _, r := range BASRanges {
		if n >= r.Lo && n <= r.Hi {
			return r, true
		}
	}
	return BASRange{}, false
}

// TypeForNumber derives the account type from the BAS number ranges.
// It is used to backfill accounts arriving through SIE import; an account's
// stored Type always wins over this derivation once set.
func TypeForNumber(number string) (AccountType, bool) {
	r, ok := rangeFor(number)
	if !ok {
		return "", false
	}
	return r.Type, true
}

// NormalSide returns the natural balance side for the account type: assets
// and expenses are debit-positive, the rest credit-positive.
func NormalSide(t AccountType) Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// InRange reports whether the account number falls inside [lo, hi].
func InRange(number string, lo, hi int) bool {
	if !ValidNumber(number) {
		return false
	}
	n := numberValue(number)
	return n >= lo && n <= hi
}
