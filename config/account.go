package config

import (
	"fmt"
	"strings"
)

// Account selects one of the configured brokerage accounts.
type Account string

const (
	Custodial Account = "CUSTODIAL"
	Investing Account = "INVESTING"
	Roth      Account = "ROTH"
	Roth2     Account = "ROTH2"
	IRA       Account = "IRA"
)

// Accounts lists every valid account selector.
var Accounts = []Account{Custodial, Investing, Roth, Roth2, IRA}

// envNumberVars maps each account to the environment variable that can
// override its configured account number.
var envNumberVars = map[Account]string{
	Custodial: "ACCT_NUM_CUST",
	Investing: "ACCT_NUM_INVST",
	Roth:      "ACCT_NUM_ROTH",
	Roth2:     "ACCT_NUM_ROTH2",
	IRA:       "ACCT_NUM_IRA",
}

// ValidationError reports an account selector outside the fixed set.
type ValidationError struct {
	Selector string
}

func (e *ValidationError) Error() string {
	names := make([]string, len(Accounts))
	for i, a := range Accounts {
		names[i] = string(a)
	}
	return fmt.Sprintf("unknown account %q (choose one of %s)", e.Selector, strings.Join(names, ", "))
}

// ParseAccount validates a selector string against the fixed account set.
func ParseAccount(s string) (Account, error) {
	a := Account(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Accounts {
		if a == known {
			return a, nil
		}
	}
	return "", &ValidationError{Selector: s}
}
