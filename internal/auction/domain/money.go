package domain

import "github.com/shopspring/decimal"

// money columns of the ledger are NUMERIC(12,2)
const moneyScale = 2

var moneyLimit = decimal.New(1, 10)

// CheckMoney rejects amounts the ledger cannot store exactly, so both stores
// see the same values
func CheckMoney(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(moneyScale)) {
		return ErrAmountPrecision
	}
	if !d.Abs().LessThan(moneyLimit) {
		return ErrAmountOutOfRange
	}
	return nil
}
