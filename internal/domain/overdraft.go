package domain

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

const (
	OverdraftMin = 300
	OverdraftMax = 1000 // exclusive
)

// OverdraftPolicy picks the overdraft limit granted to a new special account.
type OverdraftPolicy func() decimal.Decimal

// RandomOverdraft draws a whole amount uniformly from [OverdraftMin, OverdraftMax).
func RandomOverdraft() decimal.Decimal {
	return decimal.NewFromInt(int64(OverdraftMin + rand.Intn(OverdraftMax-OverdraftMin)))
}

func FixedOverdraft(limit decimal.Decimal) OverdraftPolicy {
	return func() decimal.Decimal { return limit }
}
