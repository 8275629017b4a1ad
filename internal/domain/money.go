package domain

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReferencePrefixTransfer = "tr"
	ReferencePrefixCard     = "cad"
	ReferencePrefixCrypto   = "crd"
)

// CurrencyPlaces is the precision of every stored amount and balance.
const CurrencyPlaces = 2

var (
	// TransferFeeRate is charged on top of every transfer amount.
	TransferFeeRate = decimal.New(1, -2)
	// MinDepositAmount is the smallest deposit accepted.
	MinDepositAmount = decimal.NewFromInt(100)
)

// TransferFee is quantized to cents so a reversal credits back exactly what
// the approval debited.
func TransferFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(TransferFeeRate).Round(CurrencyPlaces)
}

// IsCurrencyAmount reports whether d has no digits below a cent.
func IsCurrencyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(CurrencyPlaces))
}

// NewReference builds a human-facing reference: prefix, the last six digits of the
// epoch milliseconds, and four random digits. Uniqueness is enforced by storage.
func NewReference(prefix string, now time.Time) string {
	suffix := now.UnixMilli() % 1_000_000
	random := 1000 + rand.IntN(9000)
	return fmt.Sprintf("%s%06d%d", prefix, suffix, random)
}

func DepositReferencePrefix(t DepositType) string {
	if t == DepositCard {
		return ReferencePrefixCard
	}
	return ReferencePrefixCrypto
}
