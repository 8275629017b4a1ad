package validate

import (
	"github.com/ShiraazMoollatjie/goluhn"
)

const accountNumberLength = 10

func IsLuna(s string) bool {
	err := goluhn.Validate(s)
	return err == nil
}

// NewAccountNumber returns a Luhn-valid 10 digit number that does not start with zero.
func NewAccountNumber() string {
	for {
		n := goluhn.Generate(accountNumberLength)
		if n[0] != '0' {
			return n
		}
	}
}
