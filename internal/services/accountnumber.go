package services

import (
	"crypto/rand"
	"math/big"
)

const (
	accountNumberPrefix   = "ACCT-"
	accountNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accountNumberLength   = 5
)

// GenerateAccountNumber produces a short quasi-unique account number,
// "ACCT-" followed by 5 characters drawn uniformly from [A-Z0-9].
// There is no collision check against stored accounts; at the volumes
// this system sees the keyspace (~1.5e7) is treated as sufficient.
func GenerateAccountNumber() string {
	buf := make([]byte, accountNumberLength)
	max := big.NewInt(int64(len(accountNumberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is
			// broken; nothing sensible to do for a display code.
			panic(err)
		}
		buf[i] = accountNumberAlphabet[n.Int64()]
	}
	return accountNumberPrefix + string(buf)
}
