package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

const alnumCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomHex returns 2*byteLen hex characters from the system entropy source.
// An unreadable entropy source aborts the run before any service is touched.
func RandomHex(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Environment(apperrors.Wrap(err, "entropy source unavailable"))
	}
	return hex.EncodeToString(buf), nil
}

// RandomAlnum returns length characters drawn uniformly from [a-zA-Z0-9].
// Alphanumeric output stays safe inside connection strings, YAML scalars and
// container environment blocks.
func RandomAlnum(length int) (string, error) {
	charsetLen := big.NewInt(int64(len(alnumCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", apperrors.Environment(apperrors.Wrap(err, "entropy source unavailable"))
		}
		out[i] = alnumCharset[n.Int64()]
	}
	return string(out), nil
}
