package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ProtocolPrefix starts every pickup protocol code.
const ProtocolPrefix = "COL"

var protocolPattern = regexp.MustCompile(`^` + ProtocolPrefix + `\d{9}$`)

// NewProtocol builds a pickup protocol code: the prefix, the last six digits
// of now in Unix milliseconds and a zero-padded random number below 1000.
// Codes are unique in practice, not guaranteed.
func NewProtocol(now time.Time) (string, error) {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) < 6 {
		millis = strings.Repeat("0", 6-len(millis)) + millis
	}
	millis = millis[len(millis)-6:]

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%03d", ProtocolPrefix, millis, n.Int64()), nil
}

// IsProtocol reports whether s has the shape of a protocol code.
func IsProtocol(s string) bool {
	return protocolPattern.MatchString(s)
}
