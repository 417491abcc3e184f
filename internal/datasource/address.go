package datasource

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var traderAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateTraderAddress checks that address is a 0x-prefixed 20-byte hex
// address and returns it in lower case, the form the data API keys on.
func ValidateTraderAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !traderAddressPattern.MatchString(address) || !common.IsHexAddress(address) {
		return "", NewDataSourceError(polymarketSource, ErrCodeInvalidAddress, address, ErrInvalidAddress)
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// ShortAddress renders 0x1234...abcd for display.
func ShortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
