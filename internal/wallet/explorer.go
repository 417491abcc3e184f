package wallet

import "fmt"

const explorerBase = "https://explorer.solana.com"

func clusterParam(network string) string {
	if network == "" || network == "mainnet-beta" {
		return ""
	}
	return "?cluster=" + network
}

// TxExplorerURL links to a transaction on the Solana explorer.
func TxExplorerURL(signature, network string) string {
	return fmt.Sprintf("%s/tx/%s%s", explorerBase, signature, clusterParam(network))
}

// AddressExplorerURL links to an account on the Solana explorer.
func AddressExplorerURL(address, network string) string {
	return fmt.Sprintf("%s/address/%s%s", explorerBase, address, clusterParam(network))
}

// TruncateAddress renders Abc1...xyz9 for display.
func TruncateAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
