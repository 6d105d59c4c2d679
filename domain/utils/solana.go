package utils

import (
	"github.com/mr-tron/base58"
)

const (
	walletByteLen    = 32
	signatureByteLen = 64
)

// IsValidWalletAddress reports whether s is a well-formed base58 Solana
// public key (decodes to exactly 32 bytes).
func IsValidWalletAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == walletByteLen
}

// IsValidTransactionSignature reports whether s is a well-formed base58
// transaction signature (decodes to exactly 64 bytes).
func IsValidTransactionSignature(s string) bool {
	if len(s) < 64 || len(s) > 90 {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == signatureByteLen
}

// DecodeWallet decodes a base58 wallet address to its raw public key bytes
func DecodeWallet(s string) ([]byte, error) {
	return base58.Decode(s)
}

// DecodeSignature decodes a base58 signature to raw bytes
func DecodeSignature(s string) ([]byte, error) {
	return base58.Decode(s)
}
