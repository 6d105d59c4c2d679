package infrastructure

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
)

// System program instruction index for a native transfer
const systemTransferIndex = 2

// appendShortvecLen appends a compact-u16 length prefix as used by the
// Solana wire format
func appendShortvecLen(buf []byte, n int) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// buildTransferTransaction assembles and signs a legacy transaction carrying
// a single system transfer instruction. Returns the serialized transaction
// and the payer's signature over the message.
func buildTransferTransaction(payerPriv ed25519.PrivateKey, payerPub, dest, blockhash []byte, lamports int64) (tx, signature []byte, err error) {
	if len(payerPub) != ed25519.PublicKeySize || len(dest) != ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("account keys must be %d bytes", ed25519.PublicKeySize)
	}
	if len(blockhash) != 32 {
		return nil, nil, fmt.Errorf("blockhash must be 32 bytes, got %d", len(blockhash))
	}
	if lamports <= 0 {
		return nil, nil, fmt.Errorf("transfer amount must be positive, got %d", lamports)
	}

	// Message header: one required signature, no readonly signed accounts,
	// one readonly unsigned account (the system program)
	msg := []byte{1, 0, 1}

	// Account keys: payer, destination, system program (all zeros)
	msg = appendShortvecLen(msg, 3)
	msg = append(msg, payerPub...)
	msg = append(msg, dest...)
	msg = append(msg, make([]byte, 32)...)

	msg = append(msg, blockhash...)

	// Single instruction: system transfer from account 0 to account 1
	msg = appendShortvecLen(msg, 1)
	msg = append(msg, 2) // program id index
	msg = appendShortvecLen(msg, 2)
	msg = append(msg, 0, 1)

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], uint64(lamports))
	msg = appendShortvecLen(msg, len(data))
	msg = append(msg, data...)

	signature = ed25519.Sign(payerPriv, msg)

	tx = appendShortvecLen(nil, 1)
	tx = append(tx, signature...)
	tx = append(tx, msg...)

	return tx, signature, nil
}
