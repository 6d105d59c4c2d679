package interfaces

import (
	"context"
	"errors"
)

// ErrTransactionNotFound is returned by GetTransaction when the chain has no
// record of the signature.
var ErrTransactionNotFound = errors.New("transaction not found on chain")

// TransferDetail is one native transfer observed inside a transaction
type TransferDetail struct {
	Source      string
	Destination string
	Lamports    int64
}

// TransactionInfo is the parsed view of an on-chain transaction the
// settlement engine cares about.
type TransactionInfo struct {
	Signature string
	Sender    string // fee payer / first signer
	Success   bool   // false if the chain recorded an execution error
	Transfers []TransferDetail
}

// ChainGateway wraps read and write access to the blockchain. Payer accounts
// are registered with the gateway by name (one per tier plus the treasury);
// the settlement engine never handles key material directly.
type ChainGateway interface {
	// GetTransaction fetches a parsed transaction by signature.
	// Returns ErrTransactionNotFound if the chain has no record of it.
	GetTransaction(ctx context.Context, signature string) (*TransactionInfo, error)

	// SubmitTransfer builds, signs and submits a native transfer from the
	// named payer account and returns the transaction signature.
	SubmitTransfer(ctx context.Context, payerAccount, toWallet string, lamports int64) (string, error)

	// Confirm blocks until the signature is confirmed or the bounded wait
	// expires.
	Confirm(ctx context.Context, signature string) error

	// PayerWallet returns the public wallet address of a registered payer
	// account.
	PayerWallet(payerAccount string) (string, error)
}

// Payer account names registered with the chain gateway
const (
	PayerMonthly  = "monthly"
	PayerWeekly   = "weekly"
	PayerDaily    = "daily"
	PayerTreasury = "treasury"
)
