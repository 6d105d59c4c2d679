package infrastructure

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"solotto/domain/interfaces"

	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"
)

type payerKey struct {
	wallet string
	pub    ed25519.PublicKey
	priv   ed25519.PrivateKey
}

// SolanaGateway implements interfaces.ChainGateway against a Solana JSON-RPC
// node. Payer keypairs are registered by name at construction time.
type SolanaGateway struct {
	endpoint       string
	client         *http.Client
	payers         map[string]payerKey
	confirmTimeout time.Duration
	pollInterval   time.Duration
	requestID      atomic.Int64
}

// NewSolanaGateway creates a gateway. payerSecrets maps payer account names
// to base58-encoded 64-byte ed25519 secret keys.
func NewSolanaGateway(endpoint string, payerSecrets map[string]string) (*SolanaGateway, error) {
	payers := make(map[string]payerKey, len(payerSecrets))
	for name, secret := range payerSecrets {
		raw, err := base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to decode secret key for payer %s: %w", name, err)
		}
		if len(raw) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("payer %s secret key must be %d bytes, got %d", name, ed25519.PrivateKeySize, len(raw))
		}
		priv := ed25519.PrivateKey(raw)
		pub := priv.Public().(ed25519.PublicKey)
		payers[name] = payerKey{
			wallet: base58.Encode(pub),
			pub:    pub,
			priv:   priv,
		}
	}

	return &SolanaGateway{
		endpoint:       endpoint,
		client:         &http.Client{Timeout: 30 * time.Second},
		payers:         payers,
		confirmTimeout: 90 * time.Second,
		pollInterval:   2 * time.Second,
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (g *SolanaGateway) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      g.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response for %s: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc call %s: %w", method, rpcResp.Error)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

type parsedInstruction struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string `json:"type"`
		Info struct {
			Source      string `json:"source"`
			Destination string `json:"destination"`
			Lamports    int64  `json:"lamports"`
		} `json:"info"`
	} `json:"parsed"`
}

type getTransactionResult struct {
	Meta struct {
		Err json.RawMessage `json:"err"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []struct {
				Pubkey string `json:"pubkey"`
				Signer bool   `json:"signer"`
			} `json:"accountKeys"`
			Instructions []parsedInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

// GetTransaction fetches a parsed transaction by signature
func (g *SolanaGateway) GetTransaction(ctx context.Context, signature string) (*interfaces.TransactionInfo, error) {
	params := []any{
		signature,
		map[string]any{
			"encoding":                       "jsonParsed",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var raw json.RawMessage
	if err := g.call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, interfaces.ErrTransactionNotFound
	}

	var result getTransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse transaction %s: %w", signature, err)
	}

	info := &interfaces.TransactionInfo{
		Signature: signature,
		Success:   len(result.Meta.Err) == 0 || string(result.Meta.Err) == "null",
	}

	for _, key := range result.Transaction.Message.AccountKeys {
		if key.Signer {
			info.Sender = key.Pubkey
			break
		}
	}

	for _, inst := range result.Transaction.Message.Instructions {
		if inst.Program != "system" || inst.Parsed.Type != "transfer" {
			continue
		}
		info.Transfers = append(info.Transfers, interfaces.TransferDetail{
			Source:      inst.Parsed.Info.Source,
			Destination: inst.Parsed.Info.Destination,
			Lamports:    inst.Parsed.Info.Lamports,
		})
	}

	return info, nil
}

// SubmitTransfer builds, signs and submits a native transfer from the named
// payer account
func (g *SolanaGateway) SubmitTransfer(ctx context.Context, payerAccount, toWallet string, lamports int64) (string, error) {
	payer, ok := g.payers[payerAccount]
	if !ok {
		return "", fmt.Errorf("unknown payer account %s", payerAccount)
	}

	dest, err := base58.Decode(toWallet)
	if err != nil {
		return "", fmt.Errorf("failed to decode destination wallet: %w", err)
	}

	var blockhashResult struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	params := []any{map[string]any{"commitment": "confirmed"}}
	if err := g.call(ctx, "getLatestBlockhash", params, &blockhashResult); err != nil {
		return "", fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}

	blockhash, err := base58.Decode(blockhashResult.Value.Blockhash)
	if err != nil {
		return "", fmt.Errorf("failed to decode blockhash: %w", err)
	}

	tx, sig, err := buildTransferTransaction(payer.priv, payer.pub, dest, blockhash, lamports)
	if err != nil {
		return "", fmt.Errorf("failed to build transfer transaction: %w", err)
	}

	sendParams := []any{
		base64.StdEncoding.EncodeToString(tx),
		map[string]any{
			"encoding":            "base64",
			"preflightCommitment": "confirmed",
		},
	}

	var signature string
	if err := g.call(ctx, "sendTransaction", sendParams, &signature); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"payer":     payerAccount,
		"to":        toWallet,
		"lamports":  lamports,
		"signature": signature,
	}).Info("Submitted transfer")

	// The node returns the signature it derived; it must match ours
	if expected := base58.Encode(sig); signature != expected {
		log.WithFields(log.Fields{
			"expected": expected,
			"returned": signature,
		}).Warn("Node returned unexpected transaction signature")
	}

	return signature, nil
}

type signatureStatus struct {
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

// Confirm polls signature status until the transaction is confirmed, fails,
// or the bounded wait expires
func (g *SolanaGateway) Confirm(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		var result struct {
			Value []*signatureStatus `json:"value"`
		}
		params := []any{[]string{signature}}
		if err := g.call(ctx, "getSignatureStatuses", params, &result); err != nil {
			return err
		}

		if len(result.Value) > 0 && result.Value[0] != nil {
			status := result.Value[0]
			if len(status.Err) > 0 && string(status.Err) != "null" {
				return fmt.Errorf("transaction %s failed on chain: %s", signature, status.Err)
			}
			if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for confirmation of %s: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

// PayerWallet returns the public wallet address of a registered payer account
func (g *SolanaGateway) PayerWallet(payerAccount string) (string, error) {
	payer, ok := g.payers[payerAccount]
	if !ok {
		return "", fmt.Errorf("unknown payer account %s", payerAccount)
	}
	return payer.wallet, nil
}
