package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/yourusername/trader-arena/internal/models"
)

// SignatureStatus is the cluster's view of a sent transaction.
type SignatureStatus struct {
	ConfirmationStatus rpc.ConfirmationStatusType
	Err                interface{}
}

// Confirmed reports whether the transaction reached confirmed or finalized.
func (s *SignatureStatus) Confirmed() bool {
	return s != nil && s.Err == nil &&
		(s.ConfirmationStatus == rpc.ConfirmationStatusConfirmed || s.ConfirmationStatus == rpc.ConfirmationStatusFinalized)
}

// ChainClient is the subset of Solana JSON-RPC the wallet uses.
type ChainClient interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (models.Lamports, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

// RPCClient implements ChainClient over solana-go's JSON-RPC client.
type RPCClient struct {
	rpc *rpc.Client
}

// NewRPCClient connects to endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{rpc: rpc.New(endpoint)}
}

// GetBalance returns the owner's confirmed balance.
func (c *RPCClient) GetBalance(ctx context.Context, owner solana.PublicKey) (models.Lamports, error) {
	out, err := c.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	return models.Lamports(out.Value), nil
}

// LatestBlockhash returns a finalized blockhash and the last block height at
// which a transaction using it is valid.
func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
}

// SendTransaction broadcasts a signed transaction with preflight checks.
func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus returns nil when the cluster has not seen sig yet.
func (c *RPCClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, fmt.Errorf("getSignatureStatuses: %w", err)
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	return &SignatureStatus{
		ConfirmationStatus: out.Value[0].ConfirmationStatus,
		Err:                out.Value[0].Err,
	}, nil
}

// BlockHeight returns the confirmed block height.
func (c *RPCClient) BlockHeight(ctx context.Context) (uint64, error) {
	h, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getBlockHeight: %w", err)
	}
	return h, nil
}

// Close releases the RPC connection.
func (c *RPCClient) Close() error {
	return c.rpc.Close()
}
