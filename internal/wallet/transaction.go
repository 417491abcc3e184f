package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/metrics"
	"github.com/yourusername/trader-arena/internal/models"
)

// TxStatus is a step of the transaction lifecycle.
type TxStatus string

const (
	TxIdle       TxStatus = "idle"
	TxPreparing  TxStatus = "preparing"
	TxSigning    TxStatus = "signing"
	TxSending    TxStatus = "sending"
	TxConfirming TxStatus = "confirming"
	TxSuccess    TxStatus = "success"
	TxError      TxStatus = "error"
)

// IsLoading reports whether a transaction is underway.
func (s TxStatus) IsLoading() bool {
	switch s {
	case TxPreparing, TxSigning, TxSending, TxConfirming:
		return true
	}
	return false
}

// Default confirmation bounds.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = time.Second
)

var (
	ErrTransactionInProgress = errors.New("a transaction is already in progress")
	ErrConfirmationTimeout   = errors.New("transaction confirmation timed out")
	ErrBlockhashExpired      = errors.New("blockhash expired before confirmation")
	ErrTransactionFailed     = errors.New("transaction failed on chain")
)

// TransactionRunner prepares, signs, sends and confirms one transaction at a
// time, exposing each step as a status.
type TransactionRunner struct {
	chain          ChainClient
	signer         Signer
	logger         *logrus.Logger
	audit          *logger.AuditLogger
	confirmTimeout time.Duration
	pollInterval   time.Duration

	mu        sync.Mutex
	busy      bool
	status    TxStatus
	signature solana.Signature
	err       error
	listeners []func(TxStatus)
}

// NewTransactionRunner creates a runner. A nil signer means no wallet is
// connected and every Run fails.
func NewTransactionRunner(chain ChainClient, signer Signer, confirmTimeout, pollInterval time.Duration, log *logrus.Logger) *TransactionRunner {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &TransactionRunner{
		chain:          chain,
		signer:         signer,
		logger:         log,
		audit:          logger.NewAuditLogger(log),
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
		status:         TxIdle,
	}
}

// OnStatusChange registers fn for every status transition.
func (r *TransactionRunner) OnStatusChange(fn func(TxStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Status returns the current step.
func (r *TransactionRunner) Status() TxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Signature returns the signature of the last sent transaction.
func (r *TransactionRunner) Signature() solana.Signature {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.signature
}

// Err returns the error that moved the runner to TxError.
func (r *TransactionRunner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Reset returns an idle or finished runner to TxIdle.
func (r *TransactionRunner) Reset() {
	r.mu.Lock()
	busy := r.busy
	r.mu.Unlock()

	if !busy {
		r.transition(TxIdle, solana.Signature{}, nil)
	}
}

// Run builds a transaction from instructions paid by the signer and drives it
// to confirmation.
func (r *TransactionRunner) Run(ctx context.Context, instructions ...solana.Instruction) (solana.Signature, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return solana.Signature{}, ErrTransactionInProgress
	}
	r.busy = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	if r.signer == nil {
		return solana.Signature{}, r.fail(solana.Signature{}, models.ErrWalletNotConnected)
	}

	r.transition(TxPreparing, solana.Signature{}, nil)
	blockhash, lastValid, err := r.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, r.fail(solana.Signature{}, err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(r.signer.PublicKey()))
	if err != nil {
		return solana.Signature{}, r.fail(solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err))
	}

	r.transition(TxSigning, solana.Signature{}, nil)
	if err := r.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, r.fail(solana.Signature{}, err)
	}

	r.transition(TxSending, solana.Signature{}, nil)
	sig, err := r.chain.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, r.fail(solana.Signature{}, err)
	}

	r.transition(TxConfirming, sig, nil)
	start := time.Now()
	if err := r.waitForConfirmation(ctx, sig, lastValid); err != nil {
		return sig, r.fail(sig, err)
	}
	metrics.RecordTransactionConfirmation(time.Since(start).Seconds())

	r.transition(TxSuccess, sig, nil)
	metrics.RecordTransaction(string(TxSuccess))
	return sig, nil
}

// IsConfirmed reports whether sig reached confirmed or finalized.
func (r *TransactionRunner) IsConfirmed(ctx context.Context, sig solana.Signature) (bool, error) {
	st, err := r.chain.SignatureStatus(ctx, sig)
	if err != nil {
		return false, err
	}
	return st.Confirmed(), nil
}

func (r *TransactionRunner) waitForConfirmation(ctx context.Context, sig solana.Signature, lastValid uint64) error {
	ctx, cancel := context.WithTimeout(ctx, r.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		st, err := r.chain.SignatureStatus(ctx, sig)
		switch {
		case err != nil:
			r.logger.WithError(err).WithField("signature", sig.String()).Debug("Signature status poll failed")
		case st != nil && st.Err != nil:
			return fmt.Errorf("%w: %v", ErrTransactionFailed, st.Err)
		case st.Confirmed():
			return nil
		}

		if lastValid > 0 {
			height, err := r.chain.BlockHeight(ctx)
			if err == nil && height > lastValid {
				return ErrBlockhashExpired
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrConfirmationTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *TransactionRunner) fail(sig solana.Signature, err error) error {
	r.transition(TxError, sig, err)
	metrics.RecordTransaction(string(TxError))
	r.logger.WithError(err).Warn("Transaction failed")
	return err
}

func (r *TransactionRunner) transition(status TxStatus, sig solana.Signature, err error) {
	r.mu.Lock()
	old := r.status
	r.status = status
	r.signature = sig
	r.err = err
	listeners := make([]func(TxStatus), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	sigStr := ""
	if sig != (solana.Signature{}) {
		sigStr = sig.String()
	}
	r.audit.LogTransactionStateChange(sigStr, string(old), string(status), err)

	for _, fn := range listeners {
		fn(status)
	}
}
