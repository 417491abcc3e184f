package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/yourusername/trader-arena/internal/models"
)

// Signer signs transactions for one wallet.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// KeypairSigner signs with a local private key.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps key.
func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

// LoadKeypairSigner reads a solana-keygen JSON keypair file.
func LoadKeypairSigner(path string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	return NewKeypairSigner(key), nil
}

// PublicKey returns the signer's address.
func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// SignTransaction adds this key's signature to tx.
func (s *KeypairSigner) SignTransaction(tx *solana.Transaction) error {
	pub := s.key.PublicKey()
	_, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// TransferInstruction moves lamports from one account to another through the
// system program.
func TransferInstruction(from, to solana.PublicKey, amount models.Lamports) solana.Instruction {
	return system.NewTransferInstruction(uint64(amount), from, to).Build()
}

// ParseAddress validates a base58 Solana address.
func ParseAddress(address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: invalid Solana address %q", models.ErrInvalidInput, address)
	}
	return pk, nil
}
