package signer

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/do/v2"
)

var ErrNoPrivateKey = errors.New("no signing key configured")

const signatureLength = 65

type SignerService struct {
	key     *ecdsa.PrivateKey
	address string
}

func NewSignerService(i do.Injector) (*SignerService, error) {
	privateKey := do.MustInvokeNamed[string](i, "private-key")

	return New(privateKey)
}

// New parses a hex-encoded secp256k1 private key, with or without a 0x
// prefix. An absent or malformed key is an error; the process must refuse to
// serve rather than sign with garbage.
func New(privateKey string) (*SignerService, error) {
	if privateKey == "" {
		return nil, ErrNoPrivateKey
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	return &SignerService{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address is the public identity attestations are verified against.
func (s *SignerService) Address() string {
	return s.address
}

// Sign wraps message per the EIP-191 personal-message convention and returns
// the recoverable signature as 0x-prefixed hex, recovery byte 27/28.
func (s *SignerService) Sign(message []byte) (string, error) {
	signature, err := crypto.Sign(personalHash(message), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	signature[signatureLength-1] += 27

	return "0x" + hex.EncodeToString(signature), nil
}

// RecoverAddress returns the address whose key produced signatureHex over
// message. Both 0/1 and 27/28 recovery bytes are accepted.
func RecoverAddress(message []byte, signatureHex string) (string, error) {
	signature, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to decode signature hex: %w", err)
	}

	if len(signature) != signatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(signature))
	}

	if signature[signatureLength-1] >= 27 {
		signature[signatureLength-1] -= 27
	}

	publicKey, err := crypto.SigToPub(personalHash(message), signature)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

func personalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))

	return crypto.Keccak256([]byte(prefix), message)
}
