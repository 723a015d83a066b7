package handler

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureHeader carries the personal-sign signature of an admin request body
const SignatureHeader = "X-Signature"

var errBadSignature = errors.New("invalid signature")

// Sign returns the hex encoded EIP-191 signature of body
func Sign(key *ecdsa.PrivateKey, body []byte) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(body), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	return hexutil.Encode(sig), nil
}

// RecoverSigner returns the address that produced sig over body
func RecoverSigner(body []byte, sig string) (common.Address, error) {
	raw, err := hexutil.Decode(sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", errBadSignature, err)
	}
	if len(raw) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: %d bytes", errBadSignature, len(raw))
	}

	// wallets produce V as 27/28
	if raw[crypto.RecoveryIDOffset] >= 27 {
		raw[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(body), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", errBadSignature, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
