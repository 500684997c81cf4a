package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
)

const (
	AlgorithmEdDSA = "EdDSA"
	AlgorithmHS256 = "HS256"
)

// KeyManager owns the signing keys of the process and the verifier that
// accepts tokens signed by them.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	algorithm string
	signers   []Signer
}

type KeyManagerOptions struct {
	// Issuer is stamped into iss and enforced on verify.
	Issuer string

	// Audience is stamped into aud and enforced on verify. Optional.
	Audience []string

	// NumKeys is the number of ephemeral EdDSA keys. Defaults to 2, capped at 10.
	NumKeys int
}

// NewEphemeralKeyManager generates in-memory Ed25519 keys. Tokens do not
// survive a restart.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	n := opts.NumKeys
	if n <= 0 {
		n = 2
	}
	n = min(n, 10)

	keyset := NewKeySet()
	signers := make([]Signer, 0, n)

	for i := range n {
		kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate kid: %w", err)
		}

		pemBytes, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate key %d: %w", i+1, err)
		}

		signer, err := NewSignerEdDSA("quiz-"+kid, pemBytes)
		if err != nil {
			return nil, err
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: add key %d: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		Verifier:  NewVerifierEdDSA(keyset, opts.Issuer, opts.Audience),
		KeySet:    keyset,
		algorithm: AlgorithmEdDSA,
		signers:   signers,
	}, nil
}

// NewHMACKeyManager uses one shared secret, so tokens survive restarts and
// can be verified by every replica. The JWKS stays empty.
func NewHMACKeyManager(opts KeyManagerOptions, secret []byte) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	s, err := NewHMACSigner("quiz-hs256", secret, opts.Issuer, opts.Audience)
	if err != nil {
		return nil, err
	}

	return &KeyManager{
		Verifier:  s,
		KeySet:    NewKeySet(),
		algorithm: AlgorithmHS256,
		signers:   []Signer{s},
	}, nil
}

func (km *KeyManager) Algorithm() string { return km.algorithm }

// IsReady reports whether tokens can be issued.
func (km *KeyManager) IsReady() bool {
	return len(km.signers) > 0
}

// GetSigner returns one of the signing keys at random.
func (km *KeyManager) GetSigner() Signer {
	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// Sign signs claims with a randomly picked key.
func (km *KeyManager) Sign(c Claims) (string, error) {
	s := km.GetSigner()
	if s == nil {
		return "", ErrNoKey
	}
	return s.Sign(c)
}

func (km *KeyManager) Verify(token string) (Claims, error) {
	return km.Verifier.Verify(token)
}
