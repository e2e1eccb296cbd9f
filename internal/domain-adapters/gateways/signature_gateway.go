// Package gateways adapts external integrations to the domain gateway interfaces.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
	"github.com/ochairo/filedrecipes/internal/external-adapters/gpg"
)

// ErrNoSigningKey is returned by SignFile when no private key is configured
var ErrNoSigningKey = errors.New("no signing key configured")

// ErrNoVerificationKey is returned by VerifyFile when no public key is configured
var ErrNoVerificationKey = errors.New("no verification key configured")

// SignatureConfig names the key files used by the signature gateway.
// Either path may be empty.
type SignatureConfig struct {
	PublicKeyPath  string
	PrivateKeyPath string
	Passphrase     string
}

// signatureGateway wraps the external GPG adapter to implement the domain gateway interface
type signatureGateway struct {
	verifier *gpg.Verifier
	signer   *gpg.Signer
	logger   interfaces.Logger
}

// NewSignatureGateway loads the configured keys. The signer's own public key
// is added to the verification keyring so a key pair can check what it signs.
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewSignatureGateway(cfg SignatureConfig, logger interfaces.Logger) (*signatureGateway, error) {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	g := &signatureGateway{
		verifier: gpg.NewVerifier(),
		logger:   logger,
	}

	if cfg.PublicKeyPath != "" {
		if err := g.verifier.ImportKeyFromFile(cfg.PublicKeyPath); err != nil {
			return nil, fmt.Errorf("failed to import public key: %w", err)
		}
	}

	if cfg.PrivateKeyPath != "" {
		signer, err := gpg.LoadSignerFromFile(cfg.PrivateKeyPath, []byte(cfg.Passphrase))
		if err != nil {
			return nil, fmt.Errorf("failed to load private key: %w", err)
		}
		g.signer = signer
		g.verifier.AddKeys(signer.PublicKeys())
		logger.Debug("Signing key loaded", interfaces.F("fingerprint", signer.Fingerprint()))
	}

	return g, nil
}

// SignFile writes an armored detached signature for filePath to sigPath
func (g *signatureGateway) SignFile(ctx context.Context, filePath, sigPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.signer == nil {
		return ErrNoSigningKey
	}

	if err := g.signer.SignFile(filePath, sigPath); err != nil {
		return fmt.Errorf("GPG signing failed: %w", err)
	}

	g.logger.Info("Recipe file signed",
		interfaces.F("file", filePath),
		interfaces.F("signature", sigPath),
		interfaces.F("fingerprint", g.signer.Fingerprint()))
	return nil
}

// VerifyFile verifies a detached GPG signature from a local file
func (g *signatureGateway) VerifyFile(ctx context.Context, filePath, sigPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.CanVerify() {
		return ErrNoVerificationKey
	}

	fp, err := g.verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}

	g.logger.Debug("Signature verified",
		interfaces.F("file", filePath),
		interfaces.F("fingerprint", fp))
	return nil
}

// VerifyData verifies a detached GPG signature against content already in memory
func (g *signatureGateway) VerifyData(ctx context.Context, data []byte, sigPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.CanVerify() {
		return ErrNoVerificationKey
	}

	fp, err := g.verifier.VerifySignature(bytes.NewReader(data), sigPath)
	if err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}

	g.logger.Debug("Signature verified",
		interfaces.F("bytes", len(data)),
		interfaces.F("fingerprint", fp))
	return nil
}

// CanSign reports whether a private key was loaded
func (g *signatureGateway) CanSign() bool {
	return g.signer != nil
}

// CanVerify reports whether the keyring holds at least one key
func (g *signatureGateway) CanVerify() bool {
	return g.verifier.GetKeyringSize() > 0
}
