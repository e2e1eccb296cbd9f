package gpg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer creates armored detached signatures with one private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner wraps an entity that carries a decrypted private key
func NewSigner(entity *openpgp.Entity) (*Signer, error) {
	if entity == nil || entity.PrivateKey == nil {
		return nil, fmt.Errorf("entity has no private key")
	}
	if entity.PrivateKey.Encrypted {
		return nil, fmt.Errorf("private key %s is encrypted", fingerprint(entity))
	}
	return &Signer{entity: entity}, nil
}

// LoadSignerFromFile reads the first private key in keyPath, decrypting it
// with passphrase when it is protected
func LoadSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyFile(keyPath)
	if err != nil {
		return nil, err
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if err := decryptEntity(entity, passphrase); err != nil {
			return nil, err
		}
		return NewSigner(entity)
	}
	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

func decryptEntity(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return fmt.Errorf("private key %s is encrypted and no passphrase was given", fingerprint(entity))
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}
	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err := subkey.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to decrypt private subkey: %w", err)
			}
		}
	}
	return nil
}

// SignFile writes an armored detached signature of filePath to sigPath
func (s *Signer) SignFile(filePath, sigPath string) (err error) {
	//nolint:gosec // G304: filePath is the recipe file being signed
	in, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(sigPath), "."+filepath.Base(sigPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}
	tmpPath := out.Name()
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = openpgp.ArmoredDetachSign(out, s.entity, in, nil); err != nil {
		return fmt.Errorf("failed to sign %s: %w", filePath, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}
	if err = os.Rename(tmpPath, sigPath); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}
	return nil
}

// PublicKeys returns the signer as a keyring, for verifying its own signatures
func (s *Signer) PublicKeys() openpgp.EntityList {
	return openpgp.EntityList{s.entity}
}

// Fingerprint returns the primary key fingerprint in upper-case hex
func (s *Signer) Fingerprint() string {
	return fingerprint(s.entity)
}
