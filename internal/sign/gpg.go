// Package sign creates detached gpg signatures for repo artifacts.
package sign

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer signs files with one gpg key.
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner loads the armored private key at keyPath, unlocking it with
// passphrase when the key is encrypted.
func NewSigner(keyPath, passphrase string) (*Signer, error) {
	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("open key %s: %w", keyPath, err)
	}
	defer keyFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", keyPath, err)
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys in %s", keyPath)
	}
	entity := keyring[0]
	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("%s holds no private key", keyPath)
	}
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return nil, fmt.Errorf("unlock key %s: %w", keyPath, err)
		}
	}
	return &Signer{entity: entity}, nil
}

// KeyUID returns the user id of the signing key, as rpmsign's _gpg_name
// expects it.
func (s *Signer) KeyUID() (string, error) {
	ids := make([]string, 0, len(s.entity.Identities))
	for id := range s.entity.Identities {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("signing key has no user id")
	}
	sort.Strings(ids)
	return ids[0], nil
}

// DetachSign writes an armored detached signature for path at path.sig.
func (s *Signer) DetachSign(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	out, err := os.Create(path + ".sig")
	if err != nil {
		return fmt.Errorf("create signature for %s: %w", path, err)
	}
	if err := openpgp.ArmoredDetachSign(out, s.entity, in, nil); err != nil {
		out.Close()
		os.Remove(path + ".sig")
		return fmt.Errorf("sign %s: %w", path, err)
	}
	return out.Close()
}

// SignTree creates detached signatures for every file under dir that does
// not already have one. Signature files themselves are skipped.
func (s *Signer) SignTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".sig") {
			return nil
		}
		if _, err := os.Stat(path + ".sig"); err == nil {
			return nil
		}
		return s.DetachSign(path)
	})
}
