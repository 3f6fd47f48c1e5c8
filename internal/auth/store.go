// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeranaias/learnlab/internal/util"
)

const (
	sessionFile = "session.json"
	keyFile     = "session.key"
	sealVersion = 1
)

// additionalData binds sealed blobs to their purpose.
var additionalData = []byte("learnlab-session-v1")

// sealed is the on-disk form of a session.
type sealed struct {
	Version    int    `json:"version"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Store persists the session in a directory, sealed with
// XChaCha20-Poly1305 under a random per-install key.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the sealed session file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, sessionFile)
}

func (s *Store) keyPath() string {
	return filepath.Join(s.dir, keyFile)
}

// Save seals and writes the session.
func (s *Store) Save(sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrNoSession
	}

	key, err := s.key(true)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("failed to init cipher: %w", err)
	}

	plain, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	data, err := json.Marshal(sealed{
		Version:    sealVersion,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, additionalData),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := util.AtomicWriteFile(s.Path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load reads and opens the stored session. It returns ErrNoSession when
// there is none.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var blob sealed
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("corrupt session file: %w", err)
	}
	if blob.Version != sealVersion {
		return nil, fmt.Errorf("unsupported session file version %d", blob.Version)
	}

	key, err := s.key(false)
	if errors.Is(err, fs.ErrNotExist) {
		// Session without its key cannot be opened.
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	if len(blob.Nonce) != aead.NonceSize() {
		return nil, errors.New("corrupt session file: bad nonce")
	}

	plain, err := aead.Open(nil, blob.Nonce, blob.Ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session: %w", err)
	}
	return &sess, nil
}

// Clear removes the stored session. The key is kept for the next sign-in.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// key reads the sealing key, creating it when create is set.
func (s *Store) key(create bool) ([]byte, error) {
	key, err := os.ReadFile(s.keyPath())
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("session key has wrong size %d", len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !create {
		return nil, err
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	if err := util.AtomicWriteFile(s.keyPath(), key, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	return key, nil
}
