package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// EnvelopeModuleID is the id of the single module an encrypted document is
// stored as. Its data holds the base64 ciphertext under "ciphertext".
const EnvelopeModuleID = "__encrypted__"

// ErrNotEncrypted is returned when a stored document is not an envelope.
var ErrNotEncrypted = errors.New("document is missing encrypted data envelope")

type encryptionMiddleware struct {
	next   ports.DocumentStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts documents using AES-GCM (envelope encryption).
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	plainText, err := schema.Marshal(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	ciphertext, err := seal(plainText, m.config.ActiveKey, id)
	if err != nil {
		return fmt.Errorf("failed to encrypt document: %w", err)
	}

	// The envelope hides the title and the whole graph.
	envelope := domain.DocumentState{Modules: []*domain.Module{{
		ID:     EnvelopeModuleID,
		Plugin: EnvelopeModuleID,
		Data:   map[string]any{"ciphertext": base64.StdEncoding.EncodeToString(ciphertext)},
		Sends:  []domain.ModuleID{},
	}}}

	return m.next.Save(ctx, id, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return domain.DocumentState{}, err
	}

	// Plain documents are rejected; encryption is not enabled on existing data silently.
	sealed, ok := envelope.Module(EnvelopeModuleID)
	if !ok || len(envelope.Modules) != 1 {
		return domain.DocumentState{}, ErrNotEncrypted
	}
	encoded, ok := sealed.Data["ciphertext"].(string)
	if !ok {
		return domain.DocumentState{}, ErrNotEncrypted
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := openAny(ciphertext, id, append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)...)
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("failed to decrypt document: %w", err)
	}

	doc, err := schema.Unmarshal(plainText, schema.FormatJSON)
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("failed to unmarshal decrypted document: %w", err)
	}
	return doc, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext with the document id as additional data, so an
// envelope copied to another id no longer opens. The nonce is prepended.
func seal(plaintext []byte, key []byte, id string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, []byte(id)), nil
}

// openAny tries the active key, then each fallback key in order.
func openAny(ciphertext []byte, id string, keys ...[]byte) ([]byte, error) {
	for _, key := range keys {
		gcm, err := newGCM(key)
		if err != nil || len(ciphertext) < gcm.NonceSize() {
			continue
		}
		nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
		if plain, err := gcm.Open(nil, nonce, sealed, []byte(id)); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}
