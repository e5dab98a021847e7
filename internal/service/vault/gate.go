// Package vault guards the boundary between plaintext memory content and
// what is allowed to reach storage. The Gate moves caption and image URL
// into an opaque sealed payload on the way in and restores them on the way
// out, so a memory row never carries both forms at once.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oursapp/ours-api/internal/domain"
)

// ErrCrypto indicates a sealed payload could not be restored, typically a
// wrong relationship key or a corrupt ciphertext. The memory is left
// untouched when this is returned.
var ErrCrypto = errors.New("memory payload could not be decrypted")

// Encrypter seals and opens memory payloads under a relationship key.
// The production implementation lives in platform/aead.
type Encrypter interface {
	Seal(plaintext []byte, relationshipKey string) (string, error)
	Open(payload string, relationshipKey string) ([]byte, error)
}

// sealedPayload is the JSON document that travels inside EncryptedData.
type sealedPayload struct {
	Caption  string  `json:"caption"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Gate applies the encryption invariant to memories crossing the storage
// boundary. It holds no keys and performs no rotation; the caller supplies
// the relationship key per operation.
type Gate struct {
	encrypter Encrypter
	logger    *slog.Logger
}

// NewGate creates a Gate backed by the given Encrypter.
func NewGate(encrypter Encrypter, log *slog.Logger) *Gate {
	if encrypter == nil {
		panic("encrypter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Gate{
		encrypter: encrypter,
		logger:    log.With(slog.String("component", "vault_gate")),
	}
}

// PrepareForStorage returns a copy of the memory with its plaintext caption
// and image URL sealed into EncryptedData. An already-encrypted memory is
// returned unchanged, so the call is idempotent. The input is never mutated.
func (g *Gate) PrepareForStorage(
	memory *domain.EmotionalMemory,
	relationshipKey string,
) (*domain.EmotionalMemory, error) {
	if memory.Encrypted {
		sealed := *memory
		return &sealed, nil
	}

	plaintext, err := json.Marshal(sealedPayload{
		Caption:  memory.Caption,
		ImageURL: memory.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode memory payload: %w", err)
	}

	data, err := g.encrypter.Seal(plaintext, relationshipKey)
	if err != nil {
		return nil, fmt.Errorf("failed to seal memory payload: %w", err)
	}

	sealed := *memory
	sealed.EncryptedData = &data
	sealed.Encrypted = true
	sealed.Caption = ""
	sealed.ImageURL = nil

	if err := sealed.Validate(); err != nil {
		return nil, err
	}

	return &sealed, nil
}

// PrepareForDisplay returns a copy of the memory with its sealed payload
// restored to plaintext. A plaintext memory is returned unchanged. A wrong
// key or corrupt payload yields ErrCrypto and no partial state.
func (g *Gate) PrepareForDisplay(
	memory *domain.EmotionalMemory,
	relationshipKey string,
) (*domain.EmotionalMemory, error) {
	if !memory.Encrypted {
		opened := *memory
		return &opened, nil
	}

	if memory.EncryptedData == nil || *memory.EncryptedData == "" {
		return nil, domain.ErrCiphertextMissing
	}

	plaintext, err := g.encrypter.Open(*memory.EncryptedData, relationshipKey)
	if err != nil {
		g.logger.Warn("failed to open memory payload",
			slog.String("memory_id", memory.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	var payload sealedPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrCrypto)
	}

	opened := *memory
	opened.Caption = payload.Caption
	opened.ImageURL = payload.ImageURL
	opened.Encrypted = false
	opened.EncryptedData = nil

	if err := opened.Validate(); err != nil {
		return nil, err
	}

	return &opened, nil
}
