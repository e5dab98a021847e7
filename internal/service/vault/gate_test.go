package vault_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/aead"
	"github.com/oursapp/ours-api/internal/service/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlainMemory(t *testing.T) *domain.EmotionalMemory {
	t.Helper()

	imageURL := "https://img.example/sunset.jpg"
	memory, err := domain.NewEmotionalMemory(
		uuid.New(), uuid.New(), uuid.New(),
		"sunset walk on the pier",
		&imageURL,
		domain.MoodJoy,
		domain.CategoryEveryday,
		0.8,
		true,
	)
	require.NoError(t, err)
	return memory
}

func newGate(t *testing.T) *vault.Gate {
	t.Helper()
	return vault.NewGate(aead.NewCodec(), nil)
}

func TestPrepareForStorageSealsPlaintext(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	memory := newPlainMemory(t)

	sealed, err := gate.PrepareForStorage(memory, "rel-key")
	require.NoError(t, err)

	assert.True(t, sealed.Encrypted)
	assert.NotNil(t, sealed.EncryptedData)
	assert.Empty(t, sealed.Caption)
	assert.Nil(t, sealed.ImageURL)
	assert.NoError(t, sealed.Validate())

	// Input must be untouched.
	assert.False(t, memory.Encrypted)
	assert.Equal(t, "sunset walk on the pier", memory.Caption)
}

func TestPrepareForStorageIdempotent(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	sealed, err := gate.PrepareForStorage(newPlainMemory(t), "rel-key")
	require.NoError(t, err)

	again, err := gate.PrepareForStorage(sealed, "rel-key")
	require.NoError(t, err)
	assert.Equal(t, sealed, again)
}

func TestRoundTripRestoresPlaintext(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	memory := newPlainMemory(t)

	sealed, err := gate.PrepareForStorage(memory, "rel-key")
	require.NoError(t, err)

	opened, err := gate.PrepareForDisplay(sealed, "rel-key")
	require.NoError(t, err)

	assert.Equal(t, memory, opened)
}

func TestPrepareForDisplayPlaintextPassthrough(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	memory := newPlainMemory(t)

	opened, err := gate.PrepareForDisplay(memory, "rel-key")
	require.NoError(t, err)
	assert.Equal(t, memory, opened)
}

func TestPrepareForDisplayWrongKey(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	sealed, err := gate.PrepareForStorage(newPlainMemory(t), "rel-key")
	require.NoError(t, err)

	opened, err := gate.PrepareForDisplay(sealed, "other-key")
	assert.Nil(t, opened)
	assert.ErrorIs(t, err, vault.ErrCrypto)

	// The sealed memory must be untouched after the failure.
	assert.True(t, sealed.Encrypted)
	assert.NotNil(t, sealed.EncryptedData)
}

func TestPrepareForDisplayCorruptPayload(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	sealed, err := gate.PrepareForStorage(newPlainMemory(t), "rel-key")
	require.NoError(t, err)

	garbage := "bm90IGEgcmVhbCBwYXlsb2Fk"
	sealed.EncryptedData = &garbage

	_, err = gate.PrepareForDisplay(sealed, "rel-key")
	assert.ErrorIs(t, err, vault.ErrCrypto)
}

func TestPrepareForDisplayMissingCiphertext(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	memory := newPlainMemory(t)
	memory.Encrypted = true
	memory.Caption = ""
	memory.ImageURL = nil

	_, err := gate.PrepareForDisplay(memory, "rel-key")
	assert.ErrorIs(t, err, domain.ErrCiphertextMissing)
}

func TestSealErrorPropagates(t *testing.T) {
	t.Parallel()

	gate := newGate(t)
	_, err := gate.PrepareForStorage(newPlainMemory(t), "")
	assert.ErrorIs(t, err, aead.ErrKeyEmpty)
}
