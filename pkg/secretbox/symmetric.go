package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required data key length in bytes.
const KeySize = chacha20poly1305.KeySize

const versionMagic = byte('X')

// Overhead is the size added to every sealed value: version, nonce and tag.
const Overhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

var ErrShortCiphertext = errors.New("sealed value is too short")

type SymmetricCipher interface {
	Decrypt(aad, packedText []byte) ([]byte, error)
	Encrypt(aad, plainText []byte) ([]byte, error)
}

type Symmetric struct {
	key []byte
}

func NewSymmetric(key []byte) (SymmetricCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Symmetric{key: k}, nil
}

// NewSymmetricFromEnv builds a cipher from the base64 GATEWAY_DATA_KEY.
func NewSymmetricFromEnv() (SymmetricCipher, error) {
	encoded := os.Getenv("GATEWAY_DATA_KEY")
	if encoded == "" {
		return nil, errors.New("GATEWAY_DATA_KEY environment variable is required")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("GATEWAY_DATA_KEY is not valid base64: %w", err)
	}
	return NewSymmetric(key)
}

// GenerateKey returns a fresh base64 data key.
func GenerateKey() (string, error) {
	key, err := RandomBytes(KeySize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}

// Encrypt packs "version | nonce | ciphertext+tag". The version byte is
// authenticated alongside aad.
func (s Symmetric) Encrypt(aad, plainText []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	nonce, err := RandomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}

	out := make([]byte, 1+len(nonce), Overhead+len(plainText))
	out[0] = versionMagic
	copy(out[1:], nonce)

	return aead.Seal(out, nonce, plainText, withVersion(aad)), nil
}

func (s Symmetric) Decrypt(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < Overhead {
		return nil, ErrShortCiphertext
	}
	if packedText[0] != versionMagic {
		return nil, fmt.Errorf("unsupported sealed value version %q", packedText[0])
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	nonce := packedText[1 : 1+chacha20poly1305.NonceSizeX]
	cipherText := packedText[1+chacha20poly1305.NonceSizeX:]

	plain, err := aead.Open(nil, nonce, cipherText, withVersion(aad))
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}
	return plain, nil
}

func withVersion(aad []byte) []byte {
	out := make([]byte, 0, len(aad)+1)
	out = append(out, versionMagic)
	return append(out, aad...)
}
