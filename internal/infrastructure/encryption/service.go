package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// Service encrypts OAuth access tokens for storage using AES-256-CBC with a
// random IV per call. Output format is "iv_hex:ciphertext_hex".
type Service struct {
	key []byte
}

// NewService builds the cipher from a 64-hex-character key (32 bytes).
func NewService(hexKey string) (ports.EncryptionService, error) {
	if hexKey == "" {
		return nil, &domain.ConfigError{Field: "encryption key", Message: "required"}
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, &domain.ConfigError{Field: "encryption key", Message: "must be a valid hexadecimal string"}
	}
	if len(key) != 32 {
		return nil, &domain.ConfigError{Field: "encryption key", Message: fmt.Sprintf("expected 32 bytes, got %d", len(key))}
	}
	return &Service{key: key}, nil
}

// Encrypt returns the token encrypted as "iv_hex:ciphertext_hex".
func (s *Service) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("plaintext cannot be empty")
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Any malformed blob or ciphertext produced with a
// different key fails with a DecryptionError.
func (s *Service) Decrypt(blob string) (string, error) {
	ivHex, ctHex, found := strings.Cut(blob, ":")
	if !found {
		return "", &domain.DecryptionError{Reason: "malformed blob, expected iv:ciphertext"}
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", &domain.DecryptionError{Reason: "invalid iv"}
	}
	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", &domain.DecryptionError{Reason: "invalid ciphertext hex"}
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", &domain.DecryptionError{Reason: "ciphertext length is not a multiple of the block size"}
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", &domain.DecryptionError{Reason: err.Error()}
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", &domain.DecryptionError{Reason: "invalid padding, wrong key or corrupted ciphertext"}
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding byte")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
