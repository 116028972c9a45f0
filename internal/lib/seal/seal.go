// Package seal реализует прозрачное шифрование текстовых полей (AES-GCM).
//
// Используется для хранения заголовков и содержимого wiki-документов
// в зашифрованном виде. Зашифрованное значение имеет префикс версии "v1.",
// по которому можно отличить его от старых незашифрованных строк.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const version = "v1"

// ErrInvalidCiphertext возвращается, когда значение не удалось расшифровать.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Codec шифрует и расшифровывает строки симметричным ключом.
type Codec struct {
	aead cipher.AEAD
}

// New создает Codec из секретного ключа произвольной длины.
// Рабочий 256-битный ключ выводится через sha256.
func New(secretKey []byte) (*Codec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("encryption key is required")
	}

	derivedKey := deriveKey(secretKey)
	block, err := aes.NewCipher(derivedKey[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return &Codec{aead: aead}, nil
}

func deriveKey(secretKey []byte) [32]byte {
	label := []byte("family-hub.wiki." + version)
	material := make([]byte, 0, len(label)+len(secretKey))
	material = append(material, label...)
	material = append(material, secretKey...)
	return sha256.Sum256(material)
}

// Encrypt шифрует строку и возвращает значение вида "v1.<base64(nonce||ciphertext)>".
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if c == nil || c.aead == nil {
		return "", errors.New("codec is not initialized")
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	payload := make([]byte, 0, len(nonce)+len(ciphertext))
	payload = append(payload, nonce...)
	payload = append(payload, ciphertext...)

	return version + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decrypt расшифровывает значение, созданное Encrypt.
func (c *Codec) Decrypt(value string) (string, error) {
	if c == nil || c.aead == nil {
		return "", errors.New("codec is not initialized")
	}
	if !IsEncrypted(value) {
		return "", ErrInvalidCiphertext
	}

	_, encodedPayload, _ := strings.Cut(value, ".")
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	nonceSize := c.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := c.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}

// DecryptOrRaw расшифровывает значение, а при неудаче возвращает его как есть.
// Нужно для чтения старых строк, записанных до включения шифрования.
func (c *Codec) DecryptOrRaw(value string) string {
	plaintext, err := c.Decrypt(value)
	if err != nil {
		return value
	}
	return plaintext
}

// IsEncrypted определяет по префиксу версии, зашифровано ли значение.
func IsEncrypted(value string) bool {
	ver, payload, found := strings.Cut(value, ".")
	return found && ver == version && payload != ""
}
