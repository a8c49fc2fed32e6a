// Package cryptox implements the per-record encryption engine that protects
// stored secrets at rest. A key is derived with PBKDF2 from the process-wide
// secret and a per-record salt; values are encrypted with AES-256-CBC under
// a fresh random IV per call and encoded as "hex(iv):hex(ciphertext)".
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/passvault-io/passvault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes in a record salt. Salts are
	// stored hex-encoded, so the string form is twice this length.
	SaltSize = 16

	keySize       = 32 // AES-256
	kdfIterations = 100_000
)

// GenerateSalt returns a new random per-record salt as a 32-character hex
// string. A salt is generated once when a record is created and must never
// change afterwards.
func GenerateSalt() string {
	return common.MakeRandHexString(SaltSize)
}

// Engine encrypts and decrypts record fields. The secret is the single
// process-wide value from configuration; it is injected here rather than
// read from a global so multiple secrets can coexist in one process.
type Engine struct {
	secret []byte
}

// NewEngine constructs an Engine around the process-wide secret.
func NewEngine(secret string) *Engine {
	return &Engine{secret: []byte(secret)}
}

// deriveKey stretches the secret into an AES-256 key bound to the salt.
// Same parameters on both encrypt and decrypt paths.
func (e *Engine) deriveKey(salt string) []byte {
	return pbkdf2.Key(e.secret, []byte(salt), kdfIterations, keySize, sha256.New)
}

// Encrypt encrypts plaintext under the key derived from the engine secret
// and salt. An empty plaintext returns an empty string so that "no secret
// set" round-trips without producing spurious ciphertext. Each call draws a
// fresh IV, so encrypting the same value twice yields different output.
func (e *Engine) Encrypt(plaintext string, salt string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	key := e.deriveKey(salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	iv := common.GenerateRandByteArray(aes.BlockSize)
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. An empty ciphertext returns an empty string.
// Input that does not match the iv:data hex-pair shape yields
// common.ErrMalformedCiphertext; a padding failure after decryption (wrong
// key or tampered data) yields common.ErrDecryptionFailed. Neither case
// ever returns partial plaintext.
func (e *Engine) Decrypt(ciphertext string, salt string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	ivHex, dataHex, found := strings.Cut(ciphertext, ":")
	if !found || ivHex == "" || dataHex == "" {
		return "", common.ErrMalformedCiphertext
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", common.ErrMalformedCiphertext
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", common.ErrMalformedCiphertext
	}

	key := e.deriveKey(salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, data)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, common.ErrDecryptionFailed
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, common.ErrDecryptionFailed
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, common.ErrDecryptionFailed
		}
	}
	return data[:len(data)-n], nil
}
