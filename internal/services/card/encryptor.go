package card

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes       = 8
	keyBytes        = 32
	pbkdf2Iters     = 4096
	maskedHeadDigit = 4
)

// Encryptor encrypts card numbers with AES-GCM. The key is derived from a
// service-wide passphrase and a per-card random salt, so equal numbers
// never share ciphertexts and a single leaked row cannot be decrypted
// without the passphrase.
type Encryptor struct {
	passphrase []byte
}

func NewEncryptor(passphrase string) *Encryptor {
	return &Encryptor{passphrase: []byte(passphrase)}
}

// NewSalt returns a fresh hex-encoded per-card salt.
func (e *Encryptor) NewSalt() (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

func (e *Encryptor) key(saltHex string) ([]byte, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	return pbkdf2.Key(e.passphrase, salt, pbkdf2Iters, keyBytes, sha256.New), nil
}

// Encrypt returns the hex-encoded nonce||ciphertext of the number under
// the key derived for the given salt.
func (e *Encryptor) Encrypt(number, saltHex string) (string, error) {
	key, err := e.key(saltHex)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(number), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt for the same salt.
func (e *Encryptor) Decrypt(encrypted, saltHex string) (string, error) {
	key, err := e.key(saltHex)
	if err != nil {
		return "", err
	}
	data, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create gcm: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short: %d bytes", len(data))
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}

// MaskNumber renders a card number as "nnnn****nnnn".
func MaskNumber(number string) string {
	if len(number) < 8 {
		return number
	}
	return number[:maskedHeadDigit] + "****" + number[len(number)-4:]
}
