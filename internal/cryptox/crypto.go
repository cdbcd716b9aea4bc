// Package cryptox holds the key derivation and AEAD helpers used for login
// verifiers and for encrypting memory item content.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
)

// ErrMalformedCiphertext is returned by OpenString for input it did not produce.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// MakeVerifier returns the value the server stores to check a derived key.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with salt using argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// EncryptEntry serializes entry to JSON and encrypts it with AES-GCM under
// key (16, 24 or 32 bytes). A fresh 12-byte nonce is returned alongside.
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// DecryptEntry reverses EncryptEntry and unmarshals the JSON into v.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}

// SealString encrypts s under a key derived from passphrase with a random
// salt. The result is base64(salt | nonce | ciphertext).
func SealString(s string, passphrase []byte) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := EncryptEntry(s, key)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// OpenString decrypts a value produced by SealString.
func OpenString(sealed string, passphrase []byte) (string, error) {
	buf, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(buf) <= saltSize+nonceSize {
		return "", ErrMalformedCiphertext
	}
	salt := buf[:saltSize]
	nonce := buf[saltSize : saltSize+nonceSize]
	ciphertext := buf[saltSize+nonceSize:]

	key := DeriveMasterKey(passphrase, salt)
	defer common.WipeByteArray(key)

	var s string
	if err := DecryptEntry(ciphertext, nonce, key, &s); err != nil {
		return "", err
	}
	return s, nil
}
