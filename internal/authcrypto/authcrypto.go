// Package authcrypto implements the AES-CBC/PKCS#5 challenge
// encryption used by Janus's Auth handshake.
package authcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/pkg/errors"
)

// EncryptChallenge encrypts challenge under key using AES-CBC with
// PKCS#5 padding, prepending a freshly randomised IV to the returned
// ciphertext.
func EncryptChallenge(key, challenge []byte) ([]byte, error) {
	block, err := aes.NewCipher(normalizeKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "authcrypto: new cipher")
	}

	padded := pkcs5Pad(challenge, block.BlockSize())
	iv := make([]byte, block.BlockSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "authcrypto: random iv")
	}

	out := make([]byte, len(iv)+len(padded))
	copy(out, iv)
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out[len(iv):], padded)
	return out, nil
}

// DecryptChallenge reverses EncryptChallenge, returning the original
// unpadded challenge bytes.
func DecryptChallenge(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(normalizeKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "authcrypto: new cipher")
	}
	blockSize := block.BlockSize()
	if len(ciphertext) < blockSize || (len(ciphertext)-blockSize)%blockSize != 0 {
		return nil, errors.New("authcrypto: malformed ciphertext length")
	}

	iv := ciphertext[:blockSize]
	body := ciphertext[blockSize:]
	out := make([]byte, len(body))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(out, body)

	return pkcs5Unpad(out)
}

// normalizeKey derives a valid AES key size (16/24/32 bytes) from an
// arbitrary-length workspace secret by truncating or zero-padding to
// 32 bytes (AES-256), so operators can configure any passphrase
// length without the handshake failing outright.
func normalizeKey(key []byte) []byte {
	const size = 32
	out := make([]byte, size)
	copy(out, key)
	return out
}

func pkcs5Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs5Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("authcrypto: empty padded data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, errors.New("authcrypto: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("authcrypto: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}
