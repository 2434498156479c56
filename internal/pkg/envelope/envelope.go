// Package envelope implements the hybrid encryption scheme used for
// role-scoped order fields. Each ciphertext is a self-contained JSON envelope:
// the payload is sealed with a fresh AES-256-GCM data key, and the data key is
// wrapped with the recipient's RSA public key (OAEP, SHA-256). Only the holder
// of the matching private key can open the envelope.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"

	"orderchain/internal/pkg/errs"
)

const (
	dataKeySize = 32
	ivSize      = 16
	tagSize     = 16
)

// Envelope is the wire form of a sealed payload. All fields are base64.
// The GCM auth tag travels separately from the ciphertext so the envelope
// stays compatible with readers that feed key, iv, tag and data to their
// cipher individually.
type Envelope struct {
	IV            string `json:"iv"`
	AuthTag       string `json:"authTag"`
	EncryptedKey  string `json:"encryptedKey"`
	EncryptedData string `json:"encryptedData"`
}

// Encrypt seals plaintext for the holder of publicKeyPEM and returns the JSON
// envelope. A fresh data key is drawn per call, so sealing the same plaintext
// twice yields different ciphertexts.
func Encrypt(plaintext []byte, publicKeyPEM string) (string, error) {
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return "", err
	}

	// RSA-OAEP can wrap at most modulusSize - 2*hashSize - 2 bytes.
	limit := pub.Size() - 2*sha256.Size - 2
	if dataKeySize > limit {
		return "", errs.NewEncryptionSizeLimitError(dataKeySize, limit)
	}

	dataKey := make([]byte, dataKeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return "", fmt.Errorf("generate data key: %w", err)
	}
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, dataKey, nil)
	if err != nil {
		return "", fmt.Errorf("wrap data key: %w", err)
	}

	out, err := json.Marshal(Envelope{
		IV:            base64.StdEncoding.EncodeToString(iv),
		AuthTag:       base64.StdEncoding.EncodeToString(tag),
		EncryptedKey:  base64.StdEncoding.EncodeToString(wrappedKey),
		EncryptedData: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(out), nil
}

// Decrypt opens a JSON envelope with the recipient's private key. Every
// failure mode, from malformed JSON to a bad auth tag, comes back as a
// DecryptionError and never yields partial plaintext.
func Decrypt(envelopeJSON, privateKeyPEM string) ([]byte, error) {
	priv, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal([]byte(envelopeJSON), &env); err != nil {
		return nil, errs.NewDecryptionErrorWithCause("envelope is not valid JSON", err)
	}

	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("iv is not valid base64", err)
	}
	if len(iv) != ivSize {
		return nil, errs.NewDecryptionError("iv has the wrong length")
	}
	tag, err := base64.StdEncoding.DecodeString(env.AuthTag)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("authTag is not valid base64", err)
	}
	wrappedKey, err := base64.StdEncoding.DecodeString(env.EncryptedKey)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("encryptedKey is not valid base64", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.EncryptedData)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("encryptedData is not valid base64", err)
	}

	dataKey, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrappedKey, nil)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("data key does not unwrap with this key", err)
	}
	if len(dataKey) != dataKeySize {
		return nil, errs.NewDecryptionError("unwrapped data key has the wrong length")
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("cipher init failed", err)
	}
	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("authentication failed", err)
	}
	return plaintext, nil
}

// GenerateKeyPair creates a 2048-bit RSA keypair and returns both halves in
// PEM form (PKIX public key, PKCS #8 private key).
func GenerateKeyPair() (publicKeyPEM, privateKeyPEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", fmt.Errorf("generate keypair: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", fmt.Errorf("encode private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("encode public key: %w", err)
	}

	privateKeyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
	publicKeyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	return publicKeyPEM, privateKeyPEM, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errs.NewValueIsInvalidError("publicKeyPEM: not PEM encoded")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("publicKeyPEM", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("publicKeyPEM",
			errors.New("not an RSA public key"))
	}
	return pub, nil
}

func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errs.NewDecryptionError("privateKeyPEM: not PEM encoded")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errs.NewDecryptionErrorWithCause("privateKeyPEM", err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errs.NewDecryptionError("privateKeyPEM is not an RSA key")
	}
	return priv, nil
}
