package restapi

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// SecretReader 凭据来源（pkg/secretstore.Store）
type SecretReader interface {
	Get(key string) ([]byte, error)
}

// Signer intent 请求签名
type Signer interface {
	Sign(request any) (string, error)
}

// Ed25519Signer 对请求的 JSON 编码做 ed25519 签名，签名以 base64 输出
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

// NewEd25519Signer 接受 32 字节 seed 或 64 字节私钥（原始字节、hex 或 base64）
func NewEd25519Signer(raw []byte) (*Ed25519Signer, error) {
	key, err := parseSigningKey(raw)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{key: key}, nil
}

// LoadEd25519Signer 从凭据存储读取签名私钥
func LoadEd25519Signer(secrets SecretReader, name string) (*Ed25519Signer, error) {
	raw, err := secrets.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load signing key %q", name)
	}
	return NewEd25519Signer(raw)
}

func parseSigningKey(raw []byte) (ed25519.PrivateKey, error) {
	text := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	if b, err := hex.DecodeString(text); err == nil && validKeySize(len(b)) {
		return keyFromBytes(b), nil
	}
	if b, err := base64.StdEncoding.DecodeString(text); err == nil && validKeySize(len(b)) {
		return keyFromBytes(b), nil
	}
	if validKeySize(len(raw)) {
		return keyFromBytes(raw), nil
	}
	return nil, errors.New("signing key must be a 32-byte seed or 64-byte ed25519 private key")
}

func validKeySize(n int) bool {
	return n == ed25519.SeedSize || n == ed25519.PrivateKeySize
}

func keyFromBytes(b []byte) ed25519.PrivateKey {
	if len(b) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(b)
	}
	return ed25519.PrivateKey(b)
}

func (s *Ed25519Signer) Sign(request any) (string, error) {
	b, err := json.Marshal(request)
	if err != nil {
		return "", errors.Wrap(err, "encode intent request")
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(s.key, b)), nil
}

// PublicKey 用于在托管平台登记
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}
