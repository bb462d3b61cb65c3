// Package auth resolves RS256 verification keys from the identity provider's
// JWKS endpoint.
package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrKeyNotFound = errors.New("jwks: key not found")

type JWKS struct {
	Keys []JSONWebKey `json:"keys"`
}

type JSONWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Provider caches keys by kid and refetches on a miss, at most once a
// minute.
type Provider struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	url       string
	client    *http.Client
	refreshed time.Time
}

func NewProvider(jwksURL string, client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{
		url:    jwksURL,
		client: client,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// KeyFunc is a jwt.Keyfunc for RS256 tokens.
func (p *Provider) KeyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("kid header not found")
	}
	return p.GetKey(kid)
}

func (p *Provider) GetKey(kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, exists := p.keys[kid]
	p.mu.RUnlock()
	if exists {
		return key, nil
	}

	if err := p.fetchKeys(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	key, exists = p.keys[kid]
	p.mu.RUnlock()
	if !exists {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

func (p *Provider) fetchKeys() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.refreshed) < time.Minute && len(p.keys) > 0 {
		return nil
	}
	if p.url == "" {
		return fmt.Errorf("jwks: no endpoint configured")
	}

	resp, err := p.client.Get(p.url)
	if err != nil {
		return fmt.Errorf("jwks: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks: fetch: status %d", resp.StatusCode)
	}

	var set JWKS
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("jwks: decode: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := k.PublicKey()
		if err != nil {
			return fmt.Errorf("jwks: key %s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	p.keys = keys
	p.refreshed = time.Now()
	return nil
}

func (k *JSONWebKey) PublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
