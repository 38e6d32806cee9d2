package services

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/config"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

const (
	// verifyCacheTTL caps how long a verified token stays cached in Redis,
	// independent of the token's own expiry.
	verifyCacheTTL = 15 * time.Minute
	// keyRefreshInterval forces a JWKS refetch even when every kid resolves.
	keyRefreshInterval = time.Hour
)

// IdentityService verifies provider-issued ID tokens: RS256 signature
// against the provider JWKS, audience check, verified email claim. The JWKS
// fetch runs behind a circuit breaker; successful verifications are cached
// in Redis keyed by token hash.
type IdentityService struct {
	jwksURL  string
	audience string
	redis    *redis.Client
	cb       *gobreaker.CircuitBreaker

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

var _ ports.IdentityVerifier = (*IdentityService)(nil)

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type providerJWKS struct {
	Keys []struct {
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func NewIdentityService(jwksURL, audience string, redisClient *redis.Client) *IdentityService {
	return &IdentityService{
		jwksURL:  jwksURL,
		audience: audience,
		redis:    redisClient,
		cb:       config.NewCircuitBreaker("Identity-JWKS"),
		keys:     make(map[string]*rsa.PublicKey),
	}
}

// Verify validates the bearer token and returns the verified email. Any
// failure is terminal for the request: domain.ErrUnauthenticated, no retries.
func (s *IdentityService) Verify(ctx context.Context, bearerToken string) (string, error) {
	if bearerToken == "" {
		return "", domain.ErrUnauthenticated
	}

	cacheKey := "idtoken:" + tokenHash(bearerToken)
	if s.redis != nil {
		if email, err := s.redis.Get(ctx, cacheKey).Result(); err == nil && email != "" {
			return email, nil
		}
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(bearerToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		kid, _ := t.Header["kid"].(string)
		return s.keyForKid(ctx, kid)
	})
	if err != nil || !token.Valid {
		log.Printf("identity: token rejected: %v", err)
		return "", domain.ErrUnauthenticated
	}

	if s.audience != "" {
		if !containsAudience(claims.Audience, s.audience) {
			log.Printf("identity: audience mismatch")
			return "", domain.ErrUnauthenticated
		}
	}

	if claims.Email == "" || !claims.EmailVerified {
		return "", domain.ErrUnauthenticated
	}

	if s.redis != nil {
		ttl := verifyCacheTTL
		if claims.ExpiresAt != nil {
			if until := time.Until(claims.ExpiresAt.Time); until < ttl {
				ttl = until
			}
		}
		if ttl > 0 {
			if err := s.redis.Set(ctx, cacheKey, claims.Email, ttl).Err(); err != nil {
				log.Printf("identity: cache write failed: %v", err)
			}
		}
	}

	return claims.Email, nil
}

// keyForKid returns the provider key for the kid, refetching the JWKS when
// the kid is unknown or the cached set is stale.
func (s *IdentityService) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := time.Since(s.fetchedAt) < keyRefreshInterval
	s.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := s.refreshKeys(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok = s.keys[kid]
	if !ok {
		return nil, errors.New("signing key not found")
	}
	return key, nil
}

func (s *IdentityService) refreshKeys(ctx context.Context) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.jwksURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var jwks providerJWKS
		if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
			return nil, err
		}

		keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
		for _, k := range jwks.Keys {
			nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
			if err != nil {
				continue
			}
			eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
			if err != nil {
				continue
			}

			var e int
			for _, b := range eBytes {
				e = e<<8 + int(b)
			}

			keys[k.Kid] = &rsa.PublicKey{
				N: new(big.Int).SetBytes(nBytes),
				E: e,
			}
		}

		s.mu.Lock()
		s.keys = keys
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// SetKeyForTest installs a verification key directly, bypassing the JWKS
// endpoint.
func (s *IdentityService) SetKeyForTest(kid string, key *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[kid] = key
	s.fetchedAt = time.Now()
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
