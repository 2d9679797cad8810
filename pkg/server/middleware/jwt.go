package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/apierr"
	"github.com/doodlesbykumbi/gateway-admin/pkg/audit"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
)

// SecretEnv names the environment variable holding the HS256 signing secret.
const SecretEnv = "GATEWAY_JWT_SECRET"

var bearerRegex = regexp.MustCompile(`^(?i)bearer\s+(\S+)$`)

// PublicPaths are served without a token.
var PublicPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/metrics": true,
}

// JWTAuthenticator is middleware that validates HS256 bearer tokens
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTAuthenticator creates a new JWT authenticator middleware. Empty
// issuer or audience disables the corresponding claim check.
func NewJWTAuthenticator(secret []byte, issuer, audience string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret, issuer: issuer, audience: audience}
}

// NewJWTAuthenticatorFromEnv reads the signing secret from GATEWAY_JWT_SECRET.
func NewJWTAuthenticatorFromEnv(issuer, audience string) (*JWTAuthenticator, error) {
	secret := os.Getenv(SecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("%s is required when authentication is enabled", SecretEnv)
	}
	return NewJWTAuthenticator([]byte(secret), issuer, audience), nil
}

// Issue signs a token for userID. The gateway claim is set when gatewayID
// is non-empty.
func (j *JWTAuthenticator) Issue(userID, gatewayID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Gateway: gatewayID,
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Verify parses and validates a signed token.
func (j *JWTAuthenticator) Verify(tokenString string) (*identity.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	claims := &identity.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Middleware returns an HTTP middleware that validates bearer tokens and
// stores the caller's identity in the request context.
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PublicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := ClientIP(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, clientIP, "", "authorization missing")
			return
		}

		matches := bearerRegex.FindStringSubmatch(authHeader)
		if len(matches) != 2 {
			unauthorized(w, clientIP, "", "malformed authorization header")
			return
		}

		claims, err := j.Verify(matches[1])
		if err != nil {
			log.WithError(err).Debug("rejected bearer token")
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				unauthorized(w, clientIP, "", "token expired")
			default:
				unauthorized(w, clientIP, "", "invalid token")
			}
			return
		}

		id := identity.FromClaims(claims).WithRemoteIP(net.ParseIP(clientIP))
		audit.Log(audit.AuthenticateEvent{
			UserID:   id.UserID,
			ClientIP: clientIP,
			Success:  true,
		})

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

var trustedProxies atomic.Pointer[[]*net.IPNet]

// SetTrustedProxies replaces the peers, given as IPs or CIDRs, whose
// X-Forwarded-For header ClientIP believes.
func SetTrustedProxies(proxies []string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return fmt.Errorf("invalid trusted proxy %q", p)
			}
			if ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, ipNet)
	}
	trustedProxies.Store(&nets)
	return nil
}

func isTrustedProxy(ip net.IP) bool {
	nets := trustedProxies.Load()
	if nets == nil || ip == nil {
		return false
	}
	for _, n := range *nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the host part of the connection's remote address. When
// that peer is a trusted proxy, X-Forwarded-For is walked from the right and
// the first hop that is not a trusted proxy wins.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isTrustedProxy(net.ParseIP(host)) {
		return host
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		ip := net.ParseIP(hop)
		if ip == nil {
			break
		}
		host = hop
		if !isTrustedProxy(ip) {
			break
		}
	}
	return host
}

func unauthorized(w http.ResponseWriter, clientIP, userID, message string) {
	audit.Log(audit.AuthenticateEvent{
		UserID:       userID,
		ClientIP:     clientIP,
		Success:      false,
		ErrorMessage: message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="gateway-admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(apierr.NewBody(&apierr.AuthorizationError{Message: message}))
}
