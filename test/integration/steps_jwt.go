package integration

import (
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
)

func registerJWTSteps(s *StepsContext, sc *godog.ScenarioContext) {
	sc.Step(`^I present an expired token for "([^"]*)"$`, s.iPresentAnExpiredToken)
	sc.Step(`^I present a token for "([^"]*)" signed with "([^"]*)"$`, s.iPresentATokenSignedWith)
	sc.Step(`^I present the token "([^"]*)"$`, s.iPresentTheToken)
}

// issueTestToken signs claims the way the server expects them.
func issueTestToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	return signToken(secret, userID, time.Now().Add(-time.Minute), time.Now().Add(ttl))
}

func signToken(secret []byte, userID string, issuedAt, expiresAt time.Time) (string, error) {
	_, gatewayID := identity.SplitUserID(userID)
	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Gateway: gatewayID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *StepsContext) iPresentAnExpiredToken(userID string) error {
	token, err := signToken(s.tc.JWTSecret, userID, time.Now().Add(-time.Hour), time.Now().Add(-time.Minute))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iPresentATokenSignedWith(userID, secret string) error {
	token, err := issueTestToken([]byte(secret), userID, 5*time.Minute)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iPresentTheToken(token string) error {
	s.authToken = token
	return nil
}
