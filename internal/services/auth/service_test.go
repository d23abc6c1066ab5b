package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/factionboard/internal/dependencies/mocks"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service, err = New(s.clock, Config{
		PasswordHash:    string(hash),
		TokenSecret:     []byte("test-signing-key"),
		SessionDuration: time.Hour,
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestLoginSucceeds() {
	session, err := s.service.Login("hunter2")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login("hunter3")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login("")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestTokenValidates() {
	session, err := s.service.Login("hunter2")
	s.Require().NoError(err)

	validated, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal(session.ExpiresAt, validated.ExpiresAt)
}

func (s *ServiceSuite) TestTokenExpires() {
	session, err := s.service.Login("hunter2")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestGarbageTokenRejected() {
	_, err := s.service.ValidateToken("not-a-token")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestTokenSignedWithOtherKeyRejected() {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(forged)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestUnsignedTokenRejected() {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(forged)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestDisabledWithoutPassword() {
	service, err := New(s.clock, DefaultConfig())
	s.Require().NoError(err)

	s.False(service.Enabled())
	_, err = service.Login("anything")
	s.ErrorIs(err, ErrAdminDisabled)
	_, err = service.ValidateToken("anything")
	s.ErrorIs(err, ErrAdminDisabled)
}

func (s *ServiceSuite) TestRequiresSigningKey() {
	_, err := New(s.clock, Config{PasswordHash: "$2a$04$abc"})
	s.Error(err)
}

func (s *ServiceSuite) TestHashPasswordVerifies() {
	hash, err := HashPassword("correct horse")
	s.Require().NoError(err)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
}
