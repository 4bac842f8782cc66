package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

type AuthTestSuite struct {
	suite.Suite
	service *Service
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func (suite *AuthTestSuite) SetupTest() {
	suite.service = NewService(repository.NewMemoryStore(), logger.NewNop(), []byte("test-secret"), time.Hour)
}

func (suite *AuthTestSuite) register() string {
	user, err := suite.service.Register(context.Background(), "Alice", "alice@example.com", "correct-horse")
	suite.Require().NoError(err)

	return user.Email
}

func (suite *AuthTestSuite) TestRegister() {
	user, err := suite.service.Register(context.Background(), "Alice", "  ALICE@Example.com ", "correct-horse")
	suite.Require().NoError(err)

	suite.NotEmpty(user.ID)
	suite.Equal("alice@example.com", user.Email)
	// The stored hash never equals the plaintext.
	suite.NotEqual("correct-horse", user.PasswordHash)
	suite.NotEmpty(user.PasswordHash)
}

func (suite *AuthTestSuite) TestRegisterValidation() {
	_, err := suite.service.Register(context.Background(), "", "not-an-email", "short")
	suite.Require().Error(err)

	validationErr := errors.AsValidationError(err)
	suite.Require().NotNil(validationErr)
	suite.Contains(validationErr.Fields(), "name")
	suite.Contains(validationErr.Fields(), "email")
	suite.Contains(validationErr.Fields(), "password")
}

func (suite *AuthTestSuite) TestRegisterDuplicateEmail() {
	suite.register()

	_, err := suite.service.Register(context.Background(), "Bob", "alice@example.com", "another-pass")
	suite.True(errors.HasCode(err, errors.ErrCodeEmailInUse))
}

func (suite *AuthTestSuite) TestLoginAndAuthenticate() {
	ctx := context.Background()
	email := suite.register()

	user, token, err := suite.service.Login(ctx, email, "correct-horse")
	suite.Require().NoError(err)
	suite.NotEmpty(token)

	session, err := suite.service.Authenticate(ctx, token)
	suite.Require().NoError(err)
	suite.Equal(user.ID, session.UserID)
}

func (suite *AuthTestSuite) TestLoginRejectsBadCredentials() {
	ctx := context.Background()
	email := suite.register()

	_, _, err := suite.service.Login(ctx, email, "wrong-password")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCredentials))

	// Unknown email produces the same error code as a wrong password.
	_, _, err = suite.service.Login(ctx, "nobody@example.com", "correct-horse")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCredentials))
}

func (suite *AuthTestSuite) TestAuthenticateRejectsGarbage() {
	_, err := suite.service.Authenticate(context.Background(), "not.a.jwt")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidToken))
}

func (suite *AuthTestSuite) TestAuthenticateRejectsForeignSignature() {
	ctx := context.Background()
	email := suite.register()

	_, token, err := suite.service.Login(ctx, email, "correct-horse")
	suite.Require().NoError(err)

	stranger := NewService(repository.NewMemoryStore(), logger.NewNop(), []byte("other-secret"), time.Hour)
	_, err = stranger.Authenticate(ctx, token)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidToken))
}

func (suite *AuthTestSuite) TestLogoutRevokesToken() {
	ctx := context.Background()
	email := suite.register()

	_, token, err := suite.service.Login(ctx, email, "correct-horse")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Logout(ctx, token))

	_, err = suite.service.Authenticate(ctx, token)
	suite.True(errors.HasCode(err, errors.ErrCodeTokenRevoked))

	// Logging out twice is harmless.
	suite.NoError(suite.service.Logout(ctx, token))

	// A new login issues a distinct, working token.
	_, fresh, err := suite.service.Login(ctx, email, "correct-horse")
	suite.Require().NoError(err)
	suite.NotEqual(token, fresh)

	_, err = suite.service.Authenticate(ctx, fresh)
	suite.NoError(err)
}

func (suite *AuthTestSuite) TestExpiredToken() {
	ctx := context.Background()
	short := NewService(repository.NewMemoryStore(), logger.NewNop(), []byte("test-secret"), time.Millisecond)

	user, err := short.Register(ctx, "Alice", "alice@example.com", "correct-horse")
	suite.Require().NoError(err)

	_, token, err := short.Login(ctx, user.Email, "correct-horse")
	suite.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)

	_, err = short.Authenticate(ctx, token)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidToken))
}
