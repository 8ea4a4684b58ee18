package session

import (
	"go.uber.org/mock/gomock"

	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

// authenticate bootstraps c with AT1/RT1 so sensitive flows start from an
// authenticated session.
func (s *ControllerSuite) authenticate(initial tokenstore.Tokens) *Controller {
	c := s.newController(initial)
	s.mockAPI.EXPECT().Me(gomock.Any(), initial.AccessToken).Return(testUser(), nil)
	_, err := c.Bootstrap(s.ctx)
	s.Require().NoError(err)
	return c
}

func (s *ControllerSuite) TestVerifyPassword() {
	s.Run("stores the security token", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().SecurityToken(gomock.Any(), "AT1", "secret1").Return("ST", nil)

		s.Require().NoError(c.VerifyPassword(s.ctx, "secret1"))
		s.Equal("ST", s.storedTokens().SecurityToken)
		pending, err := c.HasPendingSecurityToken(s.ctx)
		s.Require().NoError(err)
		s.True(pending)
	})

	s.Run("wrong password is recoverable", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().SecurityToken(gomock.Any(), "AT1", "wrong-1").
			Return("", dErrors.New(dErrors.CodeIncorrectPassword, "Incorrect password"))

		err := c.VerifyPassword(s.ctx, "wrong-1")
		s.requireCode(err, dErrors.CodeIncorrectPassword)
		s.Equal(StateAuthenticated, c.State())
		s.Equal(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"}, s.storedTokens())
		s.Zero(s.logouts)
	})

	s.Run("rejected access token re-bootstraps and reports invalid token", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().SecurityToken(gomock.Any(), "AT1", "secret1").Return("", unauthorized())
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, unauthorized())
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").Return(testPair("AT2", "RT2"), nil)
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(testUser(), nil)

		err := c.VerifyPassword(s.ctx, "secret1")
		s.requireCode(err, dErrors.CodeInvalidToken)
		s.Equal("AT2", s.storedTokens().AccessToken)
	})
}

func (s *ControllerSuite) TestChangePassword() {
	s.Run("without verification makes no request", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})

		err := c.ChangePassword(s.ctx, "newpass1")
		s.requireCode(err, dErrors.CodeMissingSecurityToken)
	})

	s.Run("consumes the security token", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1", SecurityToken: "ST"})
		s.mockAPI.EXPECT().ChangePassword(gomock.Any(), "ST", "newpass1").Return(nil)

		s.Require().NoError(c.ChangePassword(s.ctx, "newpass1"))
		s.Empty(s.storedTokens().SecurityToken)

		err := c.ChangePassword(s.ctx, "newpass2")
		s.requireCode(err, dErrors.CodeMissingSecurityToken)
	})

	s.Run("expired security token asks for verification again", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1", SecurityToken: "ST"})
		s.mockAPI.EXPECT().ChangePassword(gomock.Any(), "ST", "newpass1").
			Return(dErrors.New(dErrors.CodeForbidden, "Invalid or expired token"))

		err := c.ChangePassword(s.ctx, "newpass1")
		s.requireCode(err, dErrors.CodeInvalidToken)
		s.Equal(StateAuthenticated, c.State())
	})

	s.Run("short password is rejected locally", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1", SecurityToken: "ST"})
		err := c.ChangePassword(s.ctx, "123")
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal("ST", s.storedTokens().SecurityToken)
	})
}

func (s *ControllerSuite) TestDeactivate() {
	s.Run("without verification makes no request", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.requireCode(c.Deactivate(s.ctx), dErrors.CodeMissingSecurityToken)
	})

	s.Run("success ends the session", func() {
		c := s.authenticate(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1", SecurityToken: "ST"})
		s.mockAPI.EXPECT().Deactivate(gomock.Any(), "ST").Return(nil)

		s.Require().NoError(c.Deactivate(s.ctx))
		s.True(s.storedTokens().IsZero())
		s.Equal(StateUnauthenticated, c.State())
		s.Equal(1, s.logouts)
	})
}
