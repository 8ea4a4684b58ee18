package session

import (
	"go.uber.org/mock/gomock"

	"addressbook/internal/cache"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

func (s *ControllerSuite) TestLogin() {
	s.Run("stores tokens and confirms identity with the new access token", func() {
		c := s.newController(tokenstore.Tokens{})
		gomock.InOrder(
			s.mockAPI.EXPECT().Login(gomock.Any(), "alice@example.com", "secret1").
				Return(models.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, nil),
			s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil),
		)

		user, err := c.Login(s.ctx, " Alice@Example.com ", "secret1")
		s.Require().NoError(err)
		s.Equal("alice@example.com", user.Email)
		s.Equal(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"}, s.storedTokens())
		s.Equal(StateAuthenticated, c.State())
		s.Len(s.logins, 1)
	})

	s.Run("drops a stale security token", func() {
		c := s.newController(tokenstore.Tokens{SecurityToken: "old-ST"})
		s.mockAPI.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, nil)
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil)

		_, err := c.Login(s.ctx, "alice@example.com", "secret1")
		s.Require().NoError(err)
		s.Empty(s.storedTokens().SecurityToken)
	})

	s.Run("invalid credentials leave the store untouched", func() {
		c := s.newController(tokenstore.Tokens{})
		s.mockAPI.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.TokenPair{}, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials"))

		_, err := c.Login(s.ctx, "alice@example.com", "wrong-pass")
		s.requireCode(err, dErrors.CodeInvalidCredentials)
		s.True(s.storedTokens().IsZero())
		s.Empty(s.logins)
	})

	s.Run("rejects malformed email before any request", func() {
		c := s.newController(tokenstore.Tokens{})
		_, err := c.Login(s.ctx, "not-an-email", "secret1")
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *ControllerSuite) TestRegisterAndActivate() {
	s.Run("register does not log in", func() {
		c := s.newController(tokenstore.Tokens{})
		s.mockAPI.EXPECT().Register(gomock.Any(), &models.RegisterRequest{
			Email: "alice@example.com", Password: "secret1", DisplayName: "alice",
		}).Return(testUser(), nil)

		user, err := c.Register(s.ctx, "alice@example.com", "secret1", " alice ")
		s.Require().NoError(err)
		s.NotNil(user)
		s.True(s.storedTokens().IsZero())
		s.Equal(StateUnauthenticated, c.State())
	})

	s.Run("register validates the password length", func() {
		c := s.newController(tokenstore.Tokens{})
		_, err := c.Register(s.ctx, "alice@example.com", "123", "alice")
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("activate passes credentials through", func() {
		c := s.newController(tokenstore.Tokens{})
		s.mockAPI.EXPECT().Activate(gomock.Any(), "alice@example.com", "secret1").Return(nil)
		s.NoError(c.Activate(s.ctx, "alice@example.com", "secret1"))
	})
}

func (s *ControllerSuite) TestLogout() {
	s.Run("clears tokens even when the server call fails", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1", SecurityToken: "ST"})
		s.cache.Set(cache.Key{Resource: cache.ResourceContacts, Params: "page=0"}, "page")
		s.mockAPI.EXPECT().Logout(gomock.Any(), "AT1").Return(transportDown())

		s.NoError(c.Logout(s.ctx))
		s.True(s.storedTokens().IsZero())
		s.Equal(0, s.cache.Len())
		s.Equal(StateUnauthenticated, c.State())
		s.Equal(1, s.logouts)
	})

	s.Run("without a session makes no request and notifies nothing", func() {
		c := s.newController(tokenstore.Tokens{})
		s.NoError(c.Logout(s.ctx))
		s.Zero(s.logouts)
	})

	s.Run("refresh token alone still notifies", func() {
		c := s.newController(tokenstore.Tokens{RefreshToken: "RT1"})
		s.NoError(c.Logout(s.ctx))
		s.True(s.storedTokens().IsZero())
		s.Equal(1, s.logouts)
	})
}

func (s *ControllerSuite) TestChangeDisplayName() {
	c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
	s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil)
	_, err := c.Bootstrap(s.ctx)
	s.Require().NoError(err)

	s.Run("updates identity", func() {
		renamed := testUser()
		renamed.DisplayName = "alice_2"
		s.mockAPI.EXPECT().ChangeDisplayName(gomock.Any(), "AT1", &models.DisplayNameRequest{DisplayName: "alice_2"}).
			Return(renamed, nil)

		user, err := c.ChangeDisplayName(s.ctx, "alice_2")
		s.Require().NoError(err)
		s.Equal("alice_2", user.DisplayName)
		s.Equal("alice_2", c.User().DisplayName)
		_, cached := s.cache.Get(userKey)
		s.False(cached)
	})

	s.Run("invalid name never reaches the backend", func() {
		_, err := c.ChangeDisplayName(s.ctx, "a!")
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("rejected access token re-bootstraps and reports invalid token", func() {
		gomock.InOrder(
			s.mockAPI.EXPECT().ChangeDisplayName(gomock.Any(), "AT1", &models.DisplayNameRequest{DisplayName: "alice_3"}).
				Return(nil, unauthorized()),
			s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, unauthorized()),
			s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").Return(testPair("AT2", "RT2"), nil),
			s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(testUser(), nil),
		)

		_, err := c.ChangeDisplayName(s.ctx, "alice_3")
		s.requireCode(err, dErrors.CodeInvalidToken)
		s.Equal("AT2", s.storedTokens().AccessToken)
		s.Equal(StateAuthenticated, c.State())
		s.Zero(s.logouts)
	})
}
