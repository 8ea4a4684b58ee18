package session

import (
	"context"
	"fmt"

	"go.uber.org/mock/gomock"

	"addressbook/internal/cache"
	"addressbook/internal/platform/config"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

func (s *ControllerSuite) TestBootstrap() {
	s.Run("no tokens makes no request", func() {
		c := s.newController(tokenstore.Tokens{})

		user, err := c.Bootstrap(s.ctx)
		s.Nil(user)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
		s.Equal(StateUnauthenticated, c.State())
		s.Zero(s.logouts)

		_, err = c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
		s.Zero(s.logouts)
	})

	s.Run("valid access token confirms identity", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil)

		user, err := c.Bootstrap(s.ctx)
		s.Require().NoError(err)
		s.Equal("alice", user.DisplayName)
		s.Equal(StateAuthenticated, c.State())
		s.Same(user, c.User())
	})

	s.Run("rejected access token refreshes once and retries once", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "stale", RefreshToken: "RT1"})
		gomock.InOrder(
			s.mockAPI.EXPECT().Me(gomock.Any(), "stale").Return(nil, unauthorized()).Times(1),
			s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").
				Return(models.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil).Times(1),
			s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(testUser(), nil).Times(1),
		)

		user, err := c.Bootstrap(s.ctx)
		s.Require().NoError(err)
		s.NotNil(user)
		s.Equal(tokenstore.Tokens{AccessToken: "AT2", RefreshToken: "RT2"}, s.storedTokens())
	})

	s.Run("refresh token only refreshes first", func() {
		c := s.newController(tokenstore.Tokens{RefreshToken: "RT1"})
		gomock.InOrder(
			s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").
				Return(models.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil).Times(1),
			s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(testUser(), nil).Times(1),
		)

		_, err := c.Bootstrap(s.ctx)
		s.Require().NoError(err)
		s.Equal(StateAuthenticated, c.State())
	})

	s.Run("rejected identity after refresh is not retried again", func() {
		c := s.newController(tokenstore.Tokens{RefreshToken: "RT1"})
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").
			Return(models.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil).Times(1)
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(nil, unauthorized()).Times(1)

		_, err := c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
		s.True(s.storedTokens().IsZero())
		s.Equal(StateUnauthenticated, c.State())
	})

	s.Run("failed refresh clears tokens and notifies logout", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "stale", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().Me(gomock.Any(), "stale").Return(nil, unauthorized())
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").
			Return(models.TokenPair{}, dErrors.New(dErrors.CodeForbidden, "Invalid or expired token"))

		_, err := c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
		s.True(s.storedTokens().IsZero())
		s.Equal(1, s.logouts)
	})

	s.Run("access token without refresh token is not refreshed", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "stale"})
		s.mockAPI.EXPECT().Me(gomock.Any(), "stale").Return(nil, unauthorized())

		_, err := c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
	})
}

func (s *ControllerSuite) TestCallerCancellation() {
	// cancelledCall ends the caller's context the way an interrupted HTTP
	// request does and returns the resulting transport error.
	cancelledCall := func(cancel context.CancelFunc) error {
		cancel()
		return dErrors.Wrap(fmt.Errorf("Get \"/auth/me\": %w", context.Canceled), dErrors.CodeTransport, "no response from server")
	}

	s.Run("during identity check keeps tokens", func() {
		initial := tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"}
		c := s.newController(initial)
		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").DoAndReturn(func(context.Context, string) (*models.User, error) {
			return nil, cancelledCall(cancel)
		})

		_, err := c.Bootstrap(ctx)
		s.ErrorIs(err, context.Canceled)
		s.Equal(initial, s.storedTokens())
		s.Equal(StateUnauthenticated, c.State())
		s.Zero(s.logouts)
	})

	s.Run("during refresh keeps tokens", func() {
		initial := tokenstore.Tokens{RefreshToken: "RT1"}
		c := s.newController(initial)
		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").DoAndReturn(func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{}, cancelledCall(cancel)
		})

		_, err := c.Bootstrap(ctx)
		s.ErrorIs(err, context.Canceled)
		s.Equal(initial, s.storedTokens())
		s.Zero(s.logouts)
	})

	s.Run("during recovery keeps the authenticated state", func() {
		initial := tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"}
		c := s.newController(initial)
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil)
		_, err := c.Bootstrap(s.ctx)
		s.Require().NoError(err)

		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, unauthorized())
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").DoAndReturn(func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{}, cancelledCall(cancel)
		})

		s.ErrorIs(c.HandleRejectedToken(ctx, "AT1"), context.Canceled)
		s.Equal(initial, s.storedTokens())
		s.Equal(StateAuthenticated, c.State())
		s.Zero(s.logouts)
	})
}

func (s *ControllerSuite) TestTransportPolicy() {
	s.Run("default policy treats an unreachable backend as rejection", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, transportDown())
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").Return(models.TokenPair{}, transportDown())

		_, err := c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
		s.True(s.storedTokens().IsZero())
	})

	s.Run("retry_later keeps tokens", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"},
			WithTransportPolicy(config.PolicyRetryLater))
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, transportDown())

		_, err := c.Bootstrap(s.ctx)
		s.requireCode(err, dErrors.CodeTransport)
		s.Equal(StateUnreachable, c.State())
		s.Equal("AT1", s.storedTokens().AccessToken)
		s.Zero(s.logouts)
	})

	s.Run("unknown policy keeps the default", func() {
		c := s.newController(tokenstore.Tokens{}, WithTransportPolicy("panic"))
		s.Equal(config.PolicyDeauthenticate, c.transportPolicy)
	})
}

func (s *ControllerSuite) TestCurrentUserIsCached() {
	c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
	s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil).Times(1)

	first, err := c.CurrentUser(s.ctx)
	s.Require().NoError(err)
	second, err := c.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.Same(first, second)
}

func (s *ControllerSuite) TestTokenChangeInvalidatesUser() {
	c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
	s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil)
	_, err := c.Bootstrap(s.ctx)
	s.Require().NoError(err)
	_, ok := s.cache.Get(userKey)
	s.Require().True(ok)

	s.Run("security token alone does not invalidate", func() {
		s.Require().NoError(s.tokens.Save(s.ctx, tokenstore.Tokens{SecurityToken: "ST"}))
		_, ok := s.cache.Get(userKey)
		s.True(ok)
	})

	s.Run("new access token invalidates", func() {
		s.Require().NoError(s.tokens.Save(s.ctx, tokenstore.Tokens{AccessToken: "AT2"}))
		_, ok := s.cache.Get(userKey)
		s.False(ok)
	})
}

func (s *ControllerSuite) TestAccessToken() {
	s.Run("bootstraps when not authenticated", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(testUser(), nil).Times(1)

		token, err := c.AccessToken(s.ctx)
		s.Require().NoError(err)
		s.Equal("AT1", token)

		token, err = c.AccessToken(s.ctx)
		s.Require().NoError(err)
		s.Equal("AT1", token)
	})

	s.Run("fails without tokens", func() {
		c := s.newController(tokenstore.Tokens{})
		_, err := c.AccessToken(s.ctx)
		s.requireCode(err, dErrors.CodeNotAuthenticated)
	})
}

func (s *ControllerSuite) TestHandleRejectedToken() {
	s.Run("skips when the token was already replaced", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT2", RefreshToken: "RT2"})
		s.NoError(c.HandleRejectedToken(s.ctx, "AT1"))
	})

	s.Run("refreshes the rejected token", func() {
		c := s.newController(tokenstore.Tokens{AccessToken: "AT1", RefreshToken: "RT1"})
		s.cache.Set(cache.Key{Resource: cache.ResourceUser}, testUser())
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT1").Return(nil, unauthorized())
		s.mockAPI.EXPECT().RefreshToken(gomock.Any(), "RT1").
			Return(models.TokenPair{AccessToken: "AT2", RefreshToken: "RT2"}, nil)
		s.mockAPI.EXPECT().Me(gomock.Any(), "AT2").Return(testUser(), nil)

		s.Require().NoError(c.HandleRejectedToken(s.ctx, "AT1"))
		s.Equal("AT2", s.storedTokens().AccessToken)
	})
}
