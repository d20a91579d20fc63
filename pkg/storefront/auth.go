package storefront

import (
	"context"
	"log"

	"github.com/go-faster/errors"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

// Substrings the commerce API puts in its plain-text success replies.
// TODO: drop once login and registration always answer with an AuthResponse object.
const (
	LoginSuccessText    = "Connexion réussie"
	RegisterSuccessText = "Inscription réussie"
)

// Authenticate logs in. It returns the session user, or nil when the server
// confirmed success in plain text without handing out a user and token.
func (c *Controller) Authenticate(ctx context.Context, credentials models.Credentials) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "storefront.Authenticate")
	defer func() { endSpan(span, err) }()

	res, err := c.backend.Login(ctx, credentials)
	if err != nil {
		return nil, tag(ErrAuthFailed, err)
	}
	return c.establish(ctx, res, LoginSuccessText, "Login failed", "Logged in successfully")
}

// Register creates an account, with the same reply handling as Authenticate
func (c *Controller) Register(ctx context.Context, registration models.Registration) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "storefront.Register")
	defer func() { endSpan(span, err) }()

	res, err := c.backend.CreateUser(ctx, registration)
	if err != nil {
		return nil, tag(ErrAuthFailed, err)
	}
	return c.establish(ctx, res, RegisterSuccessText, "Registration failed", "Registered successfully")
}

// establish matches the two reply shapes and, on a structured success, stores user and token together
func (c *Controller) establish(ctx context.Context, res api.Result, sentinel, failure, success string) (*models.User, error) {
	if text, ok := res.Text(); ok {
		if !res.Contains(sentinel) {
			return nil, tag(ErrAuthFailed, errors.New(text))
		}
		c.notifier.Notify(NoticeSuccess, success)
		return nil, nil
	}

	var reply models.AuthResponse
	if err := res.Decode(&reply); err != nil || res.IsNull() {
		return nil, tag(ErrAuthFailed, errors.New(failure))
	}
	if !reply.Success {
		msg := reply.Message
		if msg == "" {
			msg = failure
		}
		return nil, tag(ErrAuthFailed, errors.New(msg))
	}
	if reply.User == nil || reply.Token == "" {
		log.Printf("Auth reply reported success without user and token; session stays anonymous")
		c.notifier.Notify(NoticeSuccess, success)
		return nil, nil
	}

	if err := c.saveSession(ctx, reply.User, reply.Token); err != nil {
		return nil, err
	}

	c.notifier.Notify(NoticeSuccess, success)
	c.notifier.Render(ViewSession)
	if reply.User.IsAdmin() {
		c.notifier.Render(ViewAdmin)
	}
	u := *reply.User
	return &u, nil
}

// saveSession persists user and token, restoring the previous token if the user cannot be stored
func (c *Controller) saveSession(ctx context.Context, user *models.User, token string) error {
	prev, _, err := c.backend.StoredToken(ctx)
	if err != nil {
		return errors.Wrap(err, "read token")
	}
	if err := c.backend.SetToken(ctx, token); err != nil {
		return errors.Wrap(err, "store token")
	}
	if err := storage.SetJSON(ctx, c.scopes.Session, storage.KeyCurrentUser, user); err != nil {
		if rbErr := c.backend.SetToken(ctx, prev); rbErr != nil {
			log.Printf("Error rolling back token after failed session save: %v", rbErr)
		}
		return errors.Wrap(err, "store user")
	}

	u := *user
	c.mu.Lock()
	c.user = &u
	c.mu.Unlock()
	return nil
}
