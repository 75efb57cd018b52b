// Package cli wires the commands behind the qwicbook binary.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/qwicbook/qwicbook-pro/internal/config"
	"github.com/qwicbook/qwicbook-pro/internal/session"
	"github.com/qwicbook/qwicbook-pro/internal/upstream"
	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

// Context carries the shared dependencies into each command's Run.
type Context struct {
	Config   *config.Config
	Logger   *logging.Logger
	Client   *upstream.Client
	Sessions session.Store
}

// ensureSession returns the persisted session, resolving and saving a
// new one from the configured email on first run.
func (c *Context) ensureSession(ctx context.Context) (*session.Session, error) {
	sess, err := c.Sessions.Load()
	if err != nil {
		return nil, err
	}
	if sess != nil && sess.LoggedIn {
		return sess, nil
	}

	if c.Config.UserEmail == "" {
		return nil, fmt.Errorf("no saved session and USER_EMAIL is not set")
	}
	info, err := c.Client.FetchUserType(ctx, c.Config.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("no account found for %s", c.Config.UserEmail)
	}
	sess = session.FromUserType(c.Config.UserEmail, info, time.Now())
	if err := c.Sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.Logger.Info("session established", "email", sess.Email, "adminUserID", sess.User.AdminUserID)
	return sess, nil
}

// adminUserID resolves the admin id, preferring the explicit config
// override over the session's.
func (c *Context) adminUserID(sess *session.Session) (int64, error) {
	if c.Config.AdminUserID != 0 {
		return c.Config.AdminUserID, nil
	}
	if sess != nil && sess.User.AdminUserID != 0 {
		return sess.User.AdminUserID, nil
	}
	return 0, fmt.Errorf("no admin user id in config or session")
}

// resolveServiceID picks the service to show: the explicit flag when
// given, otherwise the account's first service.
func (c *Context) resolveServiceID(ctx context.Context, adminUserID, flag int64) (int64, error) {
	if flag != 0 {
		return flag, nil
	}
	services, err := c.Client.FetchProviderServices(ctx, adminUserID)
	if err != nil {
		return 0, fmt.Errorf("list services: %w", err)
	}
	if len(services) == 0 {
		return 0, fmt.Errorf("account %d has no services", adminUserID)
	}
	return int64(services[0].ServiceID), nil
}
