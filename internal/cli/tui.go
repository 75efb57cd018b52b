package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/roster"
	"github.com/qwicbook/qwicbook-pro/internal/session"
	"github.com/qwicbook/qwicbook-pro/internal/tui"
)

type TuiCmd struct {
	Service int64 `help:"Service id to show. Defaults to the account's first service." short:"s"`
}

func (c *TuiCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	sess, err := appCtx.ensureSession(ctx)
	if err != nil {
		return err
	}
	adminUserID, err := appCtx.adminUserID(sess)
	if err != nil {
		return err
	}
	serviceID, err := appCtx.resolveServiceID(ctx, adminUserID, c.Service)
	if err != nil {
		return err
	}

	engine := gesture.NewEngine()
	pull := gesture.NewPullTracker()
	svc := roster.NewService(appCtx.Client, engine, appCtx.Logger, serviceID, adminUserID)

	p := tea.NewProgram(
		tui.New(svc, engine, pull, appCtx.Logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	watchdog, err := session.NewWatchdog(session.WatchdogConfig{
		Checker:     appCtx.Client,
		Logger:      appCtx.Logger,
		AdminUserID: adminUserID,
		Interval:    appCtx.Config.StatusPollInterval,
		OnBlocked: func() {
			if clearErr := appCtx.Sessions.Clear(); clearErr != nil {
				appCtx.Logger.Warn("could not clear session", "error", clearErr)
			}
			p.Send(tui.AccountBlockedMsg{})
		},
	})
	if err != nil {
		return err
	}
	go watchdog.Start(watchCtx)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
