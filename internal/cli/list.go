package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/qwicbook/qwicbook-pro/internal/roster"
)

type ListCmd struct {
	Service int64  `help:"Service id to list. Defaults to the account's first service." short:"s"`
	Date    string `help:"Day to list, dd-MMM-yyyy. Defaults to today." short:"d"`
}

func (c *ListCmd) Run(appCtx *Context) error {
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

	date := c.Date
	if date == "" {
		date = roster.FormatAPIDate(time.Now())
	} else if _, err := roster.ParseAPIDate(date); err != nil {
		return fmt.Errorf("invalid date %q, want dd-MMM-yyyy: %w", date, err)
	}

	records, err := appCtx.Client.FetchAppointments(ctx, serviceID, date)
	if err != nil {
		return err
	}

	var r roster.Roster
	r.Load(records)
	if r.Len() == 0 {
		fmt.Printf("No appointments for %s.\n", date)
		return nil
	}

	fmt.Printf("%-6s %-7s %-26s %-12s %s\n", "TOKEN", "TIME", "PATIENT", "MOBILE", "STATUS")
	for _, row := range r.Rows() {
		status := "-"
		if row.UserIn.Set() {
			status = "IN"
		} else if row.UserOut.Set() {
			status = "OUT"
		}
		fmt.Printf("%-6s %-7s %-26s %-12s %s\n",
			row.TokenNumber, row.FromTime, row.DisplayedName(), row.ContactMobile(), status)
	}
	return nil
}

type ServicesCmd struct{}

func (c *ServicesCmd) Run(appCtx *Context) error {
	ctx := context.Background()

	sess, err := appCtx.ensureSession(ctx)
	if err != nil {
		return err
	}
	adminUserID, err := appCtx.adminUserID(sess)
	if err != nil {
		return err
	}

	services, err := appCtx.Client.FetchProviderServices(ctx, adminUserID)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		fmt.Println("No services on this account.")
		return nil
	}
	for _, svc := range services {
		fmt.Printf("%-8d %s\n", int64(svc.ServiceID), svc.ServiceName)
	}
	return nil
}
