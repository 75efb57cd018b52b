package cli

import "fmt"

type SessionShowCmd struct{}

func (c *SessionShowCmd) Run(appCtx *Context) error {
	sess, err := appCtx.Sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil || !sess.LoggedIn {
		fmt.Println("No saved session.")
		return nil
	}
	fmt.Printf("Email        %s\n", sess.Email)
	fmt.Printf("Admin user   %d\n", sess.User.AdminUserID)
	fmt.Printf("User type    %s\n", sess.User.UserType)
	if sess.User.City != "" {
		fmt.Printf("City         %s (%d)\n", sess.User.City, sess.User.CityID)
	}
	fmt.Printf("Logged in    %s\n", sess.LoginAt.Format("2006-01-02 15:04"))
	return nil
}

type SessionClearCmd struct{}

func (c *SessionClearCmd) Run(appCtx *Context) error {
	if err := appCtx.Sessions.Clear(); err != nil {
		return err
	}
	fmt.Println("Session cleared.")
	return nil
}
