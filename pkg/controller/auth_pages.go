package controller

import (
	"context"
	"errors"

	"github.com/matt-steen/taskboard/pkg/session"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	fieldWidth    = 40
	passwordMask  = '*'
	loginTitle    = "Welcome Back"
	registerTitle = "Create Your Account"
)

func (c *Controller) getLoginForm() *tview.Form {
	form := tview.NewForm().
		AddInputField("Email", "", fieldWidth, nil, nil).
		AddPasswordField("Password", "", fieldWidth, passwordMask, nil)

	email, _ := form.GetFormItemByLabel("Email").(*tview.InputField)
	password, _ := form.GetFormItemByLabel("Password").(*tview.InputField)

	form.AddButton("Login", func() {
		addr, pw := email.GetText(), password.GetText()

		c.background("log in", func(ctx context.Context) error {
			if err := c.session.Login(ctx, addr, pw); err != nil {
				if errors.Is(err, session.ErrCredentialsRequired) {
					return err
				}

				log.Warn().Err(err).Msg("login rejected")

				return errLoginFailed
			}

			c.app.QueueUpdateDraw(func() {
				password.SetText("")
				c.showDashboard()
			})

			return nil
		})
	})

	form.AddButton("Register", c.showRegister)
	form.AddButton("Quit", c.stop)

	form.SetBorder(true).SetTitle(loginTitle)

	return form
}

var errLoginFailed = errors.New("login failed")

func (c *Controller) getRegisterForm() *tview.Form {
	form := tview.NewForm().
		AddInputField("Name", "", fieldWidth, nil, nil).
		AddInputField("Email", "", fieldWidth, nil, nil).
		AddPasswordField("Password", "", fieldWidth, passwordMask, nil)

	name, _ := form.GetFormItemByLabel("Name").(*tview.InputField)
	email, _ := form.GetFormItemByLabel("Email").(*tview.InputField)
	password, _ := form.GetFormItemByLabel("Password").(*tview.InputField)

	form.AddButton("Register", func() {
		n, addr, pw := name.GetText(), email.GetText(), password.GetText()

		c.background("register", func(ctx context.Context) error {
			if err := c.session.Register(ctx, n, addr, pw); err != nil {
				return err
			}

			c.app.QueueUpdateDraw(func() {
				name.SetText("")
				password.SetText("")
				c.showLogin()
				c.alert("Account created. Please log in.")
			})

			return nil
		})
	})

	form.AddButton("Back to Login", c.showLogin)

	form.SetBorder(true).SetTitle(registerTitle)

	return form
}

func (c *Controller) showLogin() {
	c.currentEvents = nil
	c.pages.SwitchToPage(pageLogin)
	c.app.SetFocus(c.pages)
}

func (c *Controller) showRegister() {
	c.currentEvents = nil
	c.pages.SwitchToPage(pageRegister)
	c.app.SetFocus(c.pages)
}

func (c *Controller) logout() {
	c.closeBoard()

	if err := c.session.Logout(c.ctx); err != nil {
		log.Error().Err(err).Msg("error logging out")
	}

	c.showLogin()
}
