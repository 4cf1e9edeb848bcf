// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ratchet-nac/pawl/lib/ratchet"
	"github.com/ratchet-nac/pawl/lib/session"
)

// Page names the console's pages.
type Page int

const (
	PageWelcome Page = iota
	PageDeviceList
	PageUserList
	PagePolicies
	PageLogin
)

func (page Page) String() string {
	switch page {
	case PageWelcome:
		return "welcome-page"
	case PageDeviceList:
		return "device-list"
	case PageUserList:
		return "user-list"
	case PagePolicies:
		return "user-cmd-policies"
	case PageLogin:
		return "pawl-login"
	}
	return fmt.Sprintf("page(%d)", int(page))
}

// Options configures a console Model.
type Options struct {
	// API is the ratchet client. Required.
	API API

	// Keeper saves the session after login and clears it on logout
	// or when ratchet rejects it. Nil keeps the session in memory
	// only.
	Keeper SessionKeeper

	// Probe checks the session at startup. Nil skips the check.
	Probe session.Probe

	// Logger receives console diagnostics. Nil discards them.
	Logger *slog.Logger

	// RequestTimeout bounds each ratchet request. Zero uses
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Theme defaults to DefaultTheme when zero.
	Theme Theme

	// Server is shown on the welcome page.
	Server string
}

// scopedMsg is a page command's result addressed to the mount that
// issued it.
type scopedMsg struct {
	serial  int
	message tea.Msg
}

type sessionCheckMsg struct {
	authenticated bool
}

type logoutMsg struct {
	result ratchet.Result
	err    error
}

// Model is the console's root bubbletea model: a side menu, one mounted
// page, and a status bar.
type Model struct {
	env    environment
	probe  session.Probe
	server string

	page   Page
	screen screen
	// serial increments on every mount. Messages from commands of an
	// older mount are dropped.
	serial int

	menu sideMenu

	width  int
	height int

	logRecord   *logRecordMsg
	logSequence int

	redirects int
}

// New creates a console with the welcome page mounted.
func New(options Options) Model {
	theme := options.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	model := Model{
		env: environment{
			backend: backend{api: options.API, timeout: options.RequestTimeout},
			keeper:  options.Keeper,
			keys:    DefaultKeyMap,
			theme:   theme,
			logger:  logger,
		},
		probe:  options.Probe,
		server: options.Server,
	}
	model.mount(PageWelcome)
	return model
}

// Page reports the mounted page.
func (model Model) Page() Page { return model.page }

// MenuVisible reports whether the side menu is open.
func (model Model) MenuVisible() bool { return model.menu.visible }

// Redirects counts forced transitions to the login page.
func (model Model) Redirects() int { return model.redirects }

// Init runs the startup session check.
func (model Model) Init() tea.Cmd {
	pageInit := model.scope(model.screen.init())
	if model.probe == nil {
		return pageInit
	}
	guard := session.Guard{Probe: model.probe, Logger: model.env.logger}
	timeout := model.env.backend.timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	check := model.scope(func() tea.Msg {
		redirected := false
		guard.Redirect = func() { redirected = true }
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		guard.Check(ctx)
		return sessionCheckMsg{authenticated: !redirected}
	})
	return tea.Batch(pageInit, check)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case scopedMsg:
		if message.serial != model.serial {
			model.env.logger.Debug("dropping response for unmounted page", "page", model.page.String())
			return model, nil
		}
		if check, ok := message.message.(sessionCheckMsg); ok {
			if !check.authenticated {
				cmd := model.forceLogin()
				return model, cmd
			}
			return model, nil
		}
		return model.routeToScreen(message.message)

	case logoutMsg:
		if message.err != nil {
			model.env.logger.Warn("ratchet logout failed", "error", message.err)
		}
		cmd := model.forceLogin()
		return model, cmd

	case logRecordMsg:
		model.logSequence++
		record := message
		model.logRecord = &record
		sequence := model.logSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.logSequence {
			model.logRecord = nil
		}
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := model.env.keys
	switch {
	case key.Matches(message, ctrlC):
		return model, tea.Quit

	case key.Matches(message, keys.MenuToggle):
		model.menu.visible = !model.menu.visible
		return model, nil

	case key.Matches(message, keys.Home):
		model.menu.visible = false
		cmd := model.mount(PageWelcome)
		return model, cmd
	}

	if model.menu.visible {
		entry := model.menu.handleKey(message, keys)
		if entry == nil {
			return model, nil
		}
		if entry.logout {
			return model, model.env.backend.call(func(ctx context.Context, api API) tea.Msg {
				result, err := api.Logout(ctx)
				return logoutMsg{result: result, err: err}
			})
		}
		cmd := model.mount(entry.page)
		return model, cmd
	}

	if key.Matches(message, keys.Quit) && !model.screen.capturing() {
		return model, tea.Quit
	}
	return model.routeToScreen(message)
}

func (model Model) routeToScreen(message tea.Msg) (tea.Model, tea.Cmd) {
	pageCmd, next := model.screen.update(message)
	var cmd tea.Cmd
	switch next {
	case toLogin:
		cmd = model.forceLogin()
	case toWelcome:
		cmd = model.mount(PageWelcome)
	case toReload:
		cmd = model.mount(model.page)
	default:
		cmd = model.scope(pageCmd)
	}
	return model, cmd
}

// forceLogin forgets the session and mounts the login page.
func (model *Model) forceLogin() tea.Cmd {
	model.redirects++
	if model.env.keeper != nil {
		if err := model.env.keeper.Forget(); err != nil {
			model.env.logger.Warn("clearing saved session failed", "error", err)
		}
	}
	return model.mount(PageLogin)
}

// mount replaces the current page with a fresh instance of page.
func (model *Model) mount(page Page) tea.Cmd {
	model.serial++
	model.page = page
	switch page {
	case PageDeviceList:
		model.screen = newEntityList(model.env, DeviceKind)
	case PageUserList:
		model.screen = newEntityList(model.env, UserKind)
	case PagePolicies:
		model.screen = newPolicyEditor(model.env)
	case PageLogin:
		model.screen = newLoginPage(model.env)
	default:
		model.page = PageWelcome
		model.screen = &welcomePage{env: model.env, server: model.server}
	}
	return model.scope(model.screen.init())
}

// scope tags a page command's messages with the current mount serial.
func (model *Model) scope(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	serial := model.serial
	return func() tea.Msg {
		return wrapScoped(serial, cmd())
	}
}

func wrapScoped(serial int, message tea.Msg) tea.Msg {
	switch message := message.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		wrapped := make(tea.BatchMsg, 0, len(message))
		for _, cmd := range message {
			if cmd == nil {
				continue
			}
			wrapped = append(wrapped, func() tea.Msg { return wrapScoped(serial, cmd()) })
		}
		return wrapped
	}
	return scopedMsg{serial: serial, message: message}
}

// View implements tea.Model.
func (model Model) View() string {
	width := model.width
	height := model.height
	if width == 0 || height == 0 {
		width, height = 80, 24
	}
	theme := model.env.theme

	// Header, separator, and status bar take three rows.
	contentHeight := max(height-3, 1)
	contentWidth := width
	if model.menu.visible {
		contentWidth = max(width-menuWidth-1, 10)
	}

	content := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		MaxHeight(contentHeight).
		PaddingLeft(1).
		Render(model.screen.view(contentWidth-1, contentHeight))
	if model.menu.visible {
		content = lipgloss.JoinHorizontal(lipgloss.Top, model.menu.view(theme, contentHeight), " ", content)
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.BorderColor).
		Render(strings.Repeat("─", width))

	return strings.Join([]string{model.renderHeader(width), content, separator, model.renderStatus(width)}, "\n")
}

func (model Model) renderHeader(width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.env.theme.HeaderForeground).Render(" pawl")
	page := lipgloss.NewStyle().Foreground(model.env.theme.FaintText).Render("  " + model.page.String())
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(title + page)
}

func (model Model) renderStatus(width int) string {
	style := lipgloss.NewStyle().Width(width).MaxWidth(width)
	if model.logRecord != nil {
		color := model.env.theme.Warning
		if model.logRecord.Level >= slog.LevelError {
			color = model.env.theme.Error
		}
		return style.Foreground(color).Render(" " + model.logRecord.Summary)
	}

	help := " F2 menu  F1 home"
	if !model.screen.capturing() {
		help += "  q quit"
	}
	if pageHelp := model.screen.help(); pageHelp != "" {
		help += "  " + pageHelp
	}
	return style.Foreground(model.env.theme.HelpText).Render(help)
}
