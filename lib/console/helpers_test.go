// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

type fakeCall struct {
	endpoint string
	args     []string
}

// fakeAPI answers every request from memory. status overrides the
// response code per endpoint; anything not listed answers 200.
type fakeAPI struct {
	mu       sync.Mutex
	devices  []ratchet.Device
	users    []ratchet.User
	policy   string
	status   map[string]int
	fetchErr error
	password string
	calls    []fakeCall
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{status: map[string]int{}, password: "secret"}
}

func (f *fakeAPI) setStatus(endpoint string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[endpoint] = code
}

func (f *fakeAPI) record(endpoint string, args ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{endpoint: endpoint, args: args})
	if code, ok := f.status[endpoint]; ok {
		return code
	}
	return http.StatusOK
}

func (f *fakeAPI) callsTo(endpoint string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matching []fakeCall
	for _, call := range f.calls {
		if call.endpoint == endpoint {
			matching = append(matching, call)
		}
	}
	return matching
}

func (f *fakeAPI) fetch(endpoint string) error {
	code := f.record(endpoint)
	if f.fetchErr != nil {
		return f.fetchErr
	}
	if code != http.StatusOK {
		return &ratchet.StatusError{Endpoint: endpoint, StatusCode: code}
	}
	return nil
}

func (f *fakeAPI) ListDevices(ctx context.Context) ([]ratchet.Device, error) {
	if err := f.fetch(ratchet.EndpointListDevices); err != nil {
		return nil, err
	}
	return slices.Clone(f.devices), nil
}

func (f *fakeAPI) AddDevice(ctx context.Context, networkID, key string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointAddDevice, networkID, key)}, nil
}

func (f *fakeAPI) EditDevice(ctx context.Context, networkID, key string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointEditDevice, networkID, key)}, nil
}

func (f *fakeAPI) RemoveDevice(ctx context.Context, networkID string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointRemoveDevice, networkID)}, nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]ratchet.User, error) {
	if err := f.fetch(ratchet.EndpointListUsers); err != nil {
		return nil, err
	}
	return slices.Clone(f.users), nil
}

func (f *fakeAPI) AddUser(ctx context.Context, username, password string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointAddUser, username, password)}, nil
}

func (f *fakeAPI) EditUser(ctx context.Context, username, password string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointEditUser, username, password)}, nil
}

func (f *fakeAPI) RemoveUser(ctx context.Context, username string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointRemoveUser, username)}, nil
}

func (f *fakeAPI) GetPolicy(ctx context.Context) (string, error) {
	if err := f.fetch(ratchet.EndpointGetPolicy); err != nil {
		return "", err
	}
	return f.policy, nil
}

func (f *fakeAPI) PushPolicy(ctx context.Context, policy string) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointPushPolicy, policy)}, nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (ratchet.Token, bool, error) {
	f.record(ratchet.EndpointLogin, username)
	if password != f.password {
		return ratchet.Token{}, false, nil
	}
	return ratchet.Token{Value: "token-" + username}, true, nil
}

func (f *fakeAPI) Logout(ctx context.Context) (ratchet.Result, error) {
	return ratchet.Result{StatusCode: f.record(ratchet.EndpointLogout)}, nil
}

type fakeKeeper struct {
	remembered int
	forgotten  int
	failForget bool
}

func (k *fakeKeeper) Remember() error {
	k.remembered++
	return nil
}

func (k *fakeKeeper) Forget() error {
	k.forgotten++
	if k.failForget {
		return errors.New("disk full")
	}
	return nil
}

// drive executes cmd and every command it produces, feeding each
// message back through Update, until nothing is left to run.
func drive(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch message := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, message...)
		default:
			updated, follow := model.Update(message)
			model = updated.(Model)
			queue = append(queue, follow)
		}
	}
	return model
}

// send delivers one message and drives whatever it triggers.
func send(t *testing.T, model Model, messages ...tea.Msg) Model {
	t.Helper()
	for _, message := range messages {
		updated, cmd := model.Update(message)
		model = drive(t, updated.(Model), cmd)
	}
	return model
}

// openPage builds a console and mounts page, running its initial fetch.
func openPage(t *testing.T, api *fakeAPI, keeper *fakeKeeper, page Page) Model {
	t.Helper()
	options := Options{API: api}
	if keeper != nil {
		options.Keeper = keeper
	}
	model := New(options)
	cmd := model.mount(page)
	return drive(t, model, cmd)
}

func typed(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

var (
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab    = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc    = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlS  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyMenu   = tea.KeyMsg{Type: tea.KeyF2}
	keyHome   = tea.KeyMsg{Type: tea.KeyF1}
	keyDelete = typed("d")
)

func entityList(t *testing.T, model Model) *EntityList {
	t.Helper()
	list, ok := model.screen.(*EntityList)
	if !ok {
		t.Fatalf("mounted screen is %T (page %s), want *EntityList", model.screen, model.Page())
	}
	return list
}

func identifiers(records []Record) []string {
	result := make([]string, len(records))
	for index, record := range records {
		result[index] = record.Identifier
	}
	return result
}
