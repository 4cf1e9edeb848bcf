// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"net/http"
	"strings"
	"testing"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

func policyEditor(t *testing.T, model Model) *PolicyEditor {
	t.Helper()
	editor, ok := model.screen.(*PolicyEditor)
	if !ok {
		t.Fatalf("mounted screen is %T, want *PolicyEditor", model.screen)
	}
	return editor
}

func TestPolicyPlaceholderUntilLoaded(t *testing.T) {
	editor := newPolicyEditor(environment{})
	if editor.Text() != "$\n(\n)\n" {
		t.Errorf("initial Text() = %q, want placeholder", editor.Text())
	}
}

func TestPolicyLoadingLineReplacesEditor(t *testing.T) {
	api := newFakeAPI()
	model := New(Options{API: api})
	model.mount(PagePolicies)
	if view := model.View(); !strings.Contains(view, "Loading policy...") {
		t.Errorf("view before load:\n%s", view)
	}
}

func TestPolicyAcceptedClearsRejection(t *testing.T) {
	api := newFakeAPI()
	api.policy = "permit all\n"
	model := openPage(t, api, nil, PagePolicies)
	editor := policyEditor(t, model)
	if editor.Text() != "permit all\n" {
		t.Fatalf("Text() = %q after load", editor.Text())
	}

	api.setStatus(ratchet.EndpointPushPolicy, http.StatusBadRequest)
	model = send(t, model, keyCtrlS)
	if !editor.Rejected() || editor.Accepted() {
		t.Fatalf("after 400: rejected=%v accepted=%v", editor.Rejected(), editor.Accepted())
	}
	if !strings.Contains(model.View(), "Policy rejected: syntax error.") {
		t.Error("rejection not rendered")
	}

	api.setStatus(ratchet.EndpointPushPolicy, http.StatusOK)
	model = send(t, model, keyCtrlS)
	if !editor.Accepted() || editor.Rejected() {
		t.Fatalf("after 200: accepted=%v rejected=%v", editor.Accepted(), editor.Rejected())
	}
	view := model.View()
	if !strings.Contains(view, "Policy accepted.") || strings.Contains(view, "Policy rejected") {
		t.Errorf("view after 200:\n%s", view)
	}

	calls := api.callsTo(ratchet.EndpointPushPolicy)
	if len(calls) != 2 || calls[1].args[0] != "permit all\n" {
		t.Errorf("pushpolicy calls = %+v, want the buffer verbatim", calls)
	}
}

func TestPolicyUnavailableKeepsFlags(t *testing.T) {
	api := newFakeAPI()
	api.policy = "permit all\n"
	model := openPage(t, api, nil, PagePolicies)
	editor := policyEditor(t, model)

	model = send(t, model, keyCtrlS)
	api.setStatus(ratchet.EndpointPushPolicy, http.StatusServiceUnavailable)
	model = send(t, model, keyCtrlS)
	if !editor.Accepted() || editor.Rejected() {
		t.Errorf("503 changed flags: accepted=%v rejected=%v", editor.Accepted(), editor.Rejected())
	}
	if !strings.Contains(model.View(), "Caution: ratchet not responding") {
		t.Error("503 warning not rendered")
	}
}

func TestPolicyEditsAreSentVerbatim(t *testing.T) {
	api := newFakeAPI()
	api.policy = ""
	model := openPage(t, api, nil, PagePolicies)

	model = send(t, model, typed("deny"), keyTab, typed("(rm)"), keyEnter, typed("q"), keyCtrlS)
	if model.Page() != PagePolicies {
		t.Fatalf("typing q left the page: %s", model.Page())
	}
	calls := api.callsTo(ratchet.EndpointPushPolicy)
	if len(calls) != 1 || calls[0].args[0] != "deny\t(rm)\nq" {
		t.Errorf("pushpolicy calls = %+v", calls)
	}
}

func TestPolicyUnauthorized(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		api := newFakeAPI()
		api.setStatus(ratchet.EndpointGetPolicy, http.StatusUnauthorized)
		model := openPage(t, api, nil, PagePolicies)
		if model.Page() != PageLogin || model.Redirects() != 1 {
			t.Errorf("Page() = %s, Redirects() = %d", model.Page(), model.Redirects())
		}
	})
	t.Run("push", func(t *testing.T) {
		api := newFakeAPI()
		api.setStatus(ratchet.EndpointPushPolicy, http.StatusUnauthorized)
		model := openPage(t, api, nil, PagePolicies)
		model = send(t, model, keyCtrlS)
		if model.Page() != PageLogin || model.Redirects() != 1 {
			t.Errorf("Page() = %s, Redirects() = %d", model.Page(), model.Redirects())
		}
	})
}
