// Copyright 2026 The Ratchet Authors
// SPDX-License-Identifier: Apache-2.0

package ratchettest

import (
	"encoding/json"
	"net/http"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/ratchet-nac/pawl/lib/ratchet"
)

func (s *Server) handleListDevices(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	devices := make([]ratchet.Device, len(s.devices))
	for index, entry := range s.devices {
		devices[index] = ratchet.Device{NetworkID: entry.networkID}
	}
	s.mu.Unlock()
	s.writeJSON(writer, ratchet.EndpointListDevices, devices)
}

func (s *Server) handleAddDevice(writer http.ResponseWriter, request *http.Request) {
	networkID := request.PostFormValue("network_id")
	key := request.PostFormValue("key")
	if networkID == "" || key == "" {
		s.respond(writer, ratchet.EndpointAddDevice, http.StatusBadRequest, "network_id and key are required")
		return
	}
	s.mu.Lock()
	if s.deviceIndex(networkID) >= 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointAddDevice, http.StatusConflict, "system already exists")
		return
	}
	s.devices = append(s.devices, device{networkID: networkID, key: key})
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointAddDevice, http.StatusOK, "created")
}

func (s *Server) handleEditDevice(writer http.ResponseWriter, request *http.Request) {
	networkID := request.PostFormValue("network_id")
	key := request.PostFormValue("key")
	if networkID == "" || key == "" {
		s.respond(writer, ratchet.EndpointEditDevice, http.StatusBadRequest, "network_id and key are required")
		return
	}
	s.mu.Lock()
	index := s.deviceIndex(networkID)
	if index < 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointEditDevice, http.StatusNotFound, "no such system")
		return
	}
	s.devices[index].key = key
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointEditDevice, http.StatusOK, "updated")
}

func (s *Server) handleRemoveDevice(writer http.ResponseWriter, request *http.Request) {
	networkID := request.PostFormValue("network_id")
	s.mu.Lock()
	index := s.deviceIndex(networkID)
	if index < 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointRemoveDevice, http.StatusGone, "no such system")
		return
	}
	s.devices = slices.Delete(s.devices, index, index+1)
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointRemoveDevice, http.StatusOK, "removed")
}

func (s *Server) handleListUsers(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	users := make([]ratchet.User, len(s.users))
	for index, entry := range s.users {
		users[index] = ratchet.User{Username: entry.username}
	}
	s.mu.Unlock()
	s.writeJSON(writer, ratchet.EndpointListUsers, users)
}

func (s *Server) handleAddUser(writer http.ResponseWriter, request *http.Request) {
	username := request.PostFormValue("username")
	password := request.PostFormValue("passhash")
	if username == "" || password == "" {
		s.respond(writer, ratchet.EndpointAddUser, http.StatusBadRequest, "username and passhash are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.respond(writer, ratchet.EndpointAddUser, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	if s.userIndex(username) >= 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointAddUser, http.StatusConflict, "user already exists")
		return
	}
	s.users = append(s.users, user{username: username, hash: hash})
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointAddUser, http.StatusOK, "created")
}

func (s *Server) handleEditUser(writer http.ResponseWriter, request *http.Request) {
	username := request.PostFormValue("username")
	password := request.PostFormValue("passhash")
	if username == "" || password == "" {
		s.respond(writer, ratchet.EndpointEditUser, http.StatusBadRequest, "username and passhash are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.respond(writer, ratchet.EndpointEditUser, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	index := s.userIndex(username)
	if index < 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointEditUser, http.StatusNotFound, "no such user")
		return
	}
	s.users[index].hash = hash
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointEditUser, http.StatusOK, "updated")
}

func (s *Server) handleRemoveUser(writer http.ResponseWriter, request *http.Request) {
	username := request.PostFormValue("username")
	s.mu.Lock()
	index := s.userIndex(username)
	if index < 0 {
		s.mu.Unlock()
		s.respond(writer, ratchet.EndpointRemoveUser, http.StatusGone, "no such user")
		return
	}
	s.users = slices.Delete(s.users, index, index+1)
	s.mu.Unlock()
	s.respond(writer, ratchet.EndpointRemoveUser, http.StatusOK, "removed")
}

func (s *Server) handleGetPolicy(writer http.ResponseWriter, request *http.Request) {
	policy := s.Policy()
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(policy))
}

func (s *Server) handlePushPolicy(writer http.ResponseWriter, request *http.Request) {
	policy := request.PostFormValue("policy")
	if !balancedParentheses(policy) {
		s.respond(writer, ratchet.EndpointPushPolicy, http.StatusBadRequest, "syntax error: unbalanced parentheses")
		return
	}
	s.SetPolicy(policy)
	s.respond(writer, ratchet.EndpointPushPolicy, http.StatusOK, "accepted")
}

func (s *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	username := request.PostFormValue("username")
	password := request.PostFormValue("password")
	if username == "" || !s.CheckPassword(username, password) {
		s.respond(writer, ratchet.EndpointLogin, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expires := s.IssueSession()
	http.SetCookie(writer, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	s.logger.Info("ratchettest login", "username", username)
	s.respond(writer, ratchet.EndpointLogin, http.StatusOK, "authenticated")
}

func (s *Server) handleLogout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(s.cookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(writer, &http.Cookie{
		Name:   s.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	s.respond(writer, ratchet.EndpointLogout, http.StatusOK, "invalidated")
}

func (s *Server) handleLogged(writer http.ResponseWriter, request *http.Request) {
	if !s.authenticated(request) {
		s.respond(writer, ratchet.EndpointLogged, http.StatusUnauthorized, "not logged in")
		return
	}
	s.respond(writer, ratchet.EndpointLogged, http.StatusOK, "logged in")
}

func (s *Server) writeJSON(writer http.ResponseWriter, endpoint string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.respond(writer, endpoint, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("ratchettest response", "endpoint", endpoint, "status", http.StatusOK)
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(data)
}

// balancedParentheses reports whether every "(" in text is closed by a
// later ")". This is the only syntax check the mock applies.
func balancedParentheses(text string) bool {
	depth := 0
	for _, character := range text {
		switch character {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
