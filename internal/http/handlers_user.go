package http

import (
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	u, err := s.svc.Users.Create(r.Context(), req.toUser())
	if errors.Is(err, services.ErrEmailTaken) {
		BadRequestError("Email already exists").Write(w)
		return
	}
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Body(authResponse{Message: "User registered successfully", User: newUserResponse(u)}).
		Write(w)
}

// handleLogin looks a user up by email and name. There is no password;
// this only identifies the caller to the front end.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	email, name := p.Get("email"), p.Get("name")
	if blank(email) || blank(name) {
		BadRequestError("Email and name are required").Write(w)
		return
	}

	u, err := s.svc.Users.FindByEmailAndName(r.Context(), email, name)
	if errors.Is(err, core.ErrNotFound) {
		BadRequestError("Invalid credentials").Write(w)
		return
	}
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Body(authResponse{Message: "Login successful", User: newUserResponse(u)}).
		Write(w)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.svc.Users.List(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newUserResponses(us)).Write(w)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	u, err := s.svc.Users.Create(r.Context(), req.toUser())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(fmt.Sprintf("/api/users/%d", u.ID)).
		Body(newUserResponse(u)).
		Write(w)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	u, err := s.svc.Users.Get(r.Context(), id)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newUserResponse(u)).Write(w)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	u, err := s.svc.Users.Update(r.Context(), id, req.toUser())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newUserResponse(u)).Write(w)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]bool{"deleted": true}).Write(w)
}

func (s *Server) handleEmailExists(w http.ResponseWriter, r *http.Request) {
	exists, err := s.svc.Users.ExistsByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]bool{"exists": exists}).Write(w)
}
