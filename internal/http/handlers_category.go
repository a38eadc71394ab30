package http

import (
	"fmt"
	"net/http"

	"expensetracker/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.svc.Categories.List(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(newCategoryResponses(cs)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), core.Category{Name: sanitizeInput(req.Name)})
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(fmt.Sprintf("/api/categories/%d", c.ID)).
		Body(categoryResponse{ID: c.ID, Name: c.Name}).
		Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), id)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(categoryResponse{ID: c.ID, Name: c.Name}).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), id, core.Category{Name: sanitizeInput(req.Name)})
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(categoryResponse{ID: c.ID, Name: c.Name}).Write(w)
}

// handleDeleteCategory is always permission-gated: the caller names
// themselves with ?userEmail= and only admins may delete.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	email := sanitizeInput(r.URL.Query().Get("userEmail"))
	if email == "" {
		BadRequestError("userEmail is required").Write(w)
		return
	}

	outcome, err := s.svc.Categories.DeleteWithPermission(r.Context(), id, email)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	if err := outcome.Err(); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]bool{"deleted": true}).Write(w)
}

func (s *Server) handleCategoryNameExists(w http.ResponseWriter, r *http.Request) {
	exists, err := s.svc.Categories.ExistsByName(r.Context(), r.PathValue("name"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]bool{"exists": exists}).Write(w)
}
