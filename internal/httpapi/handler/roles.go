package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/davidarico/stinkbot-sub000/internal/catalog"
)

// RoleHandler serves the role catalog.
type RoleHandler struct {
	catalog *catalog.Catalog
}

func NewRoleHandler(c *catalog.Catalog) *RoleHandler {
	return &RoleHandler{catalog: c}
}

// ListRoles handles GET /api/roles.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

// GetRole handles GET /api/roles/{roleID}; the id segment may also be
// a role name.
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "roleID")
	if id, err := strconv.Atoi(param); err == nil {
		if role, ok := h.catalog.ByID(id); ok {
			writeJSON(w, http.StatusOK, role)
			return
		}
	} else if role, ok := h.catalog.ByName(param); ok {
		writeJSON(w, http.StatusOK, role)
		return
	}
	writeError(w, http.StatusNotFound, "role not found")
}

// GetInputRequirements handles GET /api/roles/{roleID}/input-requirements.
func (h *RoleHandler) GetInputRequirements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "roleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	req, err := h.catalog.InputRequirements(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}
	writeJSON(w, http.StatusOK, req)
}
