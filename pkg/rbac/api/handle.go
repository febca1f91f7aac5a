package api

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	rbacerrors "github.com/tendant/simple-rbac/pkg/errors"
	"github.com/tendant/simple-rbac/pkg/rbac"
	rolepkg "github.com/tendant/simple-rbac/pkg/role"
)

// Handle serves the RBAC routes
type Handle struct {
	service  *rbac.Service
	validate *validator.Validate
}

// NewHandle creates a new RBAC API handle
func NewHandle(service *rbac.Service) *Handle {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handle{
		service:  service,
		validate: validate,
	}
}

// ListRoles handles GET /roles
func (h *Handle) ListRoles(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	resp := []RoleSummaryResponse{}
	if err := copier.Copy(&resp, &summaries); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map roles"))
		return
	}
	render.JSON(w, r, resp)
}

// CreateRole handles POST /roles
func (h *Handle) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateRole(r.Context(), req.Name)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	role, err := h.service.GetRole(r.Context(), created.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderRole(w, r, http.StatusCreated, role)
}

// GetRole handles GET /roles/{id}
func (h *Handle) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	role, err := h.service.GetRole(r.Context(), roleID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderRole(w, r, http.StatusOK, role)
}

// DeleteRole handles DELETE /roles/{id}
func (h *Handle) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), roleID); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListPermissions handles GET /permissions
func (h *Handle) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	resp := []PermissionResponse{}
	if err := copier.Copy(&resp, &perms); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map permissions"))
		return
	}
	render.JSON(w, r, resp)
}

// CreatePermission handles POST /permissions
func (h *Handle) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.CreatePermission(r.Context(), req.Name, req.Route)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var resp PermissionResponse
	if err := copier.Copy(&resp, &p); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map permission"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// AssignPermissions handles PUT /roles/{id}/permissions
func (h *Handle) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignPermissionsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ids := make([]uuid.UUID, len(req.PermissionIDs))
	for i, raw := range req.PermissionIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			h.renderError(w, r, rbacerrors.Newf(rbacerrors.ErrCodeInvalidFormat, "invalid permission id %q", raw).
				WithDetail("permission_ids", raw))
			return
		}
		ids[i] = id
	}

	if _, err := h.service.AssignPermissions(r.Context(), roleID, ids); err != nil {
		h.renderError(w, r, err)
		return
	}

	role, err := h.service.GetRole(r.Context(), roleID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderRole(w, r, http.StatusOK, role)
}

// RemovePermission handles DELETE /roles/{id}/permissions/{permissionId}
func (h *Handle) RemovePermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	permissionID, ok := h.pathUUID(w, r, "permissionId")
	if !ok {
		return
	}

	if err := h.service.RemovePermissionFromRole(r.Context(), roleID, permissionID); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListUsers handles GET /users
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	resp := []UserResponse{}
	if err := copier.Copy(&resp, &users); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map users"))
		return
	}
	render.JSON(w, r, resp)
}

// AssociateUsers handles POST /roles/{id}/users. The body is a JSON array of user ids.
func (h *Handle) AssociateUsers(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var userIDs []string
	if err := render.DecodeJSON(r.Body, &userIDs); err != nil {
		h.renderError(w, r, rbacerrors.Wrap(err, rbacerrors.ErrCodeInvalidFormat, "request body must be a JSON array of user ids"))
		return
	}

	result, err := h.service.AssociateUsers(r.Context(), roleID, userIDs)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	resp := BatchResponse{
		Successes: []UserResponse{},
		Failures:  []BatchFailureResponse{},
	}
	if err := copier.Copy(&resp.Successes, &result.Successes); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map users"))
		return
	}
	if err := copier.Copy(&resp.Failures, &result.Failures); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map failures"))
		return
	}
	render.JSON(w, r, resp)
}

// DisassociateUser handles DELETE /roles/{id}/users/{userId}
func (h *Handle) DisassociateUser(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.DisassociateUser(r.Context(), roleID, userID); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *Handle) renderRole(w http.ResponseWriter, r *http.Request, status int, role rolepkg.Role) {
	resp := RoleResponse{}
	if err := copier.Copy(&resp, &role); err != nil {
		h.renderError(w, r, rbacerrors.InternalWrap(err, "failed to map role"))
		return
	}
	if resp.Permissions == nil {
		resp.Permissions = []PermissionResponse{}
	}
	if resp.Users == nil {
		resp.Users = []UserResponse{}
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

func (h *Handle) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.renderError(w, r, rbacerrors.Wrap(err, rbacerrors.ErrCodeInvalidFormat, "unable to parse body"))
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		details := map[string]interface{}{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				details[fieldErr.Field()] = fieldErr.Tag()
			}
		}
		h.renderError(w, r, rbacerrors.ValidationFailed(details))
		return false
	}
	return true
}

func (h *Handle) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.renderError(w, r, rbacerrors.Newf(rbacerrors.ErrCodeInvalidFormat, "invalid %s: %q", name, raw).
			WithDetail(name, raw))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handle) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var e *rbacerrors.Error
	if !errors.As(err, &e) {
		e = rbacerrors.InternalWrap(err, "internal error")
	}

	status := e.HTTPStatusCode()
	if status >= http.StatusInternalServerError {
		slog.Error("RBAC request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Code: e.Code, Message: e.Message})
		return
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details})
}
