package server

import (
	"errors"
	"fmt"

	"askmate/internal/models"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const (
	roleFormView   = "administration/role_form"
	userClaimsView = "administration/user_claims"
)

// serviceFieldError turns a VALIDATION_ERROR from a service call into a field
// error so the form can be re-rendered. Other errors are returned unchanged.
func serviceFieldError(err error, field string) (validation.FieldErrors, error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
		return validation.FieldErrors{field: appErr.Message}, nil
	}
	return nil, err
}

// ListRoles handles GET /administration/roles
func (s *Server) ListRoles(c *fiber.Ctx) error {
	roles, err := s.admin.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderOK(c, "administration/roles", fiber.Map{"Title": "Roles", "Roles": viewmodel.FromRoles(roles)})
}

// CreateRoleForm handles GET /administration/roles/create
func (s *Server) CreateRoleForm(c *fiber.Ctx) error {
	return s.renderOK(c, roleFormView, fiber.Map{"Title": "Create role", "Action": c.Path(), "Form": viewmodel.RoleForm{}})
}

// CreateRole handles POST /administration/roles/create
func (s *Server) CreateRole(c *fiber.Ctx) error {
	var form viewmodel.RoleForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	bind := fiber.Map{"Title": "Create role", "Action": c.Path(), "Form": form}
	if errs := validation.Struct(&form); errs != nil {
		return s.renderInvalid(c, roleFormView, bind, errs)
	}

	if _, err := s.admin.CreateRole(c.UserContext(), form.Name); err != nil {
		errs, err := serviceFieldError(err, "Name")
		if err != nil {
			return err
		}
		return s.renderInvalid(c, roleFormView, bind, errs)
	}
	return redirectAfterPost(c, "/administration/roles")
}

// EditRoleForm handles GET /administration/roles/:id/edit
func (s *Server) EditRoleForm(c *fiber.Ctx) error {
	role, err := s.admin.GetRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return s.renderOK(c, roleFormView, fiber.Map{
		"Title":  "Edit role",
		"Action": c.Path(),
		"Form":   viewmodel.RoleForm{Name: role.Name},
		"Role":   viewmodel.FromRole(role),
	})
}

// EditRole handles POST /administration/roles/:id/edit
func (s *Server) EditRole(c *fiber.Ctx) error {
	role, err := s.admin.GetRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	var form viewmodel.RoleForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	bind := fiber.Map{"Title": "Edit role", "Action": c.Path(), "Form": form, "Role": viewmodel.FromRole(role)}
	if errs := validation.Struct(&form); errs != nil {
		return s.renderInvalid(c, roleFormView, bind, errs)
	}

	if err := s.admin.RenameRole(c.UserContext(), role.ID, form.Name); err != nil {
		errs, err := serviceFieldError(err, "Name")
		if err != nil {
			return err
		}
		return s.renderInvalid(c, roleFormView, bind, errs)
	}
	return redirectAfterPost(c, "/administration/roles")
}

// DeleteRole handles POST /administration/roles/:id/delete
func (s *Server) DeleteRole(c *fiber.Ctx) error {
	if err := s.admin.DeleteRole(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return redirectAfterPost(c, "/administration/roles")
}

// roleMemberRow is one line of the membership editor.
type roleMemberRow struct {
	User     viewmodel.UserVM
	IsMember bool
}

// RoleUsersForm handles GET /administration/roles/:id/users
func (s *Server) RoleUsersForm(c *fiber.Ctx) error {
	ctx := c.UserContext()
	role, err := s.admin.GetRole(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	users, err := s.admin.ListUsers(ctx)
	if err != nil {
		return err
	}

	members := make(map[string]bool, len(role.Users))
	for _, u := range role.Users {
		members[u.ID] = true
	}
	rows := make([]roleMemberRow, 0, len(users))
	for i := range users {
		rows = append(rows, roleMemberRow{User: viewmodel.FromUser(&users[i]), IsMember: members[users[i].ID]})
	}

	return s.renderOK(c, "administration/role_users", fiber.Map{
		"Title":  "Members of " + role.Name,
		"Action": c.Path(),
		"Role":   viewmodel.FromRole(role),
		"Rows":   rows,
	})
}

// UpdateRoleUsers handles POST /administration/roles/:id/users
func (s *Server) UpdateRoleUsers(c *fiber.Ctx) error {
	var form viewmodel.RoleMembersForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	roleID := c.Params("id")
	if err := s.admin.UpdateMembers(c.UserContext(), roleID, form.AddUserIDs, form.RemoveUserIDs); err != nil {
		return err
	}
	return redirectAfterPost(c, fmt.Sprintf("/administration/roles/%s/users", roleID))
}

// AdminListUsers handles GET /administration/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	users, err := s.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderOK(c, "administration/users", fiber.Map{"Title": "Manage users", "Users": viewmodel.FromUsers(users)})
}

func (s *Server) userClaimsBind(c *fiber.Ctx, userID string, form viewmodel.ClaimForm) (fiber.Map, error) {
	user, claims, err := s.admin.UserClaims(c.UserContext(), userID)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"Title":  "Claims of " + user.UserName,
		"Action": fmt.Sprintf("/administration/users/%s/claims", user.ID),
		"User":   viewmodel.FromUser(user),
		"Claims": viewmodel.FromClaims(claims),
		"Form":   form,
	}, nil
}

// UserClaimsForm handles GET /administration/users/:id/claims
func (s *Server) UserClaimsForm(c *fiber.Ctx) error {
	bind, err := s.userClaimsBind(c, c.Params("id"), viewmodel.ClaimForm{})
	if err != nil {
		return err
	}
	return s.renderOK(c, userClaimsView, bind)
}

// AddUserClaim handles POST /administration/users/:id/claims
func (s *Server) AddUserClaim(c *fiber.Ctx) error {
	userID := c.Params("id")
	var form viewmodel.ClaimForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	errs := validation.Struct(&form)
	if errs == nil {
		if err := s.admin.AddClaim(c.UserContext(), form.ToClaim(userID)); err != nil {
			if errs, err = serviceFieldError(err, "ClaimType"); err != nil {
				return err
			}
		}
	}
	if errs != nil {
		bind, err := s.userClaimsBind(c, userID, form)
		if err != nil {
			return err
		}
		return s.renderInvalid(c, userClaimsView, bind, errs)
	}
	return redirectAfterPost(c, fmt.Sprintf("/administration/users/%s/claims", userID))
}

// RemoveUserClaim handles POST /administration/users/:id/claims/:claimId/remove
func (s *Server) RemoveUserClaim(c *fiber.Ctx) error {
	claimID, err := parseID(c, "claimId")
	if err != nil {
		return err
	}
	userID := c.Params("id")
	if err := s.admin.RemoveClaim(c.UserContext(), userID, claimID); err != nil {
		return err
	}
	return redirectAfterPost(c, fmt.Sprintf("/administration/users/%s/claims", userID))
}

// ListClaims handles GET /administration/claims
func (s *Server) ListClaims(c *fiber.Ctx) error {
	claims, err := s.admin.AllClaims(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderOK(c, "administration/claims", fiber.Map{"Title": "Claims", "Claims": viewmodel.FromClaims(claims)})
}

// ClaimDetails handles GET /administration/claims/:id
func (s *Server) ClaimDetails(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	claim, err := s.admin.GetClaim(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.renderOK(c, "administration/claim", fiber.Map{"Title": "Claim", "Claim": viewmodel.FromClaim(claim)})
}
