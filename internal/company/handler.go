// Package company serves the tenant directory and the user administration
// screens of a company.
package company

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const msgUserNotFound = "Usuário não encontrado"

// CompanyResponse is all an anonymous caller learns about a tenant.
type CompanyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateUserRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"isActive"`
	Password *string          `json:"password"`
}

// ----------------------------------------
// Companies
// ----------------------------------------

// GET /api/companies
func ListCompaniesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companies, err := store.ListCompanies(c.UserContext())
		if err != nil {
			return apperror.Wrap(err, "Empresa não encontrada", "Erro ao buscar empresas")
		}

		res := make([]CompanyResponse, 0, len(companies))
		for _, co := range companies {
			res = append(res, CompanyResponse{ID: co.ID, Name: co.Name})
		}
		return c.JSON(res)
	}
}

// ----------------------------------------
// Users
// ----------------------------------------

// GET /api/users
func ListUsersHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := store.ListUsers(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgUserNotFound, "Erro ao buscar usuários")
		}
		return c.JSON(users)
	}
}

// POST /api/users (admin)
func CreateUserHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		v := &apperror.ValidationError{}
		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Username == "" {
			v.Add("username", "usuário é obrigatório")
		}
		if len(body.Password) < 6 {
			v.Add("password", "senha deve ter pelo menos 6 caracteres")
		}
		if body.Name == "" {
			v.Add("name", "nome é obrigatório")
		}
		if body.Email == "" {
			v.Add("email", "email é obrigatório")
		}
		if err := v.OrNil(); err != nil {
			return err
		}
		if body.Role == "" {
			body.Role = models.RoleCorretor
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível processar a senha")
		}

		user := models.User{
			CompanyID:    auth.CompanyID(c),
			Username:     body.Username,
			PasswordHash: hash,
			Email:        body.Email,
			Name:         body.Name,
			Role:         body.Role,
			IsActive:     true,
		}
		if err := store.CreateUser(c.UserContext(), &user); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperror.Invalid("username", "usuário já existe")
			}
			return apperror.Wrap(err, msgUserNotFound, "Erro ao criar usuário")
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// PUT /api/users/:id (admin)
func UpdateUserHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateUserRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		var hash string
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return apperror.Invalid("password", "senha deve ter pelo menos 6 caracteres")
			}
			var err error
			if hash, err = auth.HashPassword(*body.Password); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível processar a senha")
			}
		}

		// An admin cannot lock themselves out.
		if c.Params("id") == auth.UserID(c) {
			if (body.IsActive != nil && !*body.IsActive) || (body.Role != nil && *body.Role != models.RoleAdmin) {
				return fiber.NewError(fiber.StatusBadRequest, "Não é possível desativar ou rebaixar o próprio usuário")
			}
		}

		user, err := store.UpdateUser(c.UserContext(), auth.CompanyID(c), c.Params("id"), func(u *models.User) error {
			if body.Name != nil {
				u.Name = strings.TrimSpace(*body.Name)
			}
			if body.Email != nil {
				u.Email = strings.TrimSpace(strings.ToLower(*body.Email))
			}
			if body.Role != nil {
				u.Role = *body.Role
			}
			if body.IsActive != nil {
				u.IsActive = *body.IsActive
			}
			if hash != "" {
				u.PasswordHash = hash
			}
			return nil
		})
		if err != nil {
			return apperror.Wrap(err, msgUserNotFound, "Erro ao atualizar usuário")
		}
		return c.JSON(user)
	}
}
