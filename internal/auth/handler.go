package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const minPasswordLen = 6

type NewCompanyRequest struct {
	Name     string  `json:"name"`
	Document string  `json:"document"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// RegisterRequest either joins an existing company (CompanyID) or onboards a
// new one (Company), in which case the user becomes its admin.
type RegisterRequest struct {
	Username  string             `json:"username"`
	Password  string             `json:"password"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	CompanyID string             `json:"companyId"`
	Company   *NewCompanyRequest `json:"company"`
}

type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CompanyID string `json:"companyId"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HashPassword is shared with user creation and seeding.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (r *RegisterRequest) validate() error {
	v := &apperror.ValidationError{}
	if r.Username == "" {
		v.Add("username", "usuário é obrigatório")
	}
	if len(r.Password) < minPasswordLen {
		v.Add("password", "senha deve ter pelo menos 6 caracteres")
	}
	if r.Name == "" {
		v.Add("name", "nome é obrigatório")
	}
	if r.Email == "" {
		v.Add("email", "email é obrigatório")
	}
	switch {
	case r.Company != nil:
		if strings.TrimSpace(r.Company.Name) == "" {
			v.Add("company.name", "nome da empresa é obrigatório")
		}
		if strings.TrimSpace(r.Company.Document) == "" {
			v.Add("company.document", "CNPJ é obrigatório")
		}
		if strings.TrimSpace(r.Company.Email) == "" {
			v.Add("company.email", "email da empresa é obrigatório")
		}
	case r.CompanyID == "":
		v.Add("companyId", "empresa é obrigatória")
	}
	return v.OrNil()
}

func RegisterHandler(cfg *config.Config, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if err := body.validate(); err != nil {
			return err
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível processar a senha")
		}

		user := models.User{
			Username:     body.Username,
			PasswordHash: hash,
			Email:        body.Email,
			Name:         body.Name,
			Role:         models.RoleCorretor,
			IsActive:     true,
		}

		err = store.Transact(c.UserContext(), func(tx storage.Storage) error {
			if body.Company != nil {
				company := models.Company{
					Name:     strings.TrimSpace(body.Company.Name),
					Document: strings.TrimSpace(body.Company.Document),
					Email:    strings.TrimSpace(body.Company.Email),
					Phone:    body.Company.Phone,
					Address:  body.Company.Address,
				}
				if err := tx.CreateCompany(c.UserContext(), &company); err != nil {
					if errors.Is(err, storage.ErrConflict) {
						return apperror.Invalid("company.document", "CNPJ já cadastrado")
					}
					return err
				}
				user.CompanyID = company.ID
				user.Role = models.RoleAdmin
			} else {
				if _, err := tx.GetCompany(c.UserContext(), body.CompanyID); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						return apperror.Invalid("companyId", "empresa não encontrada")
					}
					return err
				}
				user.CompanyID = body.CompanyID
			}

			if err := tx.CreateUser(c.UserContext(), &user); err != nil {
				if errors.Is(err, storage.ErrConflict) {
					return apperror.Invalid("username", "usuário já existe")
				}
				return err
			}
			return nil
		})
		if err != nil {
			return apperror.Wrap(err, "Empresa não encontrada", "Erro ao cadastrar usuário")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o token")
		}

		return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, User: &user})
	}
}

func LoginHandler(cfg *config.Config, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		user, err := authenticate(c.UserContext(), store, body)
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o token")
		}

		return c.JSON(AuthResponse{Token: token, User: user})
	}
}

// authenticate answers every mismatch with the same 401 so callers cannot
// probe usernames or companies.
func authenticate(ctx context.Context, store storage.Storage, body LoginRequest) (*models.User, error) {
	denied := fiber.NewError(fiber.StatusUnauthorized, "Usuário ou senha inválidos")

	user, err := store.GetUserByUsername(ctx, body.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, denied
		}
		return nil, apperror.Wrap(err, "", "Erro ao autenticar")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		return nil, denied
	}
	if !user.IsActive {
		return nil, denied
	}
	if body.CompanyID != "" && body.CompanyID != user.CompanyID {
		return nil, denied
	}
	return user, nil
}

func MeHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := store.GetUser(c.UserContext(), UserID(c))
		if err != nil || user.CompanyID != CompanyID(c) {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuário não encontrado")
		}

		company, err := store.GetCompany(c.UserContext(), user.CompanyID)
		if err != nil {
			return apperror.Wrap(err, "Empresa não encontrada", "Erro ao buscar empresa")
		}

		return c.JSON(fiber.Map{
			"user": user,
			"company": fiber.Map{
				"id":   company.ID,
				"name": company.Name,
			},
		})
	}
}
