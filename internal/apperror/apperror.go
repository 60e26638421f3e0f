// Package apperror maps domain and storage failures onto HTTP responses.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const (
	msgInvalid  = "Dados inválidos"
	msgInternal = "Erro interno do servidor"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is answered with 400 and the field list.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validação: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns e for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when nothing was added, so callers can write
// `return v.OrNil()` after a block of checks.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func Invalid(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}

// InternalError carries the operation-specific message shown to the user
// while the wrapped cause is only logged.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// Wrap classifies err for the error handler. Storage misses become 404 with
// notFound as message, conflicts 409, validation errors pass through and
// anything else becomes an InternalError reporting failMsg.
func Wrap(err error, notFound, failMsg string) error {
	var ve *ValidationError
	var fe *fiber.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve), errors.As(err, &fe):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, "Registro em conflito com dados existentes")
	default:
		return &InternalError{Message: failMsg, Err: err}
	}
}

// BindJSON decodes the request body into out, turning decode failures into
// a ValidationError naming the offending field when known.
func BindJSON(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return Invalid("body", "corpo da requisição vazio")
	}
	if err := c.App().Config().JSONDecoder(c.Body(), out); err != nil {
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) error {
	var enumErr *models.EnumError
	var dtErr *models.DateTimeError
	var amountErr *models.AmountError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &enumErr):
		return Invalid(enumErr.Field, enumErr.Error())
	case errors.As(err, &dtErr):
		return Invalid("date", dtErr.Error())
	case errors.As(err, &amountErr):
		return Invalid("amount", amountErr.Error())
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return Invalid(field, fmt.Sprintf("tipo inválido, esperado %s", typeErr.Type))
	case errors.As(err, &syntaxErr):
		return Invalid("body", "JSON malformado")
	default:
		return Invalid("body", "corpo da requisição inválido")
	}
}

// Handler is the Fiber ErrorHandler. Every error body has a message; only
// validation failures add errors.
func Handler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": msgInvalid,
				"errors":  ve.Fields,
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Registro não encontrado"})
		}

		msg := msgInternal
		var ie *InternalError
		if errors.As(err, &ie) {
			msg = ie.Message
		}
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msg})
	}
}
