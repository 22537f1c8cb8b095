package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"loja/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages maps "field.tag" of a validation failure to the message shown to
// the client.
type messages map[string]string

// check validates s and turns the first failure into an apperr validation
// error.
func check(v *validator.Validate, s any, msgs messages) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("", err.Error())
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return apperr.Validation(field, msg)
	}
	if msg, ok := msgs[fe.Field()]; ok {
		return apperr.Validation(field, msg)
	}
	return apperr.Validation(field, "Campo inválido: "+field)
}

// parseID reads the :id route parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id", "Identificador inválido")
	}
	return uint(id), nil
}

// fail writes the JSON error body for err. internal is the message of
// unexpected failures, returned with the error text as detail.
func fail(c *fiber.Ctx, err error, internal string) error {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"erro": ve.Message})
	case errors.Is(err, apperr.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"erro": "Email já cadastrado"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"erro": "Registro não encontrado"})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"erro": "Credenciais inválidas"})
	}

	logrus.WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	}).WithError(err).Error(internal)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"erro":    internal,
		"detalhe": err.Error(),
	})
}

// badBody answers a request whose JSON body could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"erro": "Corpo da requisição inválido: " + err.Error(),
	})
}
