package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/utils"
)

// Clock fornece o instante atual; os testes injetam um relógio fixo.
type Clock func() time.Time

// Today devolve a data corrente segundo o relógio.
func (c Clock) Today() types.Date {
	return types.Today(c)
}

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// requireUser falha antes de qualquer trabalho quando não há usuário autenticado.
func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: operação exige usuário autenticado", appErrors.ErrUnauthorized)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Nomes dos campos nos erros seguem as tags json.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("placa", func(fl validator.FieldLevel) bool {
		return utils.IsValidPlaca(models.NormalizePlaca(fl.Field().String()))
	})
	_ = v.RegisterValidation("documento", func(fl validator.FieldLevel) bool {
		return utils.IsValidDocumento(models.CleanDocumento(fl.Field().String()))
	})
	return v
}

// validationMessages traduz as tags do validator para mensagens curtas.
var validationMessages = map[string]string{
	"required":  "obrigatório",
	"min":       "abaixo do mínimo",
	"max":       "acima do máximo",
	"oneof":     "valor não permitido",
	"email":     "formato inválido",
	"placa":     "placa inválida (use ABC1234 ou ABC1D23)",
	"documento": "CPF/CNPJ inválido",
}

// processValidationErrors converte os erros do validator em campo -> mensagem.
func processValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		// Namespace vem como "BoletoInput.placas[0]"; remove o nome da struct.
		field := ve.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msg, ok := validationMessages[ve.Tag()]
		if !ok {
			msg = ve.Tag()
		}
		errorResponse[field] = msg
	}
	return errorResponse
}

// validateStruct aplica as tags validate e devolve um *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return appErrors.NewValidationError("Dados inválidos.", processValidationErrors(validationErrors))
	}
	return fmt.Errorf("%w: %v", appErrors.ErrInvalidInput, err)
}

// fieldErrors acumula erros de validação feitos à mão.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// merge junta o resultado de validateStruct com os erros manuais.
func (f fieldErrors) merge(err error) error {
	if err != nil {
		var ve *appErrors.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		for k, v := range ve.Fields {
			f.add(k, v)
		}
	}
	if len(f) == 0 {
		return nil
	}
	return appErrors.NewValidationError("Dados inválidos.", f)
}
