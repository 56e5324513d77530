package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/matchroute-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("travelmode", func(fl validator.FieldLevel) bool {
		return domain.TravelMode(fl.Field().String()).Valid()
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

// Details превращает ошибки валидации в карту поле -> правило для ответа API
func Details(err error) map[string]interface{} {
	details := make(map[string]interface{})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details["error"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		details[fe.Namespace()] = fe.Tag()
	}
	return details
}
