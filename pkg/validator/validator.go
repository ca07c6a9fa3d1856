package validator

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

var otpCodePattern = regexp.MustCompile(`^\d{6}$`)

// CustomValidator wraps the validator instance for Echo.
type CustomValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func New() *CustomValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := field.Tag.Get("json")
		if tag == "" {
			return field.Name
		}

		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("failed to register validator default translations: " + err.Error())
	}

	registerCustom(validate, trans, "channel", "{0} must be one of SMS, WhatsApp, Email, Notification", validateChannel)
	registerCustom(validate, trans, "otpcode", "{0} must be a 6 digit code", validateOtpCode)

	return &CustomValidator{
		validator:  validate,
		translator: trans,
	}
}

func registerCustom(validate *validator.Validate, trans ut.Translator, tag, text string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic("failed to register validation " + tag + ": " + err.Error())
	}

	err := validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
	if err != nil {
		panic("failed to register translation " + tag + ": " + err.Error())
	}
}

func validateChannel(fl validator.FieldLevel) bool {
	return domain.Channel(fl.Field().String()).Valid()
}

func validateOtpCode(fl validator.FieldLevel) bool {
	return otpCodePattern.MatchString(fl.Field().String())
}

// Validate implements echo.Validator. Field errors come back as *ValidationError
// keyed by the json name of the field.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		// The first failing rule of a field wins.
		if _, seen := details[fe.Field()]; !seen {
			details[fe.Field()] = fe.Translate(cv.translator)
		}
	}
	return &ValidationError{Errors: details}
}

type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error lists the field messages sorted by field name.
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, field+": "+e.Errors[field])
	}
	return strings.Join(messages, "; ")
}

type ValidationErrorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// HandleValidationError answers 422 for field errors and 400 for anything else
// the validator could not check.
func HandleValidationError(c echo.Context, err error) error {
	body := ValidationErrorResponse{
		Error:     err.Error(),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, body)
	}

	body.Error = "Validation failed"
	body.Details = ve.Errors
	return c.JSON(http.StatusUnprocessableEntity, body)
}
