package validators

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/pkg/errors"
)

// FieldErrors maps a form field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	for _, existing := range f[field] {
		if existing == message {
			return
		}
	}
	f[field] = append(f[field], message)
}

// First returns the first message for field, or "".
func (f FieldErrors) First(field string) string {
	if msgs := f[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

var (
	validate   *validator.Validate
	translator ut.Translator

	// per-field overrides keyed "Struct.field.tag" or "field.tag"
	messages = map[string]string{}

	slugRegex    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
	httpRegex    = regexp.MustCompile(`(?i)^https?://`)
)

func init() {
	validate = validator.New()

	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	translator, _ = uni.GetTranslator("pt_BR")
	_ = ptBRTranslations.RegisterDefaultTranslations(validate, translator)

	// form tag names in errors instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	register("slug", "{0} deve conter apenas letras minusculas, numeros e hifens", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	register("coverurl", "{0} deve ser uma URL http(s) ou um caminho iniciado por /", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return strings.HasPrefix(v, "/") || httpRegex.MatchString(v)
	})
	register("integer", "{0} deve ser um numero inteiro", func(fl validator.FieldLevel) bool {
		return integerRegex.MatchString(fl.Field().String())
	})
	register("posint", "{0} deve ser maior ou igual a 1", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimPrefix(fl.Field().String(), "+"))
		return err == nil && n >= 1
	})
}

func register(tag, text string, fn validator.Func) {
	_ = validate.RegisterValidation(tag, fn)
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// RegisterMessages installs custom messages. Keys are "Struct.field.tag" for
// a single form or "field.tag" for every form with that field.
func RegisterMessages(m map[string]string) {
	for k, v := range m {
		messages[k] = v
	}
}

// Struct validates v and returns nil when it is valid.
func Struct(v interface{}) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": {err.Error()}}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Namespace()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Translate(translator)
}

// Merge folds extra into errs, allocating when needed.
func Merge(errs FieldErrors, extra FieldErrors) FieldErrors {
	if len(extra) == 0 {
		return errs
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	for field, msgs := range extra {
		for _, msg := range msgs {
			errs.Add(field, msg)
		}
	}
	return errs
}

// Optional trims s and returns nil when nothing is left.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IsUUID reports whether s is a canonical UUID.
func IsUUID(s string) bool {
	return validate.Var(s, "required,uuid") == nil
}
