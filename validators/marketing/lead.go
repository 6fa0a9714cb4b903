package marketingValidator

import (
	"strconv"
	"strings"

	"campus/validators"
)

type LeadForm struct {
	Organization string `form:"organization" validate:"min=2"`
	ContactName  string `form:"contactName" validate:"min=2"`
	Email        string `form:"email" validate:"email"`
	Phone        string `form:"phone"`
	Headcount    string `form:"headcount" validate:"omitempty,number"`
	Message      string `form:"message"`
}

type LeadInput struct {
	Organization string
	ContactName  string
	Email        string
	Phone        *string
	Headcount    *int
	Message      *string
}

func init() {
	validators.RegisterMessages(map[string]string{
		"LeadForm.organization.min": "Informe o nome da escola ou rede.",
		"LeadForm.contactName.min":  "Informe o nome do contato.",
		"LeadForm.email.email":      "Informe um e-mail válido.",
		"LeadForm.headcount.number": "Informe apenas números.",
	})
}

func CheckLead(form LeadForm) (*LeadInput, validators.FieldErrors) {
	form.Organization = strings.TrimSpace(form.Organization)
	form.ContactName = strings.TrimSpace(form.ContactName)
	form.Email = strings.TrimSpace(form.Email)
	form.Headcount = strings.TrimSpace(form.Headcount)

	errs := validators.Struct(form)
	var headcount *int
	if form.Headcount != "" && len(errs["headcount"]) == 0 {
		n, err := strconv.Atoi(form.Headcount)
		if err != nil {
			errs = validators.Merge(errs, validators.FieldErrors{"headcount": {"Informe apenas números."}})
		} else {
			headcount = &n
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &LeadInput{
		Organization: form.Organization,
		ContactName:  form.ContactName,
		Email:        form.Email,
		Phone:        validators.Optional(form.Phone),
		Headcount:    headcount,
		Message:      validators.Optional(form.Message),
	}, nil
}
