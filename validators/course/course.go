package courseValidator

import (
	"strconv"
	"strings"

	"campus/validators"

	"github.com/google/uuid"
)

// ============ Course ============

type CourseForm struct {
	CourseID      string `form:"course_id" validate:"omitempty,uuid"`
	Slug          string `form:"slug" validate:"required,slug"`
	Title         string `form:"title" validate:"required"`
	Description   string `form:"description"`
	CoverImageURL string `form:"cover_image_url" validate:"omitempty,coverurl"`
}

type CourseInput struct {
	CourseID      uuid.UUID
	Slug          string
	Title         string
	Description   *string
	CoverImageURL *string
}

// ============ Module ============

type ModuleForm struct {
	CourseID    string `form:"course_id" validate:"required,uuid"`
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	Position    string `form:"position" validate:"omitempty,integer,posint"`
}

type ModuleInput struct {
	CourseID    uuid.UUID
	Title       string
	Description *string
	Position    int // 0 means "after the last module"
}

func init() {
	validators.RegisterMessages(map[string]string{
		"CourseForm.course_id.required":       "Curso e obrigatorio.",
		"CourseForm.course_id.uuid":           "Curso invalido.",
		"CourseForm.slug.required":            "Slug e obrigatorio.",
		"CourseForm.slug.slug":                "Use apenas letras minusculas, numeros e hifens no slug.",
		"CourseForm.title.required":           "Titulo e obrigatorio.",
		"CourseForm.cover_image_url.coverurl": "Informe uma URL http(s) ou caminho local iniciado por /.",

		"ModuleForm.course_id.required": "Curso é obrigatório.",
		"ModuleForm.course_id.uuid":     "Curso inválido.",
		"ModuleForm.title.required":     "Nome do módulo é obrigatório.",
		"ModuleForm.position.integer":   "Ordem deve ser um número inteiro.",
		"ModuleForm.position.posint":    "Ordem mínima é 1.",
	})
}

func (f *CourseForm) normalize() {
	f.CourseID = strings.ToLower(strings.TrimSpace(f.CourseID))
	f.Slug = strings.TrimSpace(f.Slug)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.CoverImageURL = strings.TrimSpace(f.CoverImageURL)
}

// CheckCourse validates a course form. Updates must carry the course id.
func CheckCourse(form CourseForm, update bool) (*CourseInput, validators.FieldErrors) {
	form.normalize()
	errs := validators.Struct(form)
	if update && form.CourseID == "" {
		errs = validators.Merge(errs, validators.FieldErrors{"course_id": {"Curso e obrigatorio."}})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	input := &CourseInput{
		Slug:          form.Slug,
		Title:         form.Title,
		Description:   validators.Optional(form.Description),
		CoverImageURL: validators.Optional(form.CoverImageURL),
	}
	if update {
		input.CourseID = uuid.MustParse(form.CourseID)
	}
	return input, nil
}

func CheckModule(form ModuleForm) (*ModuleInput, validators.FieldErrors) {
	form.CourseID = strings.ToLower(strings.TrimSpace(form.CourseID))
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)
	form.Position = strings.TrimSpace(form.Position)

	if errs := validators.Struct(form); len(errs) > 0 {
		return nil, errs
	}

	input := &ModuleInput{
		CourseID:    uuid.MustParse(form.CourseID),
		Title:       form.Title,
		Description: validators.Optional(form.Description),
	}
	if form.Position != "" {
		input.Position, _ = strconv.Atoi(strings.TrimPrefix(form.Position, "+"))
	}
	return input, nil
}
