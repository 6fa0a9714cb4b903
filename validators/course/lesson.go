package courseValidator

import (
	"strconv"
	"strings"

	courseModels "campus/models/course"
	"campus/validators"

	"github.com/google/uuid"
)

// ============ Lesson ============

// LessonForm is the "new lesson" submission. The material_* fields describe
// an optional attachment: a link, a file sent with the form, or a file that
// was uploaded earlier against lesson_id (material_storage_*).
type LessonForm struct {
	ModuleID    string `form:"module_id" validate:"required,uuid"`
	LessonID    string `form:"lesson_id" validate:"omitempty,uuid"`
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	VideoURL    string `form:"video_url" validate:"required,url"`
	Position    string `form:"position" validate:"required,integer,posint"`

	MaterialLabel       string `form:"material_label"`
	MaterialDescription string `form:"material_description"`
	MaterialURL         string `form:"material_url" validate:"omitempty,url"`
	MaterialSource      string `form:"material_source" validate:"omitempty,oneof=LINK UPLOAD"`
	MaterialType        string `form:"material_type" validate:"omitempty,oneof=PDF LINK ARQUIVO OUTRO"`
	MaterialHasFile     bool   `form:"material_has_file"`

	StorageBucket    string `form:"material_storage_bucket"`
	StoragePath      string `form:"material_storage_path"`
	MimeType         string `form:"material_mime_type"`
	SizeBytes        string `form:"material_size_bytes" validate:"omitempty,number"`
	OriginalFileName string `form:"material_original_file_name"`
}

// UploadedFile describes an object already present in storage.
type UploadedFile struct {
	Bucket           string
	Path             string
	MimeType         *string
	SizeBytes        int64
	OriginalFileName string
}

type MaterialInput struct {
	Label       string
	Description *string
	Type        courseModels.MaterialType
	Source      courseModels.SourceKind
	URL         string
	// Uploaded is set when the file was sent ahead of the form.
	Uploaded *UploadedFile
	// ExpectsFile is set when the file travels with this submission.
	ExpectsFile bool
}

type LessonInput struct {
	ModuleID    uuid.UUID
	LessonID    uuid.UUID // uuid.Nil lets the database pick one
	Title       string
	Description *string
	VideoURL    string
	Position    int
	Material    *MaterialInput
}

func init() {
	validators.RegisterMessages(map[string]string{
		"LessonForm.module_id.required":         "Selecione um modulo",
		"LessonForm.module_id.uuid":             "Selecione um modulo valido.",
		"LessonForm.lesson_id.uuid":             "Identificador de aula invalido.",
		"LessonForm.title.required":             "Titulo e obrigatorio.",
		"LessonForm.video_url.required":         "Informe a URL do video",
		"LessonForm.video_url.url":              "Informe uma URL valida.",
		"LessonForm.position.required":          "Informe a posicao na ordem do modulo",
		"LessonForm.position.integer":           "Posicao deve ser um numero inteiro.",
		"LessonForm.position.posint":            "Posicao minima e 1.",
		"LessonForm.material_url.url":           "Informe uma URL valida para o material complementar.",
		"LessonForm.material_source.oneof":      "Origem do material invalida.",
		"LessonForm.material_type.oneof":        "Tipo de material invalido.",
		"LessonForm.material_size_bytes.number": "Tamanho do arquivo invalido.",
	})
}

func (f *LessonForm) normalize() {
	f.ModuleID = strings.ToLower(strings.TrimSpace(f.ModuleID))
	f.LessonID = strings.ToLower(strings.TrimSpace(f.LessonID))
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.VideoURL = strings.TrimSpace(f.VideoURL)
	f.Position = strings.TrimSpace(f.Position)
	f.MaterialLabel = strings.TrimSpace(f.MaterialLabel)
	f.MaterialDescription = strings.TrimSpace(f.MaterialDescription)
	f.MaterialURL = strings.TrimSpace(f.MaterialURL)
	f.MaterialSource = strings.ToUpper(strings.TrimSpace(f.MaterialSource))
	f.MaterialType = strings.ToUpper(strings.TrimSpace(f.MaterialType))
	f.StorageBucket = strings.TrimSpace(f.StorageBucket)
	f.StoragePath = strings.TrimSpace(f.StoragePath)
	f.MimeType = strings.TrimSpace(f.MimeType)
	f.SizeBytes = strings.TrimSpace(f.SizeBytes)
	f.OriginalFileName = strings.TrimSpace(f.OriginalFileName)
}

func (f *LessonForm) hasUploaded() bool {
	return f.StoragePath != ""
}

func (f *LessonForm) hasAnyMaterialField() bool {
	return f.MaterialLabel != "" || f.MaterialDescription != "" || f.MaterialURL != "" ||
		f.MaterialType != "" || f.MaterialHasFile || f.hasUploaded()
}

// materialSource picks the declared source, or infers it from what was sent.
func (f *LessonForm) materialSource() courseModels.SourceKind {
	switch f.MaterialSource {
	case string(courseModels.SourceUpload):
		return courseModels.SourceUpload
	case string(courseModels.SourceLink):
		return courseModels.SourceLink
	}
	if f.MaterialURL == "" && (f.MaterialHasFile || f.hasUploaded()) {
		return courseModels.SourceUpload
	}
	return courseModels.SourceLink
}

func (f *LessonForm) checkMaterial() validators.FieldErrors {
	errs := validators.FieldErrors{}
	if !f.hasAnyMaterialField() {
		return errs
	}

	if f.MaterialLabel == "" {
		errs.Add("material_label", "Informe o titulo do material complementar.")
	}

	switch f.materialSource() {
	case courseModels.SourceLink:
		if f.MaterialHasFile || f.hasUploaded() {
			errs.Add("material_file", "Escolha entre link ou arquivo para o material complementar.")
		} else if f.MaterialURL == "" {
			errs.Add("material_url", "Informe a URL do material complementar.")
		}
	case courseModels.SourceUpload:
		if f.MaterialURL != "" {
			errs.Add("material_url", "Remova a URL ao enviar um arquivo como material complementar.")
		}
		if f.MaterialHasFile && f.hasUploaded() {
			errs.Add("material_file", "Envie apenas um arquivo para o material complementar.")
		} else if !f.MaterialHasFile && !f.hasUploaded() {
			errs.Add("material_file", "Selecione um arquivo para o material complementar.")
		}
		if f.hasUploaded() && f.LessonID == "" {
			errs.Add("material_file", "Arquivo enviado sem identificador de aula. Envie o arquivo novamente.")
		}
	}
	return errs
}

// CheckLesson validates a lesson form, including its optional attachment.
func CheckLesson(form LessonForm) (*LessonInput, validators.FieldErrors) {
	form.normalize()
	errs := validators.Merge(validators.Struct(form), form.checkMaterial())
	if len(errs) > 0 {
		return nil, errs
	}

	position, _ := strconv.Atoi(strings.TrimPrefix(form.Position, "+"))
	input := &LessonInput{
		ModuleID:    uuid.MustParse(form.ModuleID),
		Title:       form.Title,
		Description: validators.Optional(form.Description),
		VideoURL:    form.VideoURL,
		Position:    position,
	}
	if form.LessonID != "" {
		input.LessonID = uuid.MustParse(form.LessonID)
	}
	if !form.hasAnyMaterialField() {
		return input, nil
	}

	material := &MaterialInput{
		Label:       form.MaterialLabel,
		Description: validators.Optional(form.MaterialDescription),
		Source:      form.materialSource(),
		Type:        courseModels.MaterialType(form.MaterialType),
	}
	if material.Source == courseModels.SourceLink {
		material.URL = form.MaterialURL
		if material.Type == "" {
			material.Type = courseModels.MaterialLink
		}
		input.Material = material
		return input, nil
	}

	material.ExpectsFile = form.MaterialHasFile
	if form.hasUploaded() {
		size, _ := strconv.ParseInt(form.SizeBytes, 10, 64)
		material.Uploaded = &UploadedFile{
			Bucket:           form.StorageBucket,
			Path:             form.StoragePath,
			MimeType:         validators.Optional(form.MimeType),
			SizeBytes:        size,
			OriginalFileName: form.OriginalFileName,
		}
	}
	input.Material = material
	return input, nil
}

// MaterialTypeForFile picks a material type for an uploaded file whose type
// was left blank.
func MaterialTypeForFile(declared courseModels.MaterialType, extension string) courseModels.MaterialType {
	if declared != "" {
		return declared
	}
	if strings.EqualFold(extension, "pdf") {
		return courseModels.MaterialPDF
	}
	return courseModels.MaterialArquivo
}
