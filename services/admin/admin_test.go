package admin_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"campus/auth"
	"campus/database"
	"campus/database/dbtest"
	"campus/logger"
	"campus/models"
	courseModels "campus/models/course"
	"campus/services/admin"
	"campus/services/catalog"
	"campus/services/materials"
	"campus/storage"
	courseValidator "campus/validators/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(ctx context.Context, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
}

type env struct {
	client      *database.Client
	db          *gorm.DB
	svc         *admin.Service
	files       *materials.Service
	catalog     *catalog.Catalog
	revalidator *recordingRevalidator
	admin       *auth.SessionUser
	student     *auth.SessionUser
}

func newEnv(t *testing.T, wrap func(*database.Client) database.Sessions) *env {
	t.Helper()
	client := dbtest.New(t)
	ctx := context.Background()
	accounts := auth.NewAccounts(client.DB(), logger.Discard())

	adminUser, err := accounts.CreateUser(ctx, "admin@example.com", "segredo123", models.RoleAdmin)
	require.NoError(t, err)
	studentUser, err := accounts.CreateUser(ctx, "aluno@example.com", "segredo123", models.RoleStudent)
	require.NoError(t, err)

	var sessions database.Sessions = client
	if wrap != nil {
		sessions = wrap(client)
	}
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	e := &env{
		client:      client,
		db:          client.DB(),
		catalog:     catalog.New(logger.Discard()),
		revalidator: &recordingRevalidator{},
		admin:       &auth.SessionUser{ID: adminUser.ID, Email: adminUser.Email},
		student:     &auth.SessionUser{ID: studentUser.ID, Email: studentUser.Email},
	}
	e.files = materials.NewService(sessions, store, storage.NewSigner("0123456789abcdef0123456789abcdef", ""), logger.Discard())
	e.svc = admin.NewService(sessions, auth.NewGuard(sessions, logger.Discard()), e.catalog, e.files, e.revalidator, logger.Discard())
	return e
}

func (e *env) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *env) seedModule(t *testing.T, slug string) (courseModels.Course, courseModels.Module) {
	t.Helper()
	course := courseModels.Course{Slug: slug, Title: "Curso " + slug}
	require.NoError(t, e.db.Create(&course).Error)
	module := courseModels.Module{CourseID: course.ID, Title: "Modulo 1", Position: 1}
	require.NoError(t, e.db.Create(&module).Error)
	return course, module
}

func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestCreateCourseScenario(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	res := e.svc.CreateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "gestao-incidentes", Title: "Gestão de Incidentes"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Curso criado com sucesso.", res.Message)
	assert.Equal(t, []string{"/admin", "/dashboard", "/curso/gestao-incidentes"}, e.revalidator.paths)

	courses := e.catalog.ListAvailableCourses(ctx, e.client.AsUser(e.admin.ID), &e.admin.ID)
	require.Len(t, courses, 1)
	assert.Equal(t, "gestao-incidentes", courses[0].Slug)
	assert.Equal(t, "Gestão de Incidentes", courses[0].Title)
	assert.Equal(t, 0, courses[0].TotalLessons)
	assert.Equal(t, 0, courses[0].CompletionPercentage)
	assert.Equal(t, courseModels.DefaultCoverURL, courses[0].CoverURL())
}

func TestCreateCourseFailures(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	res := e.svc.CreateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "Slug Invalido", Title: ""})
	assert.False(t, res.Success)
	assert.Equal(t, "Revise os dados informados.", res.Message)
	assert.NotEmpty(t, res.FieldErrors["slug"])
	assert.NotEmpty(t, res.FieldErrors["title"])

	res = e.svc.CreateCourse(ctx, nil, courseValidator.CourseForm{Slug: "curso", Title: "Curso"})
	assert.Equal(t, "Sessao expirada. Atualize a pagina e tente novamente.", res.Message)

	res = e.svc.CreateCourse(ctx, e.student, courseValidator.CourseForm{Slug: "curso", Title: "Curso"})
	assert.Equal(t, "Voce nao tem permissao para gerenciar cursos.", res.Message)
	assert.Zero(t, e.count(t, &courseModels.Course{}))

	require.True(t, e.svc.CreateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "curso", Title: "Curso"}).Success)
	res = e.svc.CreateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "curso", Title: "Outro"})
	assert.False(t, res.Success)
	assert.Equal(t, "Ja existe um curso com este slug. Escolha outro slug.", res.Message)
	assert.Equal(t, int64(1), e.count(t, &courseModels.Course{}))
}

func TestCreateCourseRowLevelDenied(t *testing.T) {
	e := newEnv(t, func(c *database.Client) database.Sessions {
		return &dbtest.Sessions{Client: c, UserSession: &dbtest.WriteDeniedSession{Session: c.Anon()}}
	})

	res := e.svc.CreateCourse(context.Background(), e.admin, courseValidator.CourseForm{Slug: "curso", Title: "Curso"})
	assert.False(t, res.Success)
	assert.Equal(t, "Voce nao tem permissao para salvar cursos (RLS).", res.Message)
	assert.Empty(t, e.revalidator.paths)
}

func TestCourseWritesReportConnectionFailures(t *testing.T) {
	offline := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	e := newEnv(t, func(c *database.Client) database.Sessions {
		return &dbtest.Sessions{Client: c, UserSession: &dbtest.WriteFailingSession{Session: c.Anon(), Err: offline}}
	})
	ctx := context.Background()
	course, _ := e.seedModule(t, "existente")

	res := e.svc.CreateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "curso", Title: "Curso"})
	assert.False(t, res.Success)
	assert.Equal(t, "Falha de conexão com o banco de dados. Verifique a rede e tente novamente.", res.Message)

	res = e.svc.UpdateCourse(ctx, e.admin, courseValidator.CourseForm{CourseID: course.ID.String(), Slug: "novo", Title: "Novo"})
	assert.False(t, res.Success)
	assert.Equal(t, "Falha de conexão com o banco de dados. Verifique a rede e tente novamente.", res.Message)
	assert.Empty(t, e.revalidator.paths)
}

func TestUpdateCourse(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	course, _ := e.seedModule(t, "antigo")

	res := e.svc.UpdateCourse(ctx, e.admin, courseValidator.CourseForm{
		CourseID:      course.ID.String(),
		Slug:          "novo",
		Title:         "Novo titulo",
		CoverImageURL: "/capas/novo.png",
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Curso atualizado com sucesso.", res.Message)
	assert.ElementsMatch(t, []string{"/admin", "/dashboard", "/curso/novo", "/curso/antigo"}, e.revalidator.paths)

	var stored courseModels.Course
	require.NoError(t, e.db.First(&stored, "id = ?", course.ID).Error)
	assert.Equal(t, "novo", stored.Slug)
	assert.Equal(t, "/capas/novo.png", stored.CoverURL())

	res = e.svc.UpdateCourse(ctx, e.admin, courseValidator.CourseForm{CourseID: uuid.NewString(), Slug: "x", Title: "X"})
	assert.False(t, res.Success)
	assert.Equal(t, "Nao foi possivel salvar o curso. Tente novamente.", res.Message)

	res = e.svc.UpdateCourse(ctx, e.admin, courseValidator.CourseForm{Slug: "x", Title: "X"})
	assert.NotEmpty(t, res.FieldErrors["course_id"])
}

func TestCreateModulePositions(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	course, _ := e.seedModule(t, "gestao")

	res := e.svc.CreateModule(ctx, e.admin, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "Segundo"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Módulo criado com sucesso.", res.Message)
	require.NotNil(t, res.Option)
	assert.Equal(t, 2, res.Option.Position)
	assert.Equal(t, "gestao", res.Option.CourseSlug)
	assert.Equal(t, "Curso gestao", res.Option.CourseTitle)

	res = e.svc.CreateModule(ctx, e.admin, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "Decimo", Position: "10"})
	require.True(t, res.Success)
	assert.Equal(t, 10, res.Option.Position)

	res = e.svc.CreateModule(ctx, e.admin, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "Depois"})
	require.True(t, res.Success)
	assert.Equal(t, 11, res.Option.Position)
}

func TestCreateModuleFailures(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	course, _ := e.seedModule(t, "gestao")

	res := e.svc.CreateModule(ctx, e.admin, courseValidator.ModuleForm{CourseID: "x", Title: ""})
	assert.Equal(t, "Revise os dados informados.", res.Message)
	assert.NotEmpty(t, res.FieldErrors["course_id"])

	res = e.svc.CreateModule(ctx, e.student, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "M"})
	assert.Equal(t, "Você não tem permissão para criar módulos.", res.Message)

	res = e.svc.CreateModule(ctx, e.admin, courseValidator.ModuleForm{CourseID: uuid.NewString(), Title: "M"})
	assert.Equal(t, "Curso não encontrado para criação do módulo.", res.Message)
	assert.Equal(t, int64(1), e.count(t, &courseModels.Module{}))
}

func TestCreateModuleRowLevelDenied(t *testing.T) {
	e := newEnv(t, func(c *database.Client) database.Sessions {
		return &dbtest.Sessions{Client: c, UserSession: &dbtest.WriteDeniedSession{Session: c.Anon()}}
	})
	course, _ := e.seedModule(t, "gestao")

	res := e.svc.CreateModule(context.Background(), e.admin, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "M"})
	assert.False(t, res.Success)
	assert.Equal(t, "Você não tem permissão para criar módulos (RLS).", res.Message)
	assert.Nil(t, res.Option)

	e.svc.WithErrorDetails(true)
	res = e.svc.CreateModule(context.Background(), e.admin, courseValidator.ModuleForm{CourseID: course.ID.String(), Title: "M"})
	assert.True(t, strings.HasPrefix(res.Message, "Você não tem permissão para criar módulos (RLS). Detalhes: "))
}

func lessonForm(moduleID string) courseValidator.LessonForm {
	return courseValidator.LessonForm{
		ModuleID: moduleID,
		Title:    "Aula 1",
		VideoURL: "https://video.example.com/aula-1",
		Position: "1",
	}
}

func TestCreateLessonRequiresAdmin(t *testing.T) {
	e := newEnv(t, nil)
	_, module := e.seedModule(t, "gestao")

	res := e.svc.CreateLesson(context.Background(), e.student, lessonForm(module.ID.String()), nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "permiss")
	assert.Zero(t, e.count(t, &courseModels.Lesson{}))

	res = e.svc.CreateLesson(context.Background(), nil, lessonForm(module.ID.String()), nil)
	assert.False(t, res.Success)
	assert.Equal(t, "/login?redirectTo=%2Fdashboard%2Faulas%2Fnova", res.Redirect)
}

func TestCreateLessonInvalidModule(t *testing.T) {
	e := newEnv(t, nil)
	e.seedModule(t, "gestao")

	res := e.svc.CreateLesson(context.Background(), e.admin, lessonForm("nao-e-uuid"), nil)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.FieldErrors["module_id"])

	res = e.svc.CreateLesson(context.Background(), e.admin, lessonForm(uuid.NewString()), nil)
	assert.False(t, res.Success)
	assert.Equal(t, "O módulo selecionado não existe mais.", res.Message)

	assert.Zero(t, e.count(t, &courseModels.Lesson{}))
	assert.Zero(t, e.count(t, &courseModels.Material{}))
}

func TestCreateLessonWithLink(t *testing.T) {
	e := newEnv(t, nil)
	_, module := e.seedModule(t, "gestao")

	form := lessonForm(module.ID.String())
	form.MaterialLabel = "Apostila"
	form.MaterialURL = "https://docs.example.com/apostila"

	res := e.svc.CreateLesson(context.Background(), e.admin, form, nil)
	require.True(t, res.Success, res.Message)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "/curso/gestao", res.Redirect)
	assert.Contains(t, e.revalidator.paths, "/curso/gestao")

	var material courseModels.Material
	require.NoError(t, e.db.First(&material).Error)
	assert.Equal(t, courseModels.SourceLink, material.SourceKind)
	assert.Equal(t, courseModels.MaterialLink, material.MaterialType)
	require.NotNil(t, material.ResourceURL)
	assert.Equal(t, "https://docs.example.com/apostila", *material.ResourceURL)
}

func TestCreateLessonClaimsPreUpload(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, module := e.seedModule(t, "gestao")
	draftID := uuid.New()

	meta, apiErr := e.files.Upload(ctx, e.admin, materials.UploadRequest{
		LessonID: draftID,
		ModuleID: module.ID.String(),
		File:     fileHeader(t, "Slides Aula.pdf", "application/pdf", []byte("%PDF-1.4")),
	})
	require.Nil(t, apiErr)
	require.Equal(t, int64(1), e.count(t, &models.PendingUpload{}))

	form := lessonForm(module.ID.String())
	form.LessonID = draftID.String()
	form.MaterialLabel = "Slides"
	form.MaterialSource = "UPLOAD"
	form.StorageBucket = meta.Bucket
	form.StoragePath = meta.Path
	form.MimeType = "application/pdf"
	form.SizeBytes = "8"
	form.OriginalFileName = meta.OriginalFileName

	res := e.svc.CreateLesson(ctx, e.admin, form, nil)
	require.True(t, res.Success, res.Message)
	assert.Empty(t, res.Warning)

	var lesson courseModels.Lesson
	require.NoError(t, e.db.First(&lesson).Error)
	assert.Equal(t, draftID, lesson.ID)

	var material courseModels.Material
	require.NoError(t, e.db.First(&material).Error)
	assert.Equal(t, courseModels.SourceUpload, material.SourceKind)
	assert.Equal(t, courseModels.MaterialPDF, material.MaterialType)
	assert.Equal(t, meta.Path, *material.StoragePath)
	assert.Equal(t, "Slides Aula.pdf", *material.OriginalFileName)
	assert.Nil(t, material.ResourceURL)

	assert.Zero(t, e.count(t, &models.PendingUpload{}))
}

func TestCreateLessonRejectsForeignUpload(t *testing.T) {
	e := newEnv(t, nil)
	course, module := e.seedModule(t, "gestao")

	form := lessonForm(module.ID.String())
	form.LessonID = uuid.NewString()
	form.MaterialLabel = "Slides"
	form.MaterialSource = "UPLOAD"
	form.StorageBucket = storage.MaterialsBucket
	form.StoragePath = materials.LessonPrefix(course.ID, uuid.New()) + "x-slides.pdf"

	res := e.svc.CreateLesson(context.Background(), e.admin, form, nil)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.FieldErrors["material_file"])
	assert.Zero(t, e.count(t, &courseModels.Lesson{}))
}

func TestCreateLessonWithFile(t *testing.T) {
	e := newEnv(t, nil)
	course, module := e.seedModule(t, "gestao")

	form := lessonForm(module.ID.String())
	form.MaterialLabel = "Planilha"
	res := e.svc.CreateLesson(context.Background(), e.admin, form, fileHeader(t, "dados.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK")))
	require.True(t, res.Success, res.Message)
	assert.Empty(t, res.Warning)

	var lesson courseModels.Lesson
	require.NoError(t, e.db.First(&lesson).Error)
	var material courseModels.Material
	require.NoError(t, e.db.First(&material).Error)
	assert.Equal(t, courseModels.SourceUpload, material.SourceKind)
	assert.Equal(t, courseModels.MaterialArquivo, material.MaterialType)
	assert.True(t, strings.HasPrefix(*material.StoragePath, materials.LessonPrefix(course.ID, lesson.ID)))
	require.NotNil(t, material.FileSizeBytes)
	assert.Equal(t, int64(2), *material.FileSizeBytes)
}

func TestCreateLessonMaterialFailureKeepsLesson(t *testing.T) {
	e := newEnv(t, nil)
	_, module := e.seedModule(t, "gestao")

	form := lessonForm(module.ID.String())
	form.MaterialLabel = "Executavel"
	res := e.svc.CreateLesson(context.Background(), e.admin, form, fileHeader(t, "setup.exe", "application/octet-stream", []byte("MZ")))
	assert.True(t, res.Success)
	assert.Equal(t, "/curso/gestao", res.Redirect)
	assert.Contains(t, res.Warning, "Tipo de arquivo nao permitido")

	assert.Equal(t, int64(1), e.count(t, &courseModels.Lesson{}))
	assert.Zero(t, e.count(t, &courseModels.Material{}))
}

func TestOverview(t *testing.T) {
	e := newEnv(t, nil)
	e.seedModule(t, "gestao")
	require.NoError(t, e.db.Create(&models.InstitutionalLead{Organization: "Escola", ContactName: "Ana", Email: "ana@escola.br"}).Error)

	overview := e.svc.Overview(context.Background(), e.admin)
	require.Len(t, overview.Courses, 1)
	assert.Equal(t, 1, overview.Courses[0].ModuleCount)
	assert.Len(t, overview.Modules, 1)
	assert.Equal(t, int64(1), overview.LeadsToday)
	assert.Equal(t, int64(1), overview.LeadsTotal)
}
