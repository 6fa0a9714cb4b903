// Package catalog assembles the course -> module -> lesson -> material trees
// shown to students. Read failures are logged and degrade to empty results.
package catalog

import (
	"context"

	"campus/database"
	"campus/logger"
	courseModels "campus/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Catalog struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Catalog {
	return &Catalog{log: log.With("catalog")}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func byCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// progressByLesson loads the user's progress for every lesson in one query.
func (c *Catalog) progressByLesson(tx *gorm.DB, userID *uuid.UUID, lessonIDs []uuid.UUID) map[uuid.UUID]courseModels.LessonProgress {
	out := make(map[uuid.UUID]courseModels.LessonProgress)
	if userID == nil || len(lessonIDs) == 0 {
		return out
	}

	var rows []courseModels.LessonProgress
	err := tx.Select("lesson_id", "status", "completed_at").
		Where("user_id = ? AND lesson_id IN ?", *userID, lessonIDs).
		Find(&rows).Error
	if err != nil {
		c.log.Error("Failed to load lesson progress", logger.Fields{"userId": *userID}, err)
		return out
	}
	for _, row := range rows {
		out[row.LessonID] = row
	}
	return out
}

// ListAvailableCourses returns every course with lesson totals and, for a
// signed-in user, completion counts.
func (c *Catalog) ListAvailableCourses(ctx context.Context, sess database.Session, userID *uuid.UUID) []CourseSummary {
	var summaries []CourseSummary
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		var courses []courseModels.Course
		err := tx.Order("created_at ASC").
			Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Select("id", "course_id") }).
			Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB { return db.Select("id", "module_id") }).
			Find(&courses).Error
		if err != nil {
			return err
		}

		lessonsByCourse := make([][]uuid.UUID, len(courses))
		var allLessons []uuid.UUID
		for i, course := range courses {
			for _, module := range course.Modules {
				for _, lesson := range module.Lessons {
					lessonsByCourse[i] = append(lessonsByCourse[i], lesson.ID)
					allLessons = append(allLessons, lesson.ID)
				}
			}
		}
		progress := c.progressByLesson(tx, userID, allLessons)

		summaries = make([]CourseSummary, 0, len(courses))
		for i, course := range courses {
			completed := 0
			for _, id := range lessonsByCourse[i] {
				if progress[id].Status == courseModels.StatusCompleted {
					completed++
				}
			}
			course.Modules = nil
			summaries = append(summaries, CourseSummary{
				Course:        course,
				ProgressStats: buildProgressStats(len(lessonsByCourse[i]), completed),
			})
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to load available courses", err)
		return []CourseSummary{}
	}
	return summaries
}

// GetCourseWithContent returns the full course tree ordered by position, or
// nil when the course is missing or unreadable.
func (c *Catalog) GetCourseWithContent(ctx context.Context, sess database.Session, slug string, userID *uuid.UUID) *CourseWithContent {
	var result *CourseWithContent
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		var courses []courseModels.Course
		err := tx.Where("slug = ?", slug).Limit(1).
			Preload("Modules", byPosition).
			Preload("Modules.Lessons", byPosition).
			Preload("Modules.Lessons.Materials", byCreation).
			Find(&courses).Error
		if err != nil || len(courses) == 0 {
			return err
		}
		course := courses[0]

		var lessonIDs []uuid.UUID
		for _, module := range course.Modules {
			for _, lesson := range module.Lessons {
				lessonIDs = append(lessonIDs, lesson.ID)
			}
		}
		progress := c.progressByLesson(tx, userID, lessonIDs)

		modules := make([]ModuleWithLessons, 0, len(course.Modules))
		completed := 0
		for _, module := range course.Modules {
			lessons := make([]LessonWithMaterials, 0, len(module.Lessons))
			for _, lesson := range module.Lessons {
				view := withProgress(lesson, progress)
				if view.IsCompleted {
					completed++
				}
				lessons = append(lessons, view)
			}
			module.Lessons = nil
			modules = append(modules, ModuleWithLessons{Module: module, Lessons: lessons})
		}
		course.Modules = nil

		result = &CourseWithContent{
			Course:        course,
			Modules:       modules,
			ProgressStats: buildProgressStats(len(lessonIDs), completed),
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to load course by slug", logger.Fields{"slug": slug}, err)
		return nil
	}
	return result
}

func withProgress(lesson courseModels.Lesson, progress map[uuid.UUID]courseModels.LessonProgress) LessonWithMaterials {
	if lesson.Materials == nil {
		lesson.Materials = []courseModels.Material{}
	}
	view := LessonWithMaterials{Lesson: lesson, ProgressStatus: courseModels.StatusNotStarted}
	if row, ok := progress[lesson.ID]; ok {
		if row.Status != "" {
			view.ProgressStatus = row.Status
		}
		view.CompletedAt = row.CompletedAt
		view.IsCompleted = row.Status == courseModels.StatusCompleted
	}
	return view
}

// GetLessonWithCourseContext resolves lesson, module and course one lookup at
// a time. The course must match slug. Any missing link yields nil.
func (c *Catalog) GetLessonWithCourseContext(ctx context.Context, sess database.Session, slug string, lessonID uuid.UUID, userID *uuid.UUID) *LessonWithCourseContext {
	var result *LessonWithCourseContext
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		var lessons []courseModels.Lesson
		if err := tx.Where("id = ?", lessonID).Limit(1).Preload("Materials", byCreation).Find(&lessons).Error; err != nil {
			c.log.Error("Failed to load lesson", logger.Fields{"lessonId": lessonID}, err)
			return nil
		}
		if len(lessons) == 0 {
			return nil
		}
		lesson := lessons[0]

		var modules []courseModels.Module
		if err := tx.Where("id = ?", lesson.ModuleID).Limit(1).Find(&modules).Error; err != nil {
			c.log.Error("Failed to load lesson module", logger.Fields{"lessonId": lessonID, "moduleId": lesson.ModuleID}, err)
			return nil
		}
		if len(modules) == 0 {
			return nil
		}
		module := modules[0]

		var courses []courseModels.Course
		if err := tx.Where("id = ? AND slug = ?", module.CourseID, slug).Limit(1).Find(&courses).Error; err != nil {
			c.log.Error("Failed to load lesson course", logger.Fields{"lessonId": lessonID, "moduleId": module.ID, "courseId": module.CourseID}, err)
			return nil
		}
		if len(courses) == 0 {
			return nil
		}

		progress := c.progressByLesson(tx, userID, []uuid.UUID{lesson.ID})
		result = &LessonWithCourseContext{
			Course: CourseSummary{Course: courses[0], ProgressStats: buildProgressStats(0, 0)},
			Module: module,
			Lesson: withProgress(lesson, progress),
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to load lesson context", logger.Fields{"lessonId": lessonID}, err)
		return nil
	}
	return result
}

// ListModulesForLessonForm lists every module with its course slug and title.
func (c *Catalog) ListModulesForLessonForm(ctx context.Context, sess database.Session) []ModuleOption {
	options := []ModuleOption{}
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		var modules []courseModels.Module
		err := tx.Order("created_at ASC").Order("position ASC").
			Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Select("id", "slug", "title") }).
			Find(&modules).Error
		if err != nil {
			return err
		}
		for _, module := range modules {
			options = append(options, OptionFor(module))
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to load modules for the lesson form", err)
		return []ModuleOption{}
	}
	return options
}

// OptionFor builds the selector entry for module; Course may be nil.
func OptionFor(module courseModels.Module) ModuleOption {
	option := ModuleOption{
		ID:       module.ID,
		Title:    module.Title,
		Position: module.Position,
		CourseID: module.CourseID,
	}
	if module.Course != nil {
		option.CourseSlug = module.Course.Slug
		option.CourseTitle = module.Course.Title
	}
	return option
}

// AdminCourse is a course row on the admin page with its modules.
type AdminCourse struct {
	courseModels.Course
	ModuleCount int
}

// ListCoursesForAdmin lists courses with their module counts, newest first.
func (c *Catalog) ListCoursesForAdmin(ctx context.Context, sess database.Session) []AdminCourse {
	out := []AdminCourse{}
	err := sess.Run(ctx, func(tx *gorm.DB) error {
		var courses []courseModels.Course
		err := tx.Order("created_at DESC").
			Preload("Modules", byPosition).
			Find(&courses).Error
		if err != nil {
			return err
		}
		for _, course := range courses {
			out = append(out, AdminCourse{Course: course, ModuleCount: len(course.Modules)})
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to load courses for admin", err)
		return []AdminCourse{}
	}
	return out
}
