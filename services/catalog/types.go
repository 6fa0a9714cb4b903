package catalog

import (
	"math"
	"time"

	courseModels "campus/models/course"

	"github.com/google/uuid"
)

// ProgressStats is the completion summary of a course for one user.
type ProgressStats struct {
	TotalLessons         int `json:"totalLessons"`
	CompletedLessons     int `json:"completedLessons"`
	CompletionPercentage int `json:"completionPercentage"`
}

func buildProgressStats(total, completed int) ProgressStats {
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return ProgressStats{TotalLessons: total, CompletedLessons: completed, CompletionPercentage: percentage}
}

type CourseSummary struct {
	courseModels.Course
	ProgressStats
}

type LessonWithMaterials struct {
	courseModels.Lesson
	ProgressStatus courseModels.ProgressStatus `json:"progressStatus"`
	CompletedAt    *time.Time                  `json:"completedAt"`
	IsCompleted    bool                        `json:"isCompleted"`
}

type ModuleWithLessons struct {
	courseModels.Module
	Lessons []LessonWithMaterials `json:"lessons"`
}

// CompletedLessons counts the completed lessons of the module.
func (m ModuleWithLessons) CompletedLessons() int {
	completed := 0
	for _, lesson := range m.Lessons {
		if lesson.IsCompleted {
			completed++
		}
	}
	return completed
}

type CourseWithContent struct {
	courseModels.Course
	Modules []ModuleWithLessons `json:"modules"`
	ProgressStats
}

type LessonWithCourseContext struct {
	Course CourseSummary       `json:"course"`
	Module courseModels.Module `json:"module"`
	Lesson LessonWithMaterials `json:"lesson"`
}

// ModuleOption feeds the module selector of the lesson form.
type ModuleOption struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	CourseID    uuid.UUID `json:"courseId"`
	CourseSlug  string    `json:"courseSlug"`
	CourseTitle string    `json:"courseTitle"`
}

// Overall sums the progress of every course.
func Overall(courses []CourseSummary) ProgressStats {
	total, completed := 0, 0
	for _, course := range courses {
		total += course.TotalLessons
		completed += course.CompletedLessons
	}
	return buildProgressStats(total, completed)
}
