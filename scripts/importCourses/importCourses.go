// Command importCourses loads course content from a CSV file with the header
//
//	course_slug,course_title,module_position,module_title,lesson_position,lesson_title,video_url,lesson_description
//
// Courses are matched by slug, modules by course and position, lessons by
// module and position. Existing rows get their titles updated.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"strconv"
	"strings"

	"campus/config"
	"campus/database"
	"campus/logger"
	courseModels "campus/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var requiredColumns = []string{
	"course_slug", "course_title", "module_position", "module_title",
	"lesson_position", "lesson_title", "video_url",
}

type row struct {
	line           int
	courseSlug     string
	courseTitle    string
	modulePosition int
	moduleTitle    string
	lessonPosition int
	lessonTitle    string
	videoURL       string
	description    *string
}

func main() {
	path := flag.String("file", "courses.csv", "CSV file to import")
	flag.Parse()

	log := logger.New(logger.Options{Level: "info"}).With("import-courses")

	rows, err := readRows(*path)
	if err != nil {
		log.Fatal("Failed to read CSV", err)
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", err)
	}
	client, err := database.Connect(conf, log)
	if err != nil {
		log.Fatal("Failed to connect to the database", err)
	}
	defer client.Close()

	ctx := context.Background()
	imported := 0
	for _, r := range rows {
		err := client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return importRow(tx, r)
		})
		if err != nil {
			log.Error("Failed to import row", logger.Fields{"line": r.line, "course": r.courseSlug}, err)
			continue
		}
		imported++
	}
	log.Info("Import finished", logger.Fields{"rows": len(rows), "imported": imported})
}

func readRows(path string) ([]row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, column := range requiredColumns {
		if _, ok := headerIndex[column]; !ok {
			return nil, errors.Errorf("missing column %q", column)
		}
	}

	rows := make([]row, 0, len(records)-1)
	for i, record := range records[1:] {
		r := row{
			line:           i + 2,
			courseSlug:     getField(record, headerIndex, "course_slug"),
			courseTitle:    getField(record, headerIndex, "course_title"),
			modulePosition: parseInt(getField(record, headerIndex, "module_position")),
			moduleTitle:    getField(record, headerIndex, "module_title"),
			lessonPosition: parseInt(getField(record, headerIndex, "lesson_position")),
			lessonTitle:    getField(record, headerIndex, "lesson_title"),
			videoURL:       getField(record, headerIndex, "video_url"),
		}
		if d := getField(record, headerIndex, "lesson_description"); d != "" {
			r.description = &d
		}
		if r.courseSlug == "" || r.modulePosition < 1 || r.lessonPosition < 1 || r.lessonTitle == "" || r.videoURL == "" {
			return nil, errors.Errorf("line %d: incomplete row", r.line)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func importRow(tx *gorm.DB, r row) error {
	course := courseModels.Course{Slug: r.courseSlug}
	if err := tx.Where(courseModels.Course{Slug: r.courseSlug}).
		Assign(courseModels.Course{Title: r.courseTitle}).
		FirstOrCreate(&course).Error; err != nil {
		return errors.Wrap(err, "course")
	}

	module := courseModels.Module{CourseID: course.ID, Position: r.modulePosition}
	if err := tx.Where(courseModels.Module{CourseID: course.ID, Position: r.modulePosition}).
		Assign(courseModels.Module{Title: r.moduleTitle}).
		FirstOrCreate(&module).Error; err != nil {
		return errors.Wrap(err, "module")
	}

	lesson := courseModels.Lesson{ModuleID: module.ID, Position: r.lessonPosition}
	return errors.Wrap(tx.Where(courseModels.Lesson{ModuleID: module.ID, Position: r.lessonPosition}).
		Assign(courseModels.Lesson{Title: r.lessonTitle, VideoURL: r.videoURL, Description: r.description}).
		FirstOrCreate(&lesson).Error, "lesson")
}

func getField(row []string, headerIndex map[string]int, field string) string {
	idx, ok := headerIndex[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
