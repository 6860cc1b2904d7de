package courseRepository

const (
	queryListCourses = `
		SELECT id, name, description, created_at
		FROM courses
		ORDER BY name ASC
	`

	queryGetCourseByID = `
		SELECT id, name, description, created_at
		FROM courses
		WHERE id = :id
	`

	queryListLessonsByCourse = `
		SELECT id, course_id, title, description, lesson_text, video_url, "order", quiz, created_at
		FROM lessons
		WHERE course_id = :course_id
		ORDER BY "order" ASC, created_at ASC
	`

	queryCountLessonsByCourse = `
		SELECT COUNT(*)
		FROM lessons
		WHERE course_id = :course_id
	`

	queryCreateQuizAttempt = `
		INSERT INTO quiz_attempts (id, student_id, lesson_id, score, total, created_at)
		VALUES (:id, :student_id, :lesson_id, :score, :total, :created_at)
	`

	queryMarkLessonComplete = `
		INSERT INTO lesson_completions (student_id, lesson_id, completed_at)
		VALUES (:student_id, :lesson_id, NOW())
		ON CONFLICT (student_id, lesson_id) DO NOTHING
	`

	queryCountCompletedLessons = `
		SELECT COUNT(*)
		FROM lesson_completions lc
		JOIN lessons l ON l.id = lc.lesson_id
		WHERE lc.student_id = :student_id AND l.course_id = :course_id
	`

	queryCreateBadge = `
		INSERT INTO badges (id, student_id, course_id, name, awarded_at)
		VALUES (:id, :student_id, :course_id, :name, :awarded_at)
		ON CONFLICT (student_id, course_id) DO NOTHING
	`

	queryListBadges = `
		SELECT id, student_id, course_id, name, awarded_at
		FROM badges
		WHERE student_id = :student_id
		ORDER BY awarded_at ASC
	`
)
