package stats

import (
	"fmt"
	"strings"

	"github.com/swamp-dev/boardstats/internal/store"
)

// percentagePrecision is the number of decimals average completion
// percentages are rounded to before grouping.
const percentagePrecision = 2

// dialect holds the SQL fragments that differ between postgres and sqlite.
// Every other part of the queries is shared.
type dialect struct {
	name string
	// contents expands gameboards.contents into one row per page reference
	// aliased as items.
	contents string
	// pageID extracts the page id from an items row.
	pageID string
}

var dialects = map[string]dialect{
	store.DriverPostgres: {
		name:     store.DriverPostgres,
		contents: "CROSS JOIN LATERAL UNNEST(gameboards.contents) AS items(item)",
		pageID:   "items.item->>'id'",
	},
	store.DriverSQLite: {
		name:     store.DriverSQLite,
		contents: "CROSS JOIN json_each(gameboards.contents) AS items",
		pageID:   "json_extract(items.value, '$.id')",
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
	return d, nil
}

// render substitutes the dialect fragments into a query template.
func (d dialect) render(query string) string {
	return strings.NewReplacer(
		"{{contents}}", d.contents,
		"{{page_id}}", d.pageID,
		"{{precision}}", fmt.Sprint(percentagePrecision),
	).Replace(query)
}

// Params: attempt window start, end.
const activeStudentsCTE = `
active_students AS (
    SELECT DISTINCT question_attempts.user_id AS id
    FROM question_attempts
    JOIN users ON users.id = question_attempts.user_id
    WHERE question_attempts.timestamp >= ?
        AND question_attempts.timestamp < ?
        AND users.role = 'STUDENT')`

// Params: attempt window start, end, creation window start, end.
const ownedGameboardsCTE = `WITH` + activeStudentsCTE + `,

owned_gameboards AS (
    SELECT active_students.id AS student_id, COUNT(gameboards.id) AS num_gameboards
    FROM active_students
    LEFT JOIN gameboards ON gameboards.owner_user_id = active_students.id
        AND gameboards.creation_date >= ?
        AND gameboards.creation_date < ?
    GROUP BY active_students.id)
`

// gameboard_results has one row per student gameboard with at least one scored
// part: the number of parts and how many the owner has answered correctly.
//
// Params: attempt window start, end, creation window start, end.
const gameboardResultsCTE = `WITH` + activeStudentsCTE + `,

student_gameboard_pages AS (
    SELECT DISTINCT gameboards.owner_user_id AS student_id, gameboards.id AS gameboard_id,
        {{page_id}} AS page_id
    FROM gameboards
    {{contents}}
    JOIN active_students ON active_students.id = gameboards.owner_user_id
    WHERE gameboards.creation_date >= ?
        AND gameboards.creation_date < ?),

student_gameboard_parts AS (
    SELECT DISTINCT pages.student_id, pages.gameboard_id, content_data.question_id
    FROM student_gameboard_pages pages
    JOIN content_data ON content_data.page_id = pages.page_id
    WHERE content_data.type <> 'quick'),

part_results AS (
    SELECT parts.student_id, parts.gameboard_id, parts.question_id,
        MAX(CASE WHEN question_attempts.correct THEN 1 ELSE 0 END) AS correct
    FROM student_gameboard_parts parts
    LEFT JOIN question_attempts ON question_attempts.question_id = parts.question_id
        AND question_attempts.user_id = parts.student_id
    GROUP BY parts.student_id, parts.gameboard_id, parts.question_id),

gameboard_results AS (
    SELECT student_id, gameboard_id, SUM(correct) AS num_correct, COUNT(*) AS total
    FROM part_results
    GROUP BY student_id, gameboard_id)
`

const queryActiveStudents = `WITH` + activeStudentsCTE + `
SELECT COUNT(*) FROM active_students`

const queryStudentsWithGameboards = ownedGameboardsCTE + `
SELECT COUNT(*) FROM owned_gameboards WHERE num_gameboards > 0`

const queryOwnedGameboardDistribution = ownedGameboardsCTE + `
SELECT num_gameboards AS metric, COUNT(*) AS students
FROM owned_gameboards
WHERE num_gameboards > 0
GROUP BY num_gameboards
ORDER BY num_gameboards`

const queryStudentsCompletingAllParts = gameboardResultsCTE + `
SELECT COUNT(DISTINCT student_id)
FROM gameboard_results
WHERE num_correct = total`

const queryAverageCompletionDistribution = gameboardResultsCTE + `,
student_averages AS (
    SELECT student_id, ROUND(AVG(100.0 * num_correct / total), {{precision}}) AS average_percentage
    FROM gameboard_results
    GROUP BY student_id)

SELECT average_percentage AS metric, COUNT(*) AS students
FROM student_averages
GROUP BY average_percentage
ORDER BY average_percentage`

const queryCompletedGameboardDistribution = gameboardResultsCTE + `,
completed_gameboards AS (
    SELECT student_id, COUNT(*) AS num_completed
    FROM gameboard_results
    WHERE num_correct = total
    GROUP BY student_id)

SELECT num_completed AS metric, COUNT(*) AS students
FROM completed_gameboards
GROUP BY num_completed
ORDER BY num_completed`
