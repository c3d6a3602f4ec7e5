package stats

// Breakdown category labels.
const (
	CategoryNoGameboard  = "No Gameboard"
	CategoryNoAttempt    = "No Attempt"
	CategoryCompleteSome = "Complete Some"
	CategoryCompleteAll  = "Complete All"
)

// Report holds every engine result for one date range.
type Report struct {
	Range                  DateRange    `json:"range"`
	ActiveStudents         Count        `json:"active_students"`
	StudentsWithGameboards Count        `json:"students_with_gameboards"`
	StudentsCompletingAll  Count        `json:"students_completing_all_parts"`
	AverageCompletion      Distribution `json:"average_completion"`
	CompletedGameboards    Distribution `json:"completed_gameboards"`
	OwnedGameboards        Distribution `json:"owned_gameboards"`
}

// Complete reports whether all three scalar counts are present.
func (r *Report) Complete() bool {
	return r.ActiveStudents.Valid && r.StudentsWithGameboards.Valid && r.StudentsCompletingAll.Valid
}

// NoProgress is the number of students whose average completion is zero.
func (r *Report) NoProgress() int64 {
	return r.AverageCompletion.Get(0)
}

// FullCompletion is the number of students who completed every gameboard they own.
func (r *Report) FullCompletion() int64 {
	return r.AverageCompletion.Get(100)
}

// Category is one slice of a Breakdown.
type Category struct {
	Label    string `json:"label"`
	Students int64  `json:"students"`
}

// Breakdown partitions the active students by how far they got with their own
// gameboards. It returns false when any scalar count is absent.
func (r *Report) Breakdown() ([]Category, bool) {
	if !r.Complete() {
		return nil, false
	}
	active := r.ActiveStudents.Value
	withBoards := r.StudentsWithGameboards.Value
	completing := r.StudentsCompletingAll.Value
	all := r.FullCompletion()

	return []Category{
		{Label: CategoryNoGameboard, Students: active - withBoards},
		{Label: CategoryNoAttempt, Students: withBoards - completing},
		{Label: CategoryCompleteSome, Students: completing - all},
		{Label: CategoryCompleteAll, Students: all},
	}, true
}
