package boss

// Grade is the letter result shown after an encounter.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Result summarises a finished encounter for the result screen.
type Result struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      Grade   `json:"grade"`
	Stars      int     `json:"stars"`
	Message    string  `json:"message"`
}

var gradeMessages = map[Grade]string{
	GradeS: "전설적인 영웅의 탄생!",
	GradeA: "훌륭한 모험이었어요!",
	GradeB: "던전을 무사히 빠져나왔군요.",
	GradeC: "조금 더 노력해보세요!",
}

// MaxStars is the number of stars on the result screen.
const MaxStars = 3

// Message returns the congratulation line for g.
func (g Grade) Message() string { return gradeMessages[g] }

// stars fills one star per correct answer, up to MaxStars.
func stars(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxStars {
		return MaxStars
	}
	return score
}

// Evaluate grades score out of total: S for a perfect run, A from 60%,
// B from 50%, C otherwise. One right answer out of three is a C. A quiz
// with no questions grades C. Stars count correct answers, so that C
// still shows one star.
func Evaluate(score, total int) Result {
	r := Result{Score: score, Total: total, Grade: GradeC}
	if total > 0 {
		r.Percentage = float64(score) / float64(total) * 100
	}
	switch {
	case total > 0 && score >= total:
		r.Grade = GradeS
	case r.Percentage >= 60:
		r.Grade = GradeA
	case r.Percentage >= 50:
		r.Grade = GradeB
	}
	r.Stars = stars(score)
	r.Message = r.Grade.Message()
	return r
}
