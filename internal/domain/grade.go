package domain

// Grade is a letter summary of session accuracy.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// GradeFor maps an accuracy percentage (0-100) to a grade.
func GradeFor(accuracy float64) Grade {
	switch {
	case accuracy >= 90:
		return GradeS
	case accuracy >= 80:
		return GradeA
	case accuracy >= 70:
		return GradeB
	case accuracy >= 60:
		return GradeC
	default:
		return GradeD
	}
}
