package models

import "fmt"

// Grade is the SOHO letter grade, S best.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Grades lists every grade from best to worst.
var Grades = []Grade{GradeS, GradeA, GradeB, GradeC, GradeD}

// Rank orders grades numerically, S=4 down to D=0. Unknown grades rank -1.
func (g Grade) Rank() int {
	switch g {
	case GradeS:
		return 4
	case GradeA:
		return 3
	case GradeB:
		return 2
	case GradeC:
		return 1
	case GradeD:
		return 0
	default:
		return -1
	}
}

func (g Grade) Valid() bool {
	return g.Rank() >= 0
}

// ParseGrade accepts the letter in either case.
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if len(s) == 1 && s[0] >= 'a' && s[0] <= 'z' {
		g = Grade(string(s[0] - 'a' + 'A'))
	}
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade %q", s)
	}
	return g, nil
}
