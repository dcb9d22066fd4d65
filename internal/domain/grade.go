package domain

// Grade is a route difficulty, named after the hold colors used in the gym.
type Grade string

const (
	GradeVert      Grade = "Vert"
	GradeVertClair Grade = "Vert clair"
	GradeBleuClair Grade = "Bleu clair"
	GradeBleuFonce Grade = "Bleu foncé"
	GradeViolet    Grade = "Violet"
	GradeRose      Grade = "Rose"
	GradeRouge     Grade = "Rouge"
	GradeOrange    Grade = "Orange"
	GradeJaune     Grade = "Jaune"
	GradeBlanc     Grade = "Blanc"
	GradeGris      Grade = "Gris"
	GradeNoir      Grade = "Noir"
)

// GradeOrder is the canonical easiest-to-hardest ordering. Both the
// validated-grade scan and the leaderboard tie-break compare against this
// list; nothing else may re-derive it.
var GradeOrder = []Grade{
	GradeVert,
	GradeVertClair,
	GradeBleuClair,
	GradeBleuFonce,
	GradeViolet,
	GradeRose,
	GradeRouge,
	GradeOrange,
	GradeJaune,
	GradeBlanc,
	GradeGris,
	GradeNoir,
}

// GradeBasePoints maps each grade to its base point value (roughly x1.5 per
// step, 10 through 855).
var GradeBasePoints = map[Grade]int{
	GradeVert:      10,
	GradeVertClair: 15,
	GradeBleuClair: 23,
	GradeBleuFonce: 34,
	GradeViolet:    51,
	GradeRose:      75,
	GradeRouge:     112,
	GradeOrange:    169,
	GradeJaune:     255,
	GradeBlanc:     386,
	GradeGris:      570,
	GradeNoir:      855,
}

// GradeIndex returns the position of g in GradeOrder, or -1 when g is empty
// or unknown. -1 deliberately sorts below every real grade.
func GradeIndex(g Grade) int {
	for i, grade := range GradeOrder {
		if grade == g {
			return i
		}
	}
	return -1
}

// BasePoints returns the base point value for g, 0 for unknown grades.
func BasePoints(g Grade) int {
	return GradeBasePoints[g]
}
