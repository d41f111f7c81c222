package task

// Quadrant is an Eisenhower-matrix priority class.
type Quadrant string

const (
	Q1 Quadrant = "Q1" // urgent and important
	Q2 Quadrant = "Q2" // important
	Q3 Quadrant = "Q3" // urgent
	Q4 Quadrant = "Q4"
)

// Quadrants lists the quadrants in display order.
var Quadrants = []Quadrant{Q1, Q2, Q3, Q4}

func (q Quadrant) IsValid() bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	default:
		return false
	}
}

// Label returns the human-readable action for the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case Q1:
		return "Do First"
	case Q2:
		return "Schedule"
	case Q3:
		return "Delegate"
	case Q4:
		return "Eliminate"
	default:
		return "Unknown"
	}
}

var quadrantBase = map[Quadrant]int{
	Q1: 1000,
	Q2: 700,
	Q3: 400,
	Q4: 100,
}

// CalculateQuadrant classifies urgency and importance (both 1-4); values of
// 3 or more count as urgent/important.
func CalculateQuadrant(urgency, importance int) Quadrant {
	urgent := urgency >= 3
	important := importance >= 3
	switch {
	case urgent && important:
		return Q1
	case important:
		return Q2
	case urgent:
		return Q3
	default:
		return Q4
	}
}

// CalculateScore ranks tasks for the priority sort. Higher is more urgent.
func CalculateScore(urgency, importance int, q Quadrant) int {
	return quadrantBase[q] + urgency*10 + importance*5
}

// Reprioritize recomputes the derived quadrant and score in place.
func (t *Task) Reprioritize() {
	t.PriorityQuadrant = CalculateQuadrant(t.Urgency, t.Importance)
	t.PriorityScore = CalculateScore(t.Urgency, t.Importance, t.PriorityQuadrant)
}
