package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type ProofType string

const (
	ProofCamera ProofType = "camera"
	ProofUpload ProofType = "upload"
)

type ChallengeKind string

const (
	KindRegular  ChallengeKind = "regular"
	KindFestival ChallengeKind = "festival"
	KindTeacher  ChallengeKind = "teacher"
)

type Challenge struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Difficulty   Difficulty
	Points       int
	DurationDays int
	ProofType    ProofType
	Kind         ChallengeKind

	// Set only when Kind is KindFestival.
	Festival *FestivalWindow
	// Set only when Kind is KindTeacher.
	Teacher *TeacherLed
}

type FestivalWindow struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// IsActive reports whether the calendar day of now falls inside the window,
// both ends inclusive.
func (w FestivalWindow) IsActive(now time.Time) bool {
	today := dateOf(now)
	return !today.Before(dateOf(w.StartDate)) && !today.After(dateOf(w.EndDate))
}

type TeacherLed struct {
	TargetAudience string
	MaxStudents    int
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
