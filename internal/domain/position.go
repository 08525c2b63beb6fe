package domain

import "fmt"

// GameType is one of the three exercises a lesson is split into.
type GameType string

// Exercise types in the order they are visited during round 1.
const (
	GameTypeReading  GameType = "reading"
	GameTypeMatching GameType = "matching"
	GameTypeQuiz     GameType = "quiz"
)

// IsValid reports whether g is a known exercise type.
func (g GameType) IsValid() bool {
	switch g {
	case GameTypeReading, GameTypeMatching, GameTypeQuiz:
		return true
	default:
		return false
	}
}

// Ordinal returns the 1-based position of g within a lesson, or 0 if unknown.
func (g GameType) Ordinal() int {
	switch g {
	case GameTypeReading:
		return 1
	case GameTypeMatching:
		return 2
	case GameTypeQuiz:
		return 3
	default:
		return 0
	}
}

// ExercisesPerLesson is the number of game types visited per lesson in round 1.
const ExercisesPerLesson = 3

// Position is the learner's place in the curriculum. It is either Round1 or
// Round2; the set is closed so a type switch over it is exhaustive.
type Position interface {
	// Lesson returns the index into the curriculum sequence.
	Lesson() int
	// GameType returns the exercise shown at this position.
	GameType() GameType
	// FirstRound reports whether this is the round that visits every game type.
	FirstRound() bool

	isPosition()
}

// Round1 visits every game type of every lesson.
type Round1 struct {
	LessonIndex int
	Exercise    GameType
}

// Round2 revisits only the reading exercise of every lesson.
type Round2 struct {
	LessonIndex int
}

func (p Round1) Lesson() int        { return p.LessonIndex }
func (p Round1) GameType() GameType { return p.Exercise }
func (p Round1) FirstRound() bool   { return true }
func (Round1) isPosition()          {}

func (p Round2) Lesson() int        { return p.LessonIndex }
func (p Round2) GameType() GameType { return GameTypeReading }
func (p Round2) FirstRound() bool   { return false }
func (Round2) isPosition()          {}

func (p Round1) String() string {
	return fmt.Sprintf("round1(lesson=%d, %s)", p.LessonIndex, p.Exercise)
}

func (p Round2) String() string {
	return fmt.Sprintf("round2(lesson=%d)", p.LessonIndex)
}

// StartPosition is where a new learner begins.
func StartPosition() Position {
	return Round1{LessonIndex: 0, Exercise: GameTypeReading}
}

// PositionFrom rebuilds the tagged position from its flat persisted fields.
// The game type is ignored in round 2, which only ever shows reading.
func PositionFrom(lessonIndex int, gameType GameType, isFirstRound bool) Position {
	if !isFirstRound {
		return Round2{LessonIndex: lessonIndex}
	}
	return Round1{LessonIndex: lessonIndex, Exercise: gameType}
}
