package domain

// XP awarded by the sessions.
const (
	// ReactionXPBonus is awarded when a lab reaction produces a result.
	ReactionXPBonus = 50

	// QuizXPBonus is awarded for a correct quiz answer.
	QuizXPBonus = 25

	// XPPerLevel scales the level-up threshold: a learner at level L levels up
	// once their experience strictly exceeds L*XPPerLevel.
	XPPerLevel = 100
)

// XPSource identifies what awarded experience.
type XPSource string

// Known XP sources.
const (
	XPSourceReaction XPSource = "reaction"
	XPSourceQuiz     XPSource = "quiz"
)

// UserProgress is a learner's experience counter and level.
type UserProgress struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// NewUserProgress returns the starting progress: no experience, level 1.
func NewUserProgress() UserProgress {
	return UserProgress{XP: 0, Level: 1}
}

// Validate checks the progress invariants.
func (p UserProgress) Validate() error {
	if p.XP < 0 {
		return NewValidationError("xp", "must not be negative")
	}
	if p.Level < 1 {
		return NewValidationError("level", "must be at least 1")
	}
	return nil
}

// Threshold returns the experience that must be exceeded to leave the current level.
func (p UserProgress) Threshold() int {
	return p.Level * XPPerLevel
}

// AddXP returns the progress after awarding amount and whether the learner
// levelled up. At most one level is gained per call regardless of how far
// the new total overshoots the threshold.
func (p UserProgress) AddXP(amount int) (UserProgress, bool, error) {
	if amount <= 0 {
		return p, false, NewValidationError("amount", "must be positive")
	}

	next := UserProgress{XP: p.XP + amount, Level: p.Level}
	levelled := next.XP > p.Threshold()
	if levelled {
		next.Level++
	}
	return next, levelled, nil
}
