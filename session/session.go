// Package session holds the values that outlive a single level attempt.
package session

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// State carries the cumulative score of one playthrough. It is written only
// when a level's goal is reached and when the game restarts after the last
// level.
type State struct {
	cumulativeScore int
	logger          *log.Logger
}

func New(logger *log.Logger) *State {
	if logger == nil {
		logger = log.Default()
	}
	return &State{logger: logger}
}

func (s *State) CumulativeScore() int {
	return s.cumulativeScore
}

// AddLevelScore adds a finished level's score and returns the new total.
func (s *State) AddLevelScore(score int) int {
	if score < 0 {
		panic(fmt.Sprintf("session: negative level score %d", score))
	}
	s.cumulativeScore += score
	s.logger.Debug("level score banked", "score", score, "total", s.cumulativeScore)
	return s.cumulativeScore
}

// Reset clears the cumulative score for a new playthrough.
func (s *State) Reset() {
	s.logger.Debug("session reset", "previous_total", s.cumulativeScore)
	s.cumulativeScore = 0
}
