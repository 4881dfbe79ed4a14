package service

import "volunteermatch/internal/volunteer/models"

// DefaultMatchScore is the score every skill match gets from ConstantScore.
const DefaultMatchScore = 100

// Scorer decides whether v matches skill and with what score. Returning false
// excludes the volunteer.
type Scorer func(v *models.Volunteer, skill string) (score int, ok bool)

// ConstantScore matches volunteers listing skill exactly and scores them
// DefaultMatchScore.
func ConstantScore(v *models.Volunteer, skill string) (int, bool) {
	if !v.HasSkill(skill) {
		return 0, false
	}
	return DefaultMatchScore, true
}
