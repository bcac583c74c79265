package services

import (
	"math"

	"groupsync/internal/models"
)

// Percentage returns round(count/total*100); zero when nobody voted
func Percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// Tally counts votes per option. total is the number of vote rows, not of
// voters, so on a multiple choice poll one user can count more than once.
// userVotes lists the option ids viewerID voted for, in option order.
func Tally(options []models.PollOption, votes []models.PollVote, viewerID string) (results []models.OptionResult, userVotes []string, total int) {
	counts := make(map[string]int, len(options))
	mine := make(map[string]bool)
	for _, v := range votes {
		counts[v.OptionID]++
		if v.UserID == viewerID {
			mine[v.OptionID] = true
		}
	}
	total = len(votes)

	results = make([]models.OptionResult, 0, len(options))
	userVotes = []string{}
	for _, o := range options {
		results = append(results, models.OptionResult{
			PollOption: o,
			VoteCount:  counts[o.ID],
			Percentage: Percentage(counts[o.ID], total),
		})
		if mine[o.ID] {
			userVotes = append(userVotes, o.ID)
		}
	}
	return results, userVotes, total
}
