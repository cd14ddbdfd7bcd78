package judge

import (
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

// tieBreakOrder ranks trigger accuracy votes when counts are equal. The most
// pessimistic verdict wins.
var tieBreakOrder = []models.TriggerAccuracy{
	models.AccuracyIncorrect,
	models.AccuracyPartial,
	models.AccuracyCorrect,
}

// Aggregate combines N samples into one result. Error samples count as a
// zero score and an "incorrect" vote.
func Aggregate(samples []models.JudgeResponse) models.MultiSampleResult {
	result := models.MultiSampleResult{
		IndividualScores: make([]float64, 0, len(samples)),
		AllIssues:        []string{},
	}
	if len(samples) == 0 {
		return result
	}

	var sum, relevanceSum float64
	votes := make(map[models.TriggerAccuracy]int, len(tieBreakOrder))
	seenIssues := make(map[string]bool)

	for _, s := range samples {
		result.IndividualScores = append(result.IndividualScores, s.QualityScore)
		sum += s.QualityScore
		relevanceSum += s.ResponseRelevance
		votes[s.TriggerAccuracy]++
		result.TotalCostUSD += s.CostUSD
		if s.IsError() {
			result.ErrorCount++
			kind := s.ErrorKind
			if kind == "" {
				kind = models.JudgeErrorCall
			}
			result.ErrorKinds = append(result.ErrorKinds, kind)
		}
		for _, issue := range s.Issues {
			if !seenIssues[issue] {
				seenIssues[issue] = true
				result.AllIssues = append(result.AllIssues, issue)
			}
		}
	}

	n := float64(len(samples))
	result.AggregatedScore = sum / n

	var squares float64
	for _, score := range result.IndividualScores {
		d := score - result.AggregatedScore
		squares += d * d
	}
	result.ScoreVariance = squares / n

	result.ConsensusTriggerAccuracy = majority(votes)
	result.ConsensusVotes = votes[result.ConsensusTriggerAccuracy]
	result.IsUnanimous = len(votes) == 1

	rep := representative(samples)
	rep.QualityScore = result.AggregatedScore
	rep.ResponseRelevance = relevanceSum / n
	rep.TriggerAccuracy = result.ConsensusTriggerAccuracy
	rep.Issues = result.AllIssues
	rep.CostUSD = result.TotalCostUSD
	result.RepresentativeResponse = rep

	return result
}

// FromSingle wraps one response, giving variance 0 and a unanimous verdict.
func FromSingle(resp models.JudgeResponse) models.MultiSampleResult {
	return Aggregate([]models.JudgeResponse{resp})
}

func majority(votes map[models.TriggerAccuracy]int) models.TriggerAccuracy {
	var winner models.TriggerAccuracy
	best := -1
	for _, candidate := range tieBreakOrder {
		if votes[candidate] > best {
			best = votes[candidate]
			winner = candidate
		}
	}
	return winner
}

// representative picks the first sample with a real narrative.
func representative(samples []models.JudgeResponse) models.JudgeResponse {
	for _, s := range samples {
		if !s.IsError() {
			return s
		}
	}
	return samples[0]
}
