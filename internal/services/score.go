package services

// Ratings assigned by RatingForScore, from strongest to weakest band.
const (
	RatingExemplary  = "exemplary"
	RatingStrength   = "strength"
	RatingDeveloping = "developing"
	RatingWeakness   = "weakness"
	RatingCritical   = "critical"
)

const (
	expectedMCQResponses         = 70 // 7 domains x 10 questions
	expectedDescriptiveResponses = 2
)

func isDescriptiveID(id string) bool {
	for _, d := range DescriptiveQuestionIDs {
		if id == d {
			return true
		}
	}
	return false
}

// ValidateResponses reports whether a resolved response set is complete and
// in range: exactly 70 mcq answers covering all seven domains with values in
// [1,5], and exactly 2 descriptive answers with values in [0,3]. Callers get
// a single verdict; the failing rule is not reported.
func ValidateResponses(responses []Response) bool {
	mcq := make([]Response, 0, len(responses))
	descriptive := make([]Response, 0, expectedDescriptiveResponses)
	for _, r := range responses {
		if isDescriptiveID(r.QuestionID) {
			descriptive = append(descriptive, r)
		} else {
			mcq = append(mcq, r)
		}
	}

	if len(mcq) != expectedMCQResponses {
		return false
	}
	if len(descriptive) != expectedDescriptiveResponses {
		return false
	}

	covered := map[string]bool{}
	for _, r := range mcq {
		covered[r.Domain] = true
	}
	if len(covered) != len(Domains) {
		return false
	}
	for _, d := range Domains {
		if !covered[d] {
			return false
		}
	}

	for _, r := range mcq {
		if r.Value < 1 || r.Value > 5 {
			return false
		}
	}
	for _, r := range descriptive {
		if r.Value < 0 || r.Value > 3 {
			return false
		}
	}
	return true
}

// DomainScores sums mcq response values per domain. Every domain key is
// present even when zero. Descriptive answers are skipped by ID even though
// they carry a "collaboration" domain tag.
func DomainScores(responses []Response) map[string]int {
	scores := make(map[string]int, len(Domains))
	for _, d := range Domains {
		scores[d] = 0
	}
	for _, r := range responses {
		if isDescriptiveID(r.QuestionID) {
			continue
		}
		if _, ok := scores[r.Domain]; ok {
			scores[r.Domain] += r.Value
		}
	}
	return scores
}

// DescriptiveScores extracts the two free-text scores keyed by question ID.
func DescriptiveScores(responses []Response) map[string]int {
	scores := map[string]int{}
	for _, r := range responses {
		if isDescriptiveID(r.QuestionID) {
			scores[r.QuestionID] = r.Value
		}
	}
	return scores
}

// TotalScore is the sum of all domain scores.
func TotalScore(domainScores map[string]int) int {
	total := 0
	for _, v := range domainScores {
		total += v
	}
	return total
}

// RatingForScore bands a score on the 10-50 domain scale.
func RatingForScore(score int) string {
	switch {
	case score >= 44:
		return RatingExemplary
	case score >= 36:
		return RatingStrength
	case score >= 28:
		return RatingDeveloping
	case score >= 20:
		return RatingWeakness
	default:
		return RatingCritical
	}
}

// DomainRatings bands each domain score individually.
func DomainRatings(domainScores map[string]int) map[string]string {
	ratings := make(map[string]string, len(domainScores))
	for d, score := range domainScores {
		ratings[d] = RatingForScore(score)
	}
	return ratings
}

// OverallRating bands the mean per-domain score. With 10 questions per
// domain the mean already lands on the same 10-50 scale the per-domain
// bands use, so it is applied directly. The equivalence breaks if the
// catalog shape ever changes.
func OverallRating(domainScores map[string]int) string {
	if len(domainScores) == 0 {
		return RatingCritical
	}
	avg := float64(TotalScore(domainScores)) / float64(len(domainScores))
	return RatingForScore(int(avg))
}
