package services

import (
	"math/rand"
	"strconv"
)

const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeDescriptive = "descriptive"
)

// Domains lists the competency domains in canonical iteration order. Catalog
// question IDs are derived from this order once at startup, so it must not
// be reordered without a data migration.
var Domains = []string{
	"leadership",
	"accountability",
	"communication",
	"innovation",
	"sales",
	"ethics",
	"collaboration",
}

var domainQuestions = map[string][]string{
	"leadership": {
		"I actively influence others toward a shared vision.",
		"I remain calm and focused even during high-pressure decisions.",
		"I mentor or guide others without being asked.",
		"I make decisions aligned with the long-term good of the organisation.",
		"I empower my team to lead initiatives.",
		"I take responsibility for my team's wins and failures alike.",
		"I adapt my leadership style based on the team's needs.",
		"I seek feedback from juniors and peers to improve myself.",
		"I advocate for necessary change, even when unpopular.",
		"I ensure my team is aligned with organisational goals.",
	},
	"accountability": {
		"I own my outcomes, even when they fall short.",
		"I meet deadlines consistently without external follow-ups.",
		"I document my decisions and communicate transparently.",
		"I don't make excuses when targets aren't met.",
		"I take initiative when I notice gaps in the process or delivery.",
		"I accept criticism without defensiveness.",
		"I take action without waiting for instructions.",
		"I follow through on what I commit to.",
		"I hold others accountable in a respectful, results-oriented manner.",
		"I proactively ask for feedback on my performance.",
	},
	"communication": {
		"I adapt my communication style to different audiences.",
		"I actively listen and ask clarifying questions.",
		"I provide constructive feedback that helps others grow.",
		"I communicate complex ideas in simple, understandable terms.",
		"I handle difficult conversations with empathy and professionalism.",
		"I ensure my messages are clear and actionable.",
		"I use appropriate channels for different types of communication.",
		"I follow up on important communications to ensure understanding.",
		"I share information proactively with relevant stakeholders.",
		"I acknowledge and address communication breakdowns promptly.",
	},
	"innovation": {
		"I actively seek new ways to solve problems.",
		"I challenge existing processes and suggest improvements.",
		"I experiment with new approaches and learn from failures.",
		"I stay updated with industry trends and best practices.",
		"I encourage creative thinking in my team.",
		"I take calculated risks to achieve better outcomes.",
		"I adapt quickly to changing circumstances.",
		"I think beyond immediate solutions to long-term impact.",
		"I collaborate with diverse perspectives to generate ideas.",
		"I implement innovative solutions that create value.",
	},
	"sales": {
		"I understand customer needs and pain points deeply.",
		"I build genuine relationships with prospects and clients.",
		"I present solutions that clearly address customer challenges.",
		"I handle objections professionally and constructively.",
		"I follow up consistently with prospects and customers.",
		"I exceed customer expectations in service delivery.",
		"I identify opportunities for upselling and cross-selling.",
		"I maintain accurate records of customer interactions.",
		"I collaborate with internal teams to deliver customer value.",
		"I continuously improve my sales skills and knowledge.",
	},
	"ethics": {
		"I always act with integrity, even when no one is watching.",
		"I make decisions based on what is right, not what is easy.",
		"I speak up when I see unethical behavior.",
		"I treat everyone with respect and fairness.",
		"I maintain confidentiality of sensitive information.",
		"I avoid conflicts of interest in my professional relationships.",
		"I take responsibility for my mistakes and learn from them.",
		"I follow company policies and procedures consistently.",
		"I consider the impact of my decisions on all stakeholders.",
		"I model ethical behavior for others to follow.",
	},
	"collaboration": {
		"I actively contribute to team goals and objectives.",
		"I share knowledge and resources with team members.",
		"I support others in their professional development.",
		"I resolve conflicts constructively and respectfully.",
		"I celebrate team successes and individual contributions.",
		"I adapt my working style to complement team dynamics.",
		"I provide constructive feedback to help team members grow.",
		"I take initiative to help when team members are overwhelmed.",
		"I communicate openly and honestly with team members.",
		"I build trust through consistent, reliable actions.",
	},
}

// DescriptiveQuestionIDs are the free-text follow-up items. They carry a
// "collaboration" domain tag for reporting but never contribute to that
// domain's score.
var DescriptiveQuestionIDs = []string{"desc_1", "desc_2"}

var descriptiveQuestions = []Question{
	{
		ID:     "desc_1",
		Text:   "Describe a situation where you had to collaborate with someone difficult. What did you do, and what was the outcome?",
		Domain: "collaboration",
		Type:   QuestionTypeDescriptive,
	},
	{
		ID:     "desc_2",
		Text:   "Share an example where your collaboration significantly impacted a project or team result.",
		Domain: "collaboration",
		Type:   QuestionTypeDescriptive,
	},
}

// catalog is the canonical question set, in domain iteration order with the
// descriptive items last. Built once at startup; read-only afterwards.
var (
	catalog     []Question
	catalogByID map[string]Question
)

func init() {
	catalog = buildCatalog()
	catalogByID = make(map[string]Question, len(catalog))
	for _, q := range catalog {
		catalogByID[q.ID] = q
	}
}

func buildCatalog() []Question {
	out := make([]Question, 0, len(Domains)*10+len(descriptiveQuestions))
	next := 1
	for _, domain := range Domains {
		for i, text := range domainQuestions[domain] {
			out = append(out, Question{
				ID:                   strconv.Itoa(next),
				Text:                 text,
				Domain:               domain,
				Type:                 QuestionTypeMCQ,
				DomainQuestionNumber: i + 1,
			})
			next++
		}
	}
	out = append(out, descriptiveQuestions...)
	return out
}

// CatalogQuestions returns a copy of the canonical catalog in its fixed
// order, without display numbers.
func CatalogQuestions() []Question {
	out := make([]Question, len(catalog))
	copy(out, catalog)
	return out
}

// SessionQuestions returns the full catalog in a fresh random order with
// sequential display numbers assigned after the shuffle. The permutation is
// deliberately unseeded and regenerated per call so repeat takers cannot
// memorise answer positions; question identity always resolves through the
// canonical IDs, never through positions.
func SessionQuestions() []Question {
	out := CatalogQuestions()
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	for i := range out {
		out[i].DisplayNumber = i + 1
	}
	return out
}

// FindQuestionByID resolves an ID against the canonical catalog, independent
// of any shuffled view handed out to users.
func FindQuestionByID(id string) (Question, bool) {
	q, ok := catalogByID[id]
	return q, ok
}

// ResolveResponses re-attaches the server-side domain and question type to
// submitted answers by catalog ID. Answers referencing unknown IDs are
// dropped; validation then fails such submissions on count.
func ResolveResponses(submitted []Response) []Response {
	out := make([]Response, 0, len(submitted))
	for _, r := range submitted {
		q, ok := FindQuestionByID(r.QuestionID)
		if !ok {
			continue
		}
		out = append(out, Response{
			QuestionID:   r.QuestionID,
			Value:        r.Value,
			Domain:       q.Domain,
			QuestionType: q.Type,
		})
	}
	return out
}
