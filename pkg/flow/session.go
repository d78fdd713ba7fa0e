// Package flow implements the question-flow state machine that walks a
// subject through a branching questionnaire. Transitions are pure functions
// over an immutable flow config and a session value; all I/O stays with the
// caller.
package flow

// DateRange holds the two sub-values of a date-range answer. Both sides must
// be present before the logical answer exists.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Answer is one submitted answer. For date-range questions either a preset
// option value is given, or both range parts.
type Answer struct {
	Value      string `json:"value,omitempty"`
	RangeStart string `json:"range_start,omitempty"`
	RangeEnd   string `json:"range_end,omitempty"`
}

// CustomRangeAnswer is the logical answer recorded for a date-range question
// answered with explicit start and end values.
const CustomRangeAnswer = "custom"

// Session is the state of one questionnaire walk: the active question, the
// accumulated answers, and the navigation history. Sessions are values;
// Advance and Back return a new session and leave the input untouched.
type Session struct {
	FlowID            string               `json:"flow_id"`
	CurrentQuestionID string               `json:"current_question_id,omitempty"`
	Completed         bool                 `json:"completed"`
	Answers           map[string]string    `json:"answers"`
	Ranges            map[string]DateRange `json:"ranges,omitempty"`
	History           []string             `json:"history"`
	Steps             int                  `json:"steps"`
}

func (s Session) clone() Session {
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}

	ranges := make(map[string]DateRange, len(s.Ranges))
	for k, v := range s.Ranges {
		ranges[k] = v
	}

	history := make([]string, len(s.History))
	copy(history, s.History)

	s.Answers = answers
	s.Ranges = ranges
	s.History = history

	return s
}
