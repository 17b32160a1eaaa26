package ai

const (
	maxAPICalls  = 365
	maxSubtopics = 12
	maxRounds    = 3
)

// Budget bounds one expansion run: a cap on LLM calls and a cap on created
// subtopics. A fresh Budget is made per top-level call, so concurrent
// expansions never share counters.
type Budget struct {
	CallsUsed        int
	CallsCap         int
	SubtopicsCreated int
	SubtopicsCap     int
}

func NewBudget() *Budget {
	return &Budget{CallsCap: maxAPICalls, SubtopicsCap: maxSubtopics}
}

// SpendCall consumes one API call, returning false when the cap is already
// reached.
func (b *Budget) SpendCall() bool {
	if b.CallsUsed >= b.CallsCap {
		return false
	}
	b.CallsUsed++
	return true
}

func (b *Budget) RecordSubtopic() {
	b.SubtopicsCreated++
}

func (b *Budget) CallsExhausted() bool {
	return b.CallsUsed >= b.CallsCap
}

func (b *Budget) SubtopicsExhausted() bool {
	return b.SubtopicsCreated >= b.SubtopicsCap
}
