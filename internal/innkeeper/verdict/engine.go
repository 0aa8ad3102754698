// Package verdict scores agreement between the heuristic and model-backed
// interpretations of one turn. The comparison is advisory: its only output
// is a Verdict the supervisor folds into the auto-send decision, and a
// failure inside it must never abort the turn (the pipeline's audit stage
// absorbs panics and treats them as "no change to supervision").
package verdict

import (
	"fmt"
	"sort"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
	"github.com/dmorandell/innkeeper/internal/innkeeper/policy"
)

// HighIntentConfidence is the bar above which an informational-category side
// is considered deliberate rather than a weak fallback classification. The
// blanket tolerance below only yields to disagreement checks when BOTH sides
// clear this bar.
const HighIntentConfidence = 0.8

// Engine compares interpretations under a per-category policy table.
type Engine struct {
	table *policy.Table
}

// NewEngine creates an Engine. A nil table uses the embedded defaults.
func NewEngine(table *policy.Table) *Engine {
	if table == nil {
		table = policy.Default()
	}
	return &Engine{table: table}
}

// Compare produces the agree/disagree verdict for one turn. The policy is
// keyed by the model side's category, with the generic default as fallback.
// Deterministic: identical inputs always yield an identical verdict.
func (e *Engine) Compare(pre, llm domain.Interpretation) domain.Verdict {
	pol := e.table.For(llm.Category)

	// Mixed informational chit-chat should not force supervision: when either
	// side landed on the generic information category without both being
	// highly confident, and no cancellation is in play, tolerate the mix.
	if e.informationalTolerance(pre, llm) {
		return domain.Verdict{
			Status: domain.VerdictAgree,
			Winner: domain.SourceLLM,
			Reason: "informational category tolerance",
		}
	}

	// 1. Category and intent confidence.
	if pre.Category != llm.Category || pre.Confidence.Intent < pol.IntentMinAgree || llm.Confidence.Intent < pol.IntentMinAgree {
		return domain.Verdict{
			Status: domain.VerdictDisagree,
			Reason: fmt.Sprintf("intent mismatch: pre=%s(%.2f) llm=%s(%.2f) min=%.2f",
				pre.Category, pre.Confidence.Intent, llm.Category, llm.Confidence.Intent, pol.IntentMinAgree),
			Deltas: []string{"category"},
		}
	}

	// 2. Desired action. Cancellation must match regardless of policy.
	mustMatch := pol.ActionMustMatch ||
		pre.DesiredAction == domain.ActionCancel || llm.DesiredAction == domain.ActionCancel
	if mustMatch && pre.DesiredAction != llm.DesiredAction {
		return domain.Verdict{
			Status: domain.VerdictDisagree,
			Reason: fmt.Sprintf("action mismatch: pre=%q llm=%q", pre.DesiredAction, llm.DesiredAction),
			Deltas: []string{"desiredAction"},
		}
	}

	// 3. Weighted slot agreement. A field counts as agreed when the model
	// side supplied a non-empty value it is confident about; value equality
	// with the heuristic is not required; the model is trusted when
	// confident, the heuristic only anchors category and action.
	agreed, total := 0.0, 0.0
	var failed []string
	for field, weight := range pol.Slots.Weights {
		if weight == 0 {
			continue
		}
		total += weight
		value := llm.Slots[field]
		conf := llm.Confidence.Slots[field]
		if value != "" && conf >= pol.Slots.MinSlotConfidence {
			agreed += weight
		} else {
			failed = append(failed, string(field))
		}
	}
	sort.Strings(failed)

	if total > 0 {
		ratio := agreed / total
		if ratio < pol.Slots.MinWeightedAgreement {
			return domain.Verdict{
				Status: domain.VerdictDisagree,
				Reason: fmt.Sprintf("weighted slot agreement %.2f below %.2f", ratio, pol.Slots.MinWeightedAgreement),
				Deltas: failed,
			}
		}
	}

	return domain.Verdict{
		Status: domain.VerdictAgree,
		Winner: domain.SourceLLM,
		Reason: "category, action and weighted slots within policy",
	}
}

func (e *Engine) informationalTolerance(pre, llm domain.Interpretation) bool {
	informational := pre.Category == domain.CategoryInfo || llm.Category == domain.CategoryInfo
	if !informational {
		return false
	}
	bothConfident := pre.Confidence.Intent >= HighIntentConfidence && llm.Confidence.Intent >= HighIntentConfidence
	if bothConfident {
		return false
	}
	cancelling := pre.DesiredAction == domain.ActionCancel || llm.DesiredAction == domain.ActionCancel
	return !cancelling
}
