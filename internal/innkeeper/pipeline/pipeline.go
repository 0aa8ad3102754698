// Package pipeline sequences one guest turn through the decision core:
// normalize, plan, audit, supervise, state-update, format. Each stage can be
// switched to legacy mode independently so the old handler and this one can
// coexist during migration.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dmorandell/innkeeper/common/trace"
	"github.com/dmorandell/innkeeper/internal/innkeeper/audit"
	"github.com/dmorandell/innkeeper/internal/innkeeper/availability"
	"github.com/dmorandell/innkeeper/internal/innkeeper/consolidate"
	"github.com/dmorandell/innkeeper/internal/innkeeper/dispatch"
	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
	"github.com/dmorandell/innkeeper/internal/innkeeper/interpret"
	"github.com/dmorandell/innkeeper/internal/innkeeper/planner"
	"github.com/dmorandell/innkeeper/internal/innkeeper/quickintent"
	"github.com/dmorandell/innkeeper/internal/innkeeper/state"
	"github.com/dmorandell/innkeeper/internal/innkeeper/supervise"
	"github.com/dmorandell/innkeeper/internal/innkeeper/verdict"
)

// LegacyHandler is the pre-migration turn handler. It owns the whole reply
// for any turn whose plan stage is switched to legacy mode.
type LegacyHandler interface {
	HandleLegacyTurn(ctx context.Context, env domain.TurnEnvelope) (string, error)
}

// Deps wires the pipeline's collaborators. Store and Heuristic are required;
// everything else degrades gracefully when nil.
type Deps struct {
	Store     state.Store
	Locker    *state.Locker
	Heuristic *interpret.Heuristic
	// Provider is the model planner. Nil means constrained environment:
	// every turn takes the deterministic path.
	Provider planner.Provider
	Verdicts *verdict.Engine
	// Records persists held turns for operator review. Optional.
	Records  *supervise.Records
	Notifier audit.Notifier
	Checker  availability.Checker
	Catalog  availability.Catalog
	Debounce *availability.HandoffDebouncer
	// Dispatchers are side-channel senders keyed by channel name, used by
	// the quick-intent interceptors.
	Dispatchers map[string]dispatch.Dispatcher
	Legacy      LegacyHandler
	Log         *slog.Logger
	// Clock is injectable for tests. Defaults to time.Now.
	Clock func() time.Time
}

// Result is the pipeline's answer for one turn.
type Result struct {
	Reply    string
	AutoSend bool
	Status   supervise.Status
	Category domain.Category
	Verdict  *domain.Verdict
	State    *domain.ConversationState
	// Durations holds each executed stage's wall-clock time.
	Durations map[string]time.Duration
}

// Pipeline is the turn orchestrator. Safe for concurrent use; turns for the
// same conversation are serialized through the keyed locker so last-write-
// wins merges cannot drop a concurrent turn's fields.
type Pipeline struct {
	cfg       Config
	store     state.Store
	locker    *state.Locker
	heuristic *interpret.Heuristic
	provider  planner.Provider
	verdicts  *verdict.Engine
	records   *supervise.Records
	notifier  audit.Notifier
	checker   availability.Checker
	catalog   availability.Catalog
	debounce  *availability.HandoffDebouncer
	resend    *quickintent.Resend
	legacy    LegacyHandler
	history   *historyBuffer
	log       *slog.Logger
	clock     func() time.Time
}

// New assembles a Pipeline.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline: state store is required")
	}
	if deps.Heuristic == nil {
		deps.Heuristic = interpret.NewHeuristic()
	}
	if deps.Locker == nil {
		deps.Locker = state.NewLocker()
	}
	if deps.Verdicts == nil {
		deps.Verdicts = verdict.NewEngine(nil)
	}
	if deps.Notifier == nil {
		deps.Notifier = audit.Noop{}
	}
	if deps.Checker == nil {
		deps.Checker = availability.NewStaticChecker(deps.Catalog)
	}
	if deps.Catalog == nil {
		deps.Catalog = availability.DefaultCatalog
	}
	if deps.Debounce == nil {
		deps.Debounce = availability.NewHandoffDebouncer(0)
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "es"
	}

	var resend *quickintent.Resend
	if len(deps.Dispatchers) > 0 {
		bounded := make(map[string]dispatch.Dispatcher, len(deps.Dispatchers))
		for name, d := range deps.Dispatchers {
			bounded[name] = dispatch.WithBoundedRetry(d)
		}
		resend = quickintent.NewResend(bounded, deps.Notifier, deps.Log)
	}

	return &Pipeline{
		cfg:       cfg,
		store:     deps.Store,
		locker:    deps.Locker,
		heuristic: deps.Heuristic,
		provider:  deps.Provider,
		verdicts:  deps.Verdicts,
		records:   deps.Records,
		notifier:  deps.Notifier,
		checker:   deps.Checker,
		catalog:   deps.Catalog,
		debounce:  deps.Debounce,
		resend:    resend,
		legacy:    deps.Legacy,
		history:   newHistoryBuffer(cfg.HistoryDepth),
		log:       deps.Log,
		clock:     deps.Clock,
	}, nil
}

// turn is the shared turn-scoped state every stage reads and writes.
type turn struct {
	env     domain.TurnEnvelope
	key     string
	message string
	locale  string
	state   *domain.ConversationState

	consolidation consolidate.Result
	pre           *domain.Interpretation
	llm           *domain.Interpretation
	plan          *planner.Plan

	category         domain.Category
	reply            string
	patch            domain.StatePatch
	needsSupervision bool
	intercepted      bool

	result *Result
}

// HandleTurn runs one guest message through the stage sequence. It always
// returns a reply; internal failures degrade to deterministic text. The only
// error cases are an invalid envelope and a state-store failure on load.
func (p *Pipeline) HandleTurn(ctx context.Context, env domain.TurnEnvelope) (*Result, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if trace.FromContext(ctx) == "" {
		ctx = trace.WithTraceID(ctx, trace.GenerateID())
	}

	key := domain.Key(env.TenantID, env.ConversationID)
	unlock := p.locker.Lock(key)
	defer unlock()

	t := &turn{
		env:     env,
		key:     key,
		message: strings.TrimSpace(env.Content),
		locale:  p.cfg.DefaultLocale,
		result: &Result{
			Status:    supervise.StatusSent,
			AutoSend:  true,
			Durations: make(map[string]time.Duration),
		},
	}

	// State is loaded outside the stage switches: every stage needs it, and
	// a load failure degrades to a fresh state rather than a dropped turn.
	stored, found, err := p.store.Get(ctx, env.TenantID, env.ConversationID)
	if err != nil || !found {
		if err != nil {
			p.log.Error("load conversation state failed", "err", err, "conversation", key)
		}
		stored = &domain.ConversationState{
			TenantID:       env.TenantID,
			ConversationID: env.ConversationID,
		}
	}
	t.state = stored

	_ = p.runStage(t, "normalize", p.cfg.Normalize, func() error { p.normalize(t); return nil })
	if err := p.runStage(t, "plan", p.cfg.Plan, func() error { return p.planStage(ctx, t) }); err != nil {
		return nil, err
	}
	p.runAdvisory(t, "audit", p.cfg.Audit, func() { p.auditStage(ctx, t) })
	_ = p.runStage(t, "supervise", p.cfg.Supervise, func() error { p.superviseStage(ctx, t); return nil })
	_ = p.runStage(t, "state-update", p.cfg.StateUpdate, func() error { p.stateUpdate(ctx, t); return nil })
	_ = p.runStage(t, "format", p.cfg.Format, func() error { p.format(t); return nil })

	// The hard guarantee of the core: no turn leaves without reply text,
	// whatever combination of stages ran.
	if strings.TrimSpace(t.reply) == "" {
		t.reply = fallbackText(t.locale)
	}
	t.result.Reply = t.reply
	t.result.Category = t.category
	t.result.State = t.state

	p.history.append(t.key,
		consolidate.Turn{Role: "user", Content: t.message},
		consolidate.Turn{Role: "assistant", Content: t.reply},
	)
	return t.result, nil
}

func (p *Pipeline) runStage(t *turn, name string, mode StageMode, fn func() error) error {
	if mode == StageLegacy && name != "plan" {
		return nil
	}
	start := p.clock()
	err := fn()
	t.result.Durations[name] = p.clock().Sub(start)
	return err
}

// runAdvisory is runStage for stages whose failures must never reach the
// guest. Panics are logged and dropped.
func (p *Pipeline) runAdvisory(t *turn, name string, mode StageMode, fn func()) {
	if mode == StageLegacy {
		return
	}
	start := p.clock()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("advisory stage panicked", "stage", name, "panic", r)
		}
		t.result.Durations[name] = p.clock().Sub(start)
	}()
	fn()
}

func (p *Pipeline) normalize(t *turn) {
	t.message = strings.Join(strings.Fields(t.env.Content), " ")

	switch {
	case t.env.DetectedLanguage == "en" || t.env.DetectedLanguage == "es":
		t.locale = t.env.DetectedLanguage
	case t.state.Slots.Locale != "":
		t.locale = t.state.Slots.Locale
	default:
		t.locale = p.cfg.DefaultLocale
	}
	if t.locale != t.state.Slots.Locale {
		t.patch.Slots.Locale = domain.Set(t.locale)
	}
}

func (p *Pipeline) planStage(ctx context.Context, t *turn) error {
	if p.cfg.Plan == StageLegacy {
		return p.planLegacy(ctx, t)
	}

	if p.resend != nil {
		if out, handled := p.resend.Intercept(ctx, t.message, t.state, t.locale); handled {
			t.intercepted = true
			t.category = domain.CategoryResend
			t.reply = out.Reply
			mergeStatePatch(&t.patch, out.Patch)
			p.log.Info("turn intercepted", "layer", out.Layer, "conversation", t.key)
			return nil
		}
	}

	t.consolidation = consolidate.Resolve(consolidate.Request{
		Message: t.message,
		Prior:   t.state.Slots,
		History: p.history.recent(t.key),
		Locale:  t.locale,
		Now:     p.clock(),
	})

	pre := p.heuristic.Interpret(t.message, t.consolidation.Merged, t.state.LastReservation != nil)
	t.pre = &pre
	t.category = pre.Category

	// Deterministic fast paths run before the model is consulted.
	if p.cfg.ConstrainedEnv && pre.Category == domain.CategoryGreeting && t.consolidation.Outcome == consolidate.OutcomeNone {
		t.reply = greetingText(t.locale)
		return nil
	}
	if p.requoteFastPath(ctx, t) {
		return nil
	}

	// A date question or confirmation from the consolidator preempts the
	// planner: re-prompting for an ambiguous date must never be replaced by
	// a model guess.
	if t.consolidation.Outcome != consolidate.OutcomeNone {
		t.category = domain.CategoryReservation
		t.reply = t.consolidation.Reply
		mergeSlotsPatch(&t.patch.Slots, t.consolidation.Patch)
		if t.state.SalesStage == "" {
			t.patch.SalesStage = domain.Set(domain.StageQualify)
		}
		return nil
	}

	if p.provider == nil {
		p.planDeterministic(ctx, t)
		return nil
	}

	plan, usage, err := p.provider.Plan(ctx, planner.Request{
		Message:    t.message,
		Language:   t.locale,
		KnownSlots: knownSlots(t.consolidation.Merged),
		SalesStage: string(t.state.SalesStage),
		History:    plannerHistory(p.history.recent(t.key)),
	})
	if err != nil {
		// Planner failures never fail the turn. The category sticks to the
		// previous turn's so follow-ups keep their flow context.
		p.log.Warn("planner failed, using deterministic fallback", "err", err, "conversation", t.key)
		if t.state.LastCategory != "" {
			t.category = t.state.LastCategory
		}
		p.planDeterministic(ctx, t)
		return nil
	}
	if usage != nil {
		p.log.Debug("planner call",
			"model", usage.Model, "total_tokens", usage.TotalTokens, "latency_ms", usage.LatencyMS)
	}

	t.plan = plan
	llm := interpret.FromPlan(plan)
	t.llm = &llm
	t.category = llm.Category
	mergePlanSlots(&t.patch.Slots, t.consolidation.Merged, llm)

	t.reply = strings.TrimSpace(plan.Reply)
	if t.reply == "" {
		// Fallback chain: structured translator first, rule-based text last.
		t.reply = structuredReply(t)
	}
	if t.reply == "" {
		p.planDeterministic(ctx, t)
		return nil
	}

	if llm.Category == domain.CategoryReservation {
		p.maybeQuote(ctx, t)
	}
	return nil
}

func (p *Pipeline) planLegacy(ctx context.Context, t *turn) error {
	if p.legacy == nil {
		p.log.Warn("plan stage in legacy mode without a legacy handler")
		t.category = domain.CategoryUnknown
		return nil
	}
	reply, err := p.legacy.HandleLegacyTurn(ctx, t.env)
	if err != nil {
		p.log.Warn("legacy handler failed", "err", err)
		t.category = domain.CategoryUnknown
		return nil
	}
	t.reply = reply
	t.category = domain.CategoryUnknown
	return nil
}

// requoteFastPath recomputes room fit and price when the party size changes
// and both dates are already known, without making the guest restate dates.
func (p *Pipeline) requoteFastPath(ctx context.Context, t *turn) bool {
	if t.pre == nil {
		return false
	}
	newGuests, err := strconv.Atoi(t.pre.Slots[domain.SlotNumGuests])
	if err != nil || newGuests <= 0 {
		return false
	}
	slots := t.consolidation.Merged
	if slots.CheckIn == "" || slots.CheckOut == "" {
		return false
	}
	if t.state.Slots.NumGuests == 0 || t.state.Slots.NumGuests == newGuests {
		return false
	}

	query := availability.Query{
		TenantID:  t.env.TenantID,
		RoomType:  t.state.Slots.RoomType,
		NumGuests: newGuests,
		CheckIn:   slots.CheckIn,
		CheckOut:  slots.CheckOut,
	}
	res, err := p.checker.CheckAvailability(ctx, query)
	if err != nil || !res.OK {
		p.availabilityFailure(ctx, t, err)
		return true
	}
	if !res.Available || res.Proposal == nil {
		t.category = domain.CategoryReservation
		t.reply = noVacancyText(t.locale)
		return true
	}

	t.category = domain.CategoryReservation
	t.patch.Slots.NumGuests = domain.Set(newGuests)
	if res.Proposal.SuggestedRoomType != "" && res.Proposal.SuggestedRoomType != t.state.Slots.RoomType {
		t.patch.Slots.RoomType = domain.Set(res.Proposal.SuggestedRoomType)
	}
	t.patch.LastProposal = domain.Set(*res.Proposal)
	t.patch.SalesStage = domain.Set(domain.StageQuote)

	quoted := slots
	quoted.NumGuests = newGuests
	t.reply = requoteText(t.locale, newGuests, res.Proposal, quoted)
	return true
}

// maybeQuote attaches a live availability quote when the reservation draft is
// complete enough to price.
func (p *Pipeline) maybeQuote(ctx context.Context, t *turn) {
	merged := t.patch.Slots.Apply(t.state.Slots)
	if merged.CheckIn == "" || merged.CheckOut == "" || merged.NumGuests == 0 {
		return
	}
	if t.llm == nil {
		return
	}
	action := t.llm.DesiredAction
	if action != domain.ActionCreate && action != domain.ActionUpdate {
		return
	}

	res, err := p.checker.CheckAvailability(ctx, availability.Query{
		TenantID:  t.env.TenantID,
		RoomType:  merged.RoomType,
		NumGuests: merged.NumGuests,
		CheckIn:   merged.CheckIn,
		CheckOut:  merged.CheckOut,
	})
	if err != nil || !res.OK {
		p.availabilityFailure(ctx, t, err)
		return
	}
	if !res.Available || res.Proposal == nil {
		t.reply = noVacancyText(t.locale)
		return
	}

	if res.Proposal.SuggestedRoomType != "" && res.Proposal.SuggestedRoomType != merged.RoomType {
		t.patch.Slots.RoomType = domain.Set(res.Proposal.SuggestedRoomType)
		merged.RoomType = res.Proposal.SuggestedRoomType
	}
	t.patch.LastProposal = domain.Set(*res.Proposal)
	t.patch.SalesStage = domain.Set(domain.StageQuote)
	t.reply = quoteText(t.locale, res.Proposal, merged)
}

// availabilityFailure produces the apology reply. The human-handoff line is
// debounced per conversation so back-to-back failures announce it once.
func (p *Pipeline) availabilityFailure(ctx context.Context, t *turn, err error) {
	withHandoff := p.debounce.ShouldAnnounce(t.key, p.clock())
	p.log.Error("availability check failed", "err", err, "conversation", t.key)
	if withHandoff {
		p.notifier.Notify(ctx, audit.Event{
			Kind:         audit.KindHumanHandoff,
			Conversation: t.key,
			Message:      "availability check failed, guest promised a human follow-up",
		})
	}
	t.category = domain.CategoryReservation
	t.reply = availabilityApologyText(t.locale, withHandoff)
}

// planDeterministic is the last link of the fallback chain: a rule-based
// reply from the heuristic interpretation alone.
func (p *Pipeline) planDeterministic(ctx context.Context, t *turn) {
	cat := t.category
	if t.pre != nil && cat == "" {
		cat = t.pre.Category
	}
	switch cat {
	case domain.CategoryGreeting:
		t.reply = greetingText(t.locale)
	case domain.CategoryCancel:
		t.reply = cancelAckText(t.locale)
		t.patch.ActiveFlow = domain.Set(domain.FlowCancel)
	case domain.CategorySnapshot, domain.CategoryVerify:
		t.reply = snapshotIntroText(t.locale) + quickintent.BuildSummary(t.state, t.locale)
	case domain.CategoryReservation:
		merged := t.consolidation.Merged
		if merged.CheckIn != "" && merged.CheckOut != "" && merged.NumGuests > 0 {
			res, err := p.checker.CheckAvailability(ctx, availability.Query{
				TenantID:  t.env.TenantID,
				RoomType:  merged.RoomType,
				NumGuests: merged.NumGuests,
				CheckIn:   merged.CheckIn,
				CheckOut:  merged.CheckOut,
			})
			if err != nil || !res.OK {
				p.availabilityFailure(ctx, t, err)
				return
			}
			if !res.Available || res.Proposal == nil {
				t.reply = noVacancyText(t.locale)
				return
			}
			t.patch.LastProposal = domain.Set(*res.Proposal)
			t.patch.SalesStage = domain.Set(domain.StageQuote)
			t.reply = quoteText(t.locale, res.Proposal, merged)
			return
		}
		t.reply = fallbackText(t.locale)
	default:
		t.reply = fallbackText(t.locale)
	}
}

// auditStage compares the two interpretations. Purely advisory: any failure
// here leaves supervision untouched.
func (p *Pipeline) auditStage(ctx context.Context, t *turn) {
	if t.pre == nil || t.llm == nil || t.intercepted {
		return
	}

	v := p.verdicts.Compare(*t.pre, *t.llm)
	t.result.Verdict = &v
	if v.Status != domain.VerdictDisagree {
		return
	}

	t.needsSupervision = true
	rec := domain.SupervisionRecord{
		At:          p.clock().UTC(),
		MessageText: t.message,
		Pre:         *t.pre,
		LLM:         *t.llm,
		Verdict:     v,
	}
	if p.records != nil {
		stored, err := p.records.Enqueue(ctx, t.env.TenantID, t.env.ConversationID, rec)
		if err != nil {
			p.log.Error("failed to enqueue supervision record", "err", err)
		} else {
			rec = stored
		}
	}
	t.patch.Supervised = domain.Set(true)
	t.patch.LastSupervision = domain.Set(rec)

	p.notifier.Notify(ctx, audit.Event{
		Kind:         audit.KindDisagreement,
		Conversation: t.key,
		Message:      v.Reason,
	})
}

func (p *Pipeline) superviseStage(ctx context.Context, t *turn) {
	stage := t.state.SalesStage
	if s, ok := t.patch.SalesStage.Value(); ok {
		stage = s
	}
	out := supervise.Decide(supervise.Input{
		Mode:             p.cfg.Mode,
		Category:         t.category,
		SalesStage:       stage,
		NeedsSupervision: t.needsSupervision || t.state.Supervised,
	})
	t.result.AutoSend = out.AutoSend
	t.result.Status = out.Status

	if out.Status == supervise.StatusPending {
		p.log.Info("reply held for review",
			"conversation", t.key, "category", t.category, "reason", out.Reason)
		p.notifier.Notify(ctx, audit.Event{
			Kind:         audit.KindHeldForReview,
			Conversation: t.key,
			Message:      fmt.Sprintf("reply held (%s): %s", out.Reason, t.category),
		})
	}
}

func (p *Pipeline) stateUpdate(ctx context.Context, t *turn) {
	if t.category != "" && t.category != domain.CategoryUnknown {
		t.patch.LastCategory = domain.Set(t.category)
	}
	t.patch.UpdatedBy = "pipeline"

	updated, err := p.store.Upsert(ctx, t.env.TenantID, t.env.ConversationID, t.patch)
	if err != nil {
		// A lost write must not lose the reply. The guest still gets the
		// text; the next turn re-derives what it can.
		p.log.Error("state upsert failed", "err", err, "conversation", t.key)
		return
	}
	t.state = updated
}

func (p *Pipeline) format(t *turn) {
	t.reply = strings.TrimSpace(t.reply)
	if t.reply == "" {
		t.reply = fallbackText(t.locale)
	}
}

// structuredReply is the planner fallback translator: a deterministic reply
// built from the plan's structure when the model produced no usable text.
func structuredReply(t *turn) string {
	if t.plan == nil {
		return ""
	}
	switch domain.Category(t.plan.Category) {
	case domain.CategoryGreeting:
		return greetingText(t.locale)
	case domain.CategoryCancel:
		return cancelAckText(t.locale)
	case domain.CategorySnapshot, domain.CategoryVerify:
		return snapshotIntroText(t.locale) + quickintent.BuildSummary(t.state, t.locale)
	default:
		return ""
	}
}

func knownSlots(s domain.ReservationSlots) map[string]string {
	out := make(map[string]string)
	if s.GuestName != "" {
		out["guestName"] = s.GuestName
	}
	if s.RoomType != "" {
		out["roomType"] = s.RoomType
	}
	if s.CheckIn != "" {
		out["checkIn"] = s.CheckIn
	}
	if s.CheckOut != "" {
		out["checkOut"] = s.CheckOut
	}
	if s.NumGuests > 0 {
		out["numGuests"] = strconv.Itoa(s.NumGuests)
	}
	return out
}

func plannerHistory(turns []consolidate.Turn) []planner.HistoryMessage {
	out := make([]planner.HistoryMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, planner.HistoryMessage{Role: t.Role, Content: t.Content})
	}
	return out
}

// mergePlanSlots folds the model's confident slot values into the patch,
// except dates, which only the consolidator may write.
func mergePlanSlots(patch *domain.SlotsPatch, merged domain.ReservationSlots, llm domain.Interpretation) {
	if v := llm.Slots[domain.SlotGuestName]; v != "" && v != merged.GuestName {
		patch.GuestName = domain.Set(v)
	}
	if v := llm.Slots[domain.SlotRoomType]; v != "" && v != merged.RoomType {
		patch.RoomType = domain.Set(v)
	}
	if v := llm.Slots[domain.SlotNumGuests]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n != merged.NumGuests {
			patch.NumGuests = domain.Set(n)
		}
	}
}

func mergeSlotsPatch(dst *domain.SlotsPatch, src domain.SlotsPatch) {
	if !src.GuestName.Unchanged() {
		dst.GuestName = src.GuestName
	}
	if !src.RoomType.Unchanged() {
		dst.RoomType = src.RoomType
	}
	if !src.CheckIn.Unchanged() {
		dst.CheckIn = src.CheckIn
	}
	if !src.CheckOut.Unchanged() {
		dst.CheckOut = src.CheckOut
	}
	if !src.NumGuests.Unchanged() {
		dst.NumGuests = src.NumGuests
	}
	if !src.Locale.Unchanged() {
		dst.Locale = src.Locale
	}
}

func mergeStatePatch(dst *domain.StatePatch, src domain.StatePatch) {
	mergeSlotsPatch(&dst.Slots, src.Slots)
	if !src.LastProposal.Unchanged() {
		dst.LastProposal = src.LastProposal
	}
	if !src.LastReservation.Unchanged() {
		dst.LastReservation = src.LastReservation
	}
	if !src.SalesStage.Unchanged() {
		dst.SalesStage = src.SalesStage
	}
	if !src.ActiveFlow.Unchanged() {
		dst.ActiveFlow = src.ActiveFlow
	}
	if !src.LastCategory.Unchanged() {
		dst.LastCategory = src.LastCategory
	}
	if !src.Supervised.Unchanged() {
		dst.Supervised = src.Supervised
	}
	if !src.LastSupervision.Unchanged() {
		dst.LastSupervision = src.LastSupervision
	}
	if src.UpdatedBy != "" {
		dst.UpdatedBy = src.UpdatedBy
	}
}
