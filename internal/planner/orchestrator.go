package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool/builtins"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// destinationAirports maps known destinations to their arrival airports for
// flight searches. Unknown destinations search without an airport filter.
var destinationAirports = map[string][]string{
	"tokyo": {"NRT", "HND"},
	"osaka": {"KIX", "ITM"},
}

// FillOptions tune how slots are (re)filled during repair rounds.
type FillOptions struct {
	// Relax widens filtering: drops preference tags and price bands so a
	// missing-category repair can find anything at all.
	Relax bool

	// MaxPrice caps option prices for cost repairs; 0 means uncapped.
	MaxPrice float64

	// PreferIndoor steers activity choices indoors for weather repairs.
	PreferIndoor bool
}

// FillResult is the outcome of one orchestration pass: the (cloned) skeleton
// with slots filled where possible, every tool call issued including failed
// attempts, accepted knowledge citations, and any currency rates fetched.
type FillResult struct {
	Skeleton  *PlanSkeleton
	Calls     []tool.Call
	Citations []knowledge.Citation
	Rates     map[string]float64
}

// Orchestrator resolves a skeleton's open slots by dispatching tool calls:
// independent slot groups run concurrently under an in-flight bound, in-day
// dependencies (weather needs geocoded coordinates) are sequenced by explicit
// edges, and every call gets a per-call timeout with bounded retries. A slot
// whose calls exhaust the retry budget is marked unfilled with the failure
// reason instead of aborting the plan.
type Orchestrator struct {
	registry            tool.Registry
	callTimeout         time.Duration
	maxRetries          int
	maxInFlight         int
	similarityThreshold float64
	baseCurrency        string
	backoffInitial      time.Duration
	logger              *slog.Logger
	emitter             ProgressEmitter
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCallTimeout sets the per-call timeout. Default 10s.
func WithCallTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithToolRetries sets retries after a transient tool failure. Default 2.
func WithToolRetries(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxInFlight bounds concurrent tool calls within one run. Default 6.
func WithMaxInFlight(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxInFlight = n
		}
	}
}

// WithSimilarityThreshold gates knowledge citations. Default 0.35.
func WithSimilarityThreshold(t float64) OrchestratorOption {
	return func(o *Orchestrator) {
		if t >= 0 {
			o.similarityThreshold = t
		}
	}
}

// WithBaseCurrency sets the currency item costs are priced in. Default USD.
func WithBaseCurrency(currency string) OrchestratorOption {
	return func(o *Orchestrator) {
		if currency != "" {
			o.baseCurrency = strings.ToUpper(currency)
		}
	}
}

// WithBackoffInitial sets the first retry delay. Default 200ms.
func WithBackoffInitial(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.backoffInitial = d
		}
	}
}

// WithLogger sets the structured logger. Default slog.Default().
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgressEmitter sets the progress event sink.
func WithProgressEmitter(emitter ProgressEmitter) OrchestratorOption {
	return func(o *Orchestrator) {
		if emitter != nil {
			o.emitter = emitter
		}
	}
}

// NewOrchestrator creates an Orchestrator over the given tool registry.
func NewOrchestrator(registry tool.Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:            registry,
		callTimeout:         10 * time.Second,
		maxRetries:          2,
		maxInFlight:         6,
		similarityThreshold: 0.35,
		baseCurrency:        "USD",
		backoffInitial:      200 * time.Millisecond,
		logger:              slog.Default(),
		emitter:             NopEmitter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fillTask is one node of the dispatch graph: a tool call serving a group of
// slots (or pure context, like weather), sequenced after its dependencies.
type fillTask struct {
	name         string
	tool         string
	args         map[string]any
	argsFn       func() map[string]any // computed after deps resolve; overrides args
	slotIDs      []types.ID
	deps         []*fillTask
	preferIndoor bool
	done         chan struct{}

	result map[string]any
	calls  []tool.Call
	err    error
}

func newFillTask(name, toolName string, args map[string]any, slotIDs ...types.ID) *fillTask {
	return &fillTask{
		name:    name,
		tool:    toolName,
		args:    args,
		slotIDs: slotIDs,
		done:    make(chan struct{}),
	}
}

// Fill resolves every unfilled slot plus the trip's context lookups (geocode,
// weather, currency rates). The input skeleton is never mutated.
func (o *Orchestrator) Fill(ctx context.Context, skeleton *PlanSkeleton, cs *ConstraintSet) (*FillResult, error) {
	return o.run(ctx, skeleton, cs, skeleton.UnfilledSlotIDs(), FillOptions{}, true)
}

// Refill re-resolves just the given slots, clearing any items they hold.
// Repair rounds use it to re-query with adjusted parameters.
func (o *Orchestrator) Refill(ctx context.Context, skeleton *PlanSkeleton, cs *ConstraintSet, slotIDs []types.ID, opts FillOptions) (*FillResult, error) {
	return o.run(ctx, skeleton, cs, slotIDs, opts, false)
}

func (o *Orchestrator) run(ctx context.Context, skeleton *PlanSkeleton, cs *ConstraintSet, slotIDs []types.ID, opts FillOptions, withContext bool) (*FillResult, error) {
	filled := skeleton.Clone()
	for _, id := range slotIDs {
		if _, slot, ok := filled.Slot(id); ok {
			slot.Item = nil
			slot.FailureReason = ""
		}
	}

	tasks := o.buildTasks(filled, cs, slotIDs, opts, withContext)
	if len(tasks) == 0 {
		return &FillResult{Skeleton: filled}, nil
	}

	sem := make(chan struct{}, o.maxInFlight)
	g, runCtx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			o.executeTask(runCtx, t, sem)
			return nil
		})
	}
	// Workers only record errors on their tasks, so Wait cannot fail.
	_ = g.Wait()

	result := &FillResult{Skeleton: filled, Rates: map[string]float64{}}
	for _, t := range tasks {
		result.Calls = append(result.Calls, t.calls...)
		o.mergeTask(filled, cs, t, result)
	}
	return result, nil
}

// buildTasks groups the requested slots by independent query (one tool call
// per group) and wires context lookups with their dependency edges.
func (o *Orchestrator) buildTasks(skeleton *PlanSkeleton, cs *ConstraintSet, slotIDs []types.ID, opts FillOptions, withContext bool) []*fillTask {
	wanted := make(map[types.ID]bool, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = true
	}

	var tasks []*fillTask

	// Per-destination slot groups. Days for one destination are contiguous.
	type destSpan struct {
		name           string
		start, end     time.Time
		lodging, meals []types.ID
		activities     []types.ID
	}
	var spans []*destSpan
	spanFor := func(day *Day) *destSpan {
		if len(spans) > 0 && spans[len(spans)-1].name == day.Destination {
			return spans[len(spans)-1]
		}
		s := &destSpan{name: day.Destination, start: day.Date}
		spans = append(spans, s)
		return s
	}

	var flightSlots []types.ID
	for i := range skeleton.Days {
		day := &skeleton.Days[i]
		span := spanFor(day)
		span.end = day.Date
		for j := range day.Slots {
			slot := &day.Slots[j]
			if !wanted[slot.ID] {
				continue
			}
			switch slot.Category {
			case CategoryFlight:
				flightSlots = append(flightSlots, slot.ID)
			case CategoryLodging:
				span.lodging = append(span.lodging, slot.ID)
			case CategoryActivity:
				span.activities = append(span.activities, slot.ID)
			case CategoryMeal:
				span.meals = append(span.meals, slot.ID)
			case CategoryTransit:
				prev := ""
				if i > 0 {
					prev = skeleton.Days[i-1].Destination
				}
				tasks = append(tasks, newFillTask(
					"transit:"+prev+"-"+day.Destination, "transit",
					map[string]any{"origin": prev, "destination": day.Destination},
					slot.ID))
			}
		}
	}

	if len(flightSlots) > 0 && len(skeleton.Days) > 0 {
		args := map[string]any{
			"departure_airport": cs.Origin,
			"departure_date":    skeleton.Days[0].DateString(),
		}
		if airports := airportsFor(cs.PrimaryDestination()); len(airports) > 0 {
			args["arrival_airports"] = airports
		}
		if opts.MaxPrice > 0 {
			args["max_price"] = opts.MaxPrice
		}
		tasks = append(tasks, newFillTask("flights", "flights", args, flightSlots...))
	}

	for _, span := range spans {
		endDate := span.end.AddDate(0, 0, 1).Format(dateLayout)
		if len(span.lodging) > 0 {
			args := map[string]any{
				"start_date": span.start.Format(dateLayout),
				"end_date":   endDate,
			}
			if opts.MaxPrice > 0 {
				args["max_price"] = opts.MaxPrice
			}
			tasks = append(tasks, newFillTask("lodging:"+span.name, "lodging", args, span.lodging...))
		}
		if len(span.activities) > 0 {
			args := map[string]any{
				"location":   span.name,
				"start_date": span.start.Format(dateLayout),
				"end_date":   endDate,
			}
			if len(cs.SoftPrefs) > 0 && !opts.Relax {
				args["tags"] = cs.SoftPrefTags()
			}
			if opts.MaxPrice > 0 {
				args["max_price"] = opts.MaxPrice
			}
			events := newFillTask("events:"+span.name, "events", args, span.activities...)
			events.preferIndoor = opts.PreferIndoor
			tasks = append(tasks, events)
		}
		if len(span.meals) > 0 {
			tasks = append(tasks, newFillTask("meals:"+span.name, knowledge.ToolName, map[string]any{
				"query":             "food dining restaurants " + span.name,
				"destination_scope": span.name,
			}, span.meals...))
		}

		if withContext && span.name != "" {
			geocode := newFillTask("geocode:"+span.name, "geocoding",
				map[string]any{"query": span.name})
			weather := newFillTask("weather:"+span.name, "weather", nil)
			weather.deps = []*fillTask{geocode}
			span := span
			weather.argsFn = func() map[string]any {
				args := map[string]any{
					"location":   span.name,
					"start_date": span.start.Format(dateLayout),
					"end_date":   span.end.Format(dateLayout),
				}
				// Coordinates ride along when geocoding resolved; the
				// forecast source keys on them in production.
				if geocode.err == nil && geocode.result != nil {
					args["latitude"] = geocode.result["latitude"]
					args["longitude"] = geocode.result["longitude"]
				}
				return args
			}
			tasks = append(tasks, geocode, weather)
		}
	}

	if withContext && cs.Budget != nil && cs.Budget.Currency != "" && cs.Budget.Currency != o.baseCurrency {
		tasks = append(tasks, newFillTask("currency", "currency_rates", map[string]any{
			"base_currency":     o.baseCurrency,
			"target_currencies": []string{cs.Budget.Currency},
		}))
	}

	return tasks
}

// executeTask waits for the task's dependency edges, takes an in-flight
// permit, and runs the call with timeout and retry.
func (o *Orchestrator) executeTask(ctx context.Context, t *fillTask, sem chan struct{}) {
	defer close(t.done)

	for _, dep := range t.deps {
		select {
		case <-dep.done:
		case <-ctx.Done():
			t.err = ctx.Err()
			return
		}
	}

	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-ctx.Done():
		t.err = ctx.Err()
		return
	}

	args := t.args
	if t.argsFn != nil {
		args = t.argsFn()
	}

	emit(o.emitter, "orchestrate", t.name, ProgressStarted, 0)
	start := time.Now()
	t.result, t.calls, t.err = o.invokeWithRetry(ctx, t.tool, args)
	status := ProgressCompleted
	if t.err != nil {
		status = ProgressFailed
	}
	emit(o.emitter, "orchestrate", t.name, status, time.Since(start))
}

// invokeWithRetry runs one tool call with the per-call timeout, retrying
// transient failures with exponential backoff up to the retry budget. Every
// attempt is recorded as its own immutable Call.
func (o *Orchestrator) invokeWithRetry(ctx context.Context, toolName string, args map[string]any) (map[string]any, []tool.Call, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.backoffInitial
	bo.MaxInterval = 5 * time.Second

	var calls []tool.Call
	var lastErr error

	for attempt := 1; attempt <= o.maxRetries+1; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		start := time.Now()
		result, err := o.registry.Execute(attemptCtx, toolName, args)
		latency := time.Since(start)
		cancel()

		if err == nil {
			calls = append(calls, tool.NewCompletedCall(toolName, args, result, attempt, latency))
			return result, calls, nil
		}

		calls = append(calls, tool.NewFailedCall(toolName, args, err, attempt, latency))
		lastErr = err

		if ctx.Err() != nil {
			// The run's deadline, not the attempt's. Stop immediately.
			return nil, calls, types.WrapError(types.DEADLINE_EXCEEDED,
				fmt.Sprintf("tool %q cancelled by run deadline", toolName), ctx.Err())
		}

		transient := types.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded)
		if !transient || attempt > o.maxRetries {
			break
		}

		o.logger.WarnContext(ctx, "tool call failed, will retry",
			"tool", toolName,
			"attempt", attempt,
			"error", err)

		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return nil, calls, types.WrapError(types.DEADLINE_EXCEEDED,
				fmt.Sprintf("tool %q cancelled by run deadline", toolName), ctx.Err())
		}
	}

	return nil, calls, types.WrapRetryableError(types.TOOL_UNAVAILABLE,
		fmt.Sprintf("tool %q failed after %d attempts", toolName, len(calls)), lastErr)
}

// mergeTask folds one task's outcome into the skeleton: items for its slots
// on success, failure reasons on exhaustion, context onto days.
func (o *Orchestrator) mergeTask(skeleton *PlanSkeleton, cs *ConstraintSet, t *fillTask, out *FillResult) {
	if t.err != nil {
		for _, id := range t.slotIDs {
			if _, slot, ok := skeleton.Slot(id); ok && !slot.Filled() {
				slot.FailureReason = t.err.Error()
			}
		}
		return
	}

	callRef := provenanceRef(t)
	switch t.tool {
	case "flights":
		o.mergeFlights(skeleton, t, callRef)
	case "lodging":
		o.mergeLodging(skeleton, t, callRef)
	case "events":
		o.mergeEvents(skeleton, cs, t, callRef)
	case knowledge.ToolName:
		o.mergeMeals(skeleton, t, callRef, out)
	case "transit":
		o.mergeTransit(skeleton, t, callRef)
	case "weather":
		o.mergeWeather(skeleton, t)
	case "currency_rates":
		o.mergeRates(t, out)
	}
}

// provenanceRef is "tool_name#call_id" of the successful attempt.
func provenanceRef(t *fillTask) string {
	for _, call := range t.calls {
		if call.Succeeded() {
			return fmt.Sprintf("%s#%s", call.Tool, call.ID)
		}
	}
	return t.tool
}

func (o *Orchestrator) mergeFlights(skeleton *PlanSkeleton, t *fillTask, ref string) {
	var output builtins.FlightsOutput
	if err := decodeOutput(t.result, &output); err != nil || len(output.Flights) == 0 {
		o.markUnfilled(skeleton, t.slotIDs, "no matching flights")
		return
	}

	flight := output.Flights[0]
	for _, id := range t.slotIDs {
		if _, slot, ok := skeleton.Slot(id); ok {
			slot.Item = &ItineraryItem{
				SlotID:     id,
				Title:      fmt.Sprintf("%s %s %s→%s", flight.Airline, flight.FlightNumber, flight.DepartureAirport, flight.ArrivalAirport),
				Detail:     fmt.Sprintf("departs %s, arrives %s", flight.DepartureTime, flight.ArrivalTime),
				Cost:       types.NewMoney(flight.Price, o.baseCurrency),
				Tags:       []string{"flight", "transport"},
				Provenance: []Provenance{{Kind: ProvenanceTool, Ref: ref}},
			}
		}
	}
}

func (o *Orchestrator) mergeLodging(skeleton *PlanSkeleton, t *fillTask, ref string) {
	var output builtins.LodgingOutput
	if err := decodeOutput(t.result, &output); err != nil || len(output.LodgingOptions) == 0 {
		o.markUnfilled(skeleton, t.slotIDs, "no matching lodging")
		return
	}

	stay := output.LodgingOptions[0]
	for _, id := range t.slotIDs {
		if _, slot, ok := skeleton.Slot(id); ok {
			slot.Item = &ItineraryItem{
				SlotID:     id,
				Title:      stay.Name,
				Detail:     fmt.Sprintf("%s, %s", stay.Neighborhood, stay.CancellationPolicy),
				Cost:       types.NewMoney(stay.PricePerNight, o.baseCurrency),
				Tags:       []string{"lodging"},
				Provenance: []Provenance{{Kind: ProvenanceTool, Ref: ref}},
			}
		}
	}
}

func (o *Orchestrator) mergeEvents(skeleton *PlanSkeleton, cs *ConstraintSet, t *fillTask, ref string) {
	var output builtins.EventsOutput
	if err := decodeOutput(t.result, &output); err != nil || len(output.Events) == 0 {
		o.markUnfilled(skeleton, t.slotIDs, "no matching events")
		return
	}

	events := rankEvents(output.Events, cs.SoftPrefTags(), t.preferIndoor)
	for i, id := range t.slotIDs {
		event := events[i%len(events)]
		if _, slot, ok := skeleton.Slot(id); ok {
			slot.Item = &ItineraryItem{
				SlotID:     id,
				Title:      event.Name,
				Detail:     fmt.Sprintf("open %s", event.OpeningHours),
				Cost:       types.NewMoney(event.Price, o.baseCurrency),
				Tags:       append([]string{"activity"}, event.Tags...),
				Outdoor:    !event.IsIndoor,
				Provenance: []Provenance{{Kind: ProvenanceTool, Ref: ref}},
			}
		}
	}
}

func (o *Orchestrator) mergeMeals(skeleton *PlanSkeleton, t *fillTask, ref string, out *FillResult) {
	results, err := knowledge.DecodeResults(t.result)
	if err != nil {
		results = nil
	}

	// Citation gate: only passages clearing the similarity threshold are
	// cited; everything else falls back to a generic uncited suggestion
	// whose provenance is the retrieval call itself.
	var cited []knowledge.Result
	for _, r := range results {
		if r.Score >= o.similarityThreshold {
			cited = append(cited, r)
		}
	}

	for i, id := range t.slotIDs {
		_, slot, ok := skeleton.Slot(id)
		if !ok {
			continue
		}
		item := &ItineraryItem{
			SlotID:     id,
			Cost:       types.NewMoney(0, o.baseCurrency),
			Tags:       []string{"meal", "food"},
			Provenance: []Provenance{{Kind: ProvenanceTool, Ref: ref}},
		}
		if len(cited) > 0 {
			r := cited[i%len(cited)]
			item.Title = "Dining: " + r.Passage.Title
			item.Detail = snippet(r.Passage.Text, 140)
			item.Provenance = append(item.Provenance,
				Provenance{Kind: ProvenanceKnowledge, Ref: r.Passage.ID})
			out.Citations = appendCitation(out.Citations, knowledge.CitationFor(r.Passage))
		} else {
			item.Title = "Local dining"
			item.Detail = "no knowledge-base match cleared the similarity threshold"
		}
		slot.Item = item
	}
}

func (o *Orchestrator) mergeTransit(skeleton *PlanSkeleton, t *fillTask, ref string) {
	var output builtins.TransitOutput
	if err := decodeOutput(t.result, &output); err != nil {
		o.markUnfilled(skeleton, t.slotIDs, "no transit route")
		return
	}

	for _, id := range t.slotIDs {
		if day, slot, ok := skeleton.Slot(id); ok {
			slot.Item = &ItineraryItem{
				SlotID:     id,
				Title:      fmt.Sprintf("%s to %s", output.Mode, day.Destination),
				Detail:     fmt.Sprintf("%d min", output.TravelMinutes),
				Cost:       types.NewMoney(output.Fare, o.baseCurrency),
				Tags:       []string{"transit", "transport"},
				Provenance: []Provenance{{Kind: ProvenanceTool, Ref: ref}},
			}
		}
	}
}

func (o *Orchestrator) mergeWeather(skeleton *PlanSkeleton, t *fillTask) {
	var output builtins.WeatherOutput
	if err := decodeOutput(t.result, &output); err != nil {
		return
	}

	byDate := make(map[string]builtins.DailyForecast, len(output.Daily))
	for _, d := range output.Daily {
		byDate[d.ForecastDate] = d
	}
	for i := range skeleton.Days {
		if f, ok := byDate[skeleton.Days[i].DateString()]; ok {
			skeleton.Days[i].Weather = &DayWeather{
				WeatherCode:       f.WeatherCode,
				MaxTemp:           f.MaxTemp,
				MinTemp:           f.MinTemp,
				PrecipProbability: f.PrecipProbability,
			}
		}
	}
}

func (o *Orchestrator) mergeRates(t *fillTask, out *FillResult) {
	var output builtins.CurrencyOutput
	if err := decodeOutput(t.result, &output); err != nil {
		return
	}
	for currency, rate := range output.Rates {
		out.Rates[currency] = rate
	}
}

func (o *Orchestrator) markUnfilled(skeleton *PlanSkeleton, slotIDs []types.ID, reason string) {
	for _, id := range slotIDs {
		if _, slot, ok := skeleton.Slot(id); ok && !slot.Filled() {
			slot.FailureReason = reason
		}
	}
}

// rankEvents orders candidates by soft-preference tag matches (descending),
// then indoor preference, then price.
func rankEvents(events []builtins.EventOption, prefTags []string, preferIndoor bool) []builtins.EventOption {
	ranked := append([]builtins.EventOption(nil), events...)
	score := func(e builtins.EventOption) int {
		s := 0
		for _, tag := range prefTags {
			for _, have := range e.Tags {
				if strings.EqualFold(have, tag) {
					s++
				}
			}
		}
		if preferIndoor && e.IsIndoor {
			s++
		}
		return s
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i]), score(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].Price < ranked[j].Price
	})
	return ranked
}

func airportsFor(destination string) []string {
	return destinationAirports[strings.ToLower(strings.TrimSpace(destination))]
}

func appendCitation(citations []knowledge.Citation, c knowledge.Citation) []knowledge.Citation {
	for _, existing := range citations {
		if existing.Ref == c.Ref {
			return citations
		}
	}
	return append(citations, c)
}

// decodeOutput round-trips a tool result map into its typed output struct.
func decodeOutput(result map[string]any, v any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
