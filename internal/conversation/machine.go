// Package conversation drives the slot-filling dialogue that turns a
// spoken command into a confirmed broker order.
package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/instruments"
	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/trace"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// State enumerates the phases of one conversation turn.
type State int

const (
	StateIdle State = iota
	StateCapturingCommand
	StateInterpreting
	StateAwaitingSlot
	StateCapturingAnswer
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCapturingCommand:
		return "CAPTURING_COMMAND"
	case StateInterpreting:
		return "INTERPRETING"
	case StateAwaitingSlot:
		return "AWAITING_SLOT"
	case StateCapturingAnswer:
		return "CAPTURING_ANSWER"
	case StateConfirming:
		return "CONFIRMING"
	}
	return "UNKNOWN"
}

// Slot tags the draft field the machine is waiting on.
type Slot string

const (
	SlotAction         Slot = "action"
	SlotQuantity       Slot = "quantity"
	SlotSymbol         Slot = "symbol"
	SlotDisambiguation Slot = "instrument"
)

// Deps carries everything a Machine talks to. Speaker, Listener and
// Prompter are separate so voice and keyboard paths can be swapped out
// independently in tests.
type Deps struct {
	Config   *store.Config
	NLU      interfaces.NLU
	Broker   interfaces.Broker
	Resolver *instruments.Resolver
	Speaker  interfaces.Speaker
	Listener interfaces.Listener
	Prompter interfaces.Prompter
	Wake     interfaces.WakeDetector

	ConfirmPIN string

	// MarketOpen gates the after-market flag on placed orders.
	MarketOpen func() bool

	// SpeakError renders a broker error as a sentence. Defaults to a
	// generic apology.
	SpeakError func(error) string

	// RecordTrade persists a placed order, when set.
	RecordTrade func(types.OrderReq, types.OrderResp)

	// RecordTurn persists the outcome of a finished turn, when set.
	RecordTurn func(outcome, utterance, symbol string)
}

// Machine owns the conversation state: the draft under construction,
// the pending slot tag, and the current phase. One turn runs at a time.
type Machine struct {
	deps Deps

	state       State
	draft       types.OrderDraft
	pendingSlot Slot
	resolveMiss int
}

func NewMachine(deps Deps) *Machine {
	if deps.MarketOpen == nil {
		deps.MarketOpen = func() bool { return true }
	}
	if deps.SpeakError == nil {
		deps.SpeakError = func(error) string {
			return "A system error occurred. Please check the logs."
		}
	}
	return &Machine{deps: deps, state: StateIdle}
}

// State reports the current phase. Exposed for tests and status pages.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) setState(ctx context.Context, s State) {
	logger.Debug(ctx, "State transition", "from", m.state.String(), "to", s.String())
	m.state = s
}

// say never fails the turn; a silent assistant still prints.
func (m *Machine) say(ctx context.Context, text string) {
	if err := m.deps.Speaker.Say(ctx, text); err != nil {
		logger.Warn(ctx, "Speaker failed", "error", err)
	}
}

// logTurn writes the turn outcome to the structured log and, when a
// journal hook is wired, to the turn journal.
func (m *Machine) logTurn(ctx context.Context, outcome, utterance string) {
	logger.Turn(ctx, outcome, utterance)
	if m.deps.RecordTurn != nil {
		m.deps.RecordTurn(outcome, utterance, m.draft.Symbol)
	}
}

// Run loops turns until the context is cancelled.
func (m *Machine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.RunTurn(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorWithErr(ctx, "Turn failed", err)
		}
	}
}

// RunTurn blocks on the wake trigger, then drives one command to
// completion or cancellation. The draft never survives a turn.
func (m *Machine) RunTurn(ctx context.Context) error {
	m.setState(ctx, StateIdle)
	if err := m.deps.Wake.WaitForWake(ctx); err != nil {
		return err
	}

	ctx, span := trace.StartSpan(ctx, "conversation-turn")
	defer span.End()

	defer func() {
		m.draft.Reset()
		m.pendingSlot = ""
		m.resolveMiss = 0
		m.setState(ctx, StateIdle)
	}()

	m.say(ctx, "I'm listening.")
	m.setState(ctx, StateCapturingCommand)

	command, err := m.deps.Listener.Capture(ctx, m.commandWindow())
	if err != nil {
		m.say(ctx, "Something went wrong while recording. Please try again.")
		return err
	}
	if command == "" {
		m.say(ctx, "I didn't catch that. Please try again.")
		m.logTurn(ctx, "no-utterance", "")
		return nil
	}

	m.setState(ctx, StateInterpreting)
	intent, err := m.deps.NLU.ParseCommand(ctx, command)
	if err != nil {
		m.say(ctx, "Sorry, I had trouble understanding the command.")
		m.logTurn(ctx, "unparsed", command)
		return nil
	}
	m.draft.ApplyIntent(intent)

	if !m.fillDraft(ctx) {
		m.logTurn(ctx, "cancelled", command)
		return nil
	}

	outcome := m.confirmAndPlace(ctx)
	m.logTurn(ctx, outcome, command)
	return nil
}

// fillDraft runs the validation sequence until every slot is filled or
// the turn dies. The order is fixed: action, quantity, symbol,
// instrument. Each pass re-checks from the top so the first unmet
// condition always wins.
func (m *Machine) fillDraft(ctx context.Context) bool {
	for {
		switch {
		case m.draft.Action == "":
			if !m.fillSlot(ctx, SlotAction, "Should I buy or sell?") {
				return false
			}
		case m.draft.Quantity <= 0:
			if !m.fillSlot(ctx, SlotQuantity, "How many shares?") {
				return false
			}
		case m.draft.Symbol == "":
			if !m.fillSlot(ctx, SlotSymbol, "Which stock?") {
				return false
			}
		case m.draft.Instrument == nil:
			if !m.resolveInstrument(ctx) {
				return false
			}
		default:
			return true
		}
	}
}

// fillSlot asks for one slot: a voice attempt, then the keyboard
// fallback. Failing both cancels the whole draft.
func (m *Machine) fillSlot(ctx context.Context, slot Slot, prompt string) bool {
	m.pendingSlot = slot
	m.setState(ctx, StateAwaitingSlot)
	m.say(ctx, prompt)

	m.setState(ctx, StateCapturingAnswer)
	answer, err := m.deps.Listener.Capture(ctx, m.answerWindow())
	if err == nil && answer != "" {
		intent, ferr := m.deps.NLU.FillSlot(ctx, m.draft, answer, string(slot))
		if ferr == nil && m.applySlot(slot, intent) {
			m.pendingSlot = ""
			return true
		}
		m.say(ctx, "I still didn't get that. Please use your keyboard.")
	} else {
		m.say(ctx, "I didn't catch that. Please use your keyboard.")
	}

	if m.fillSlotFromKeyboard(ctx, slot) {
		m.pendingSlot = ""
		return true
	}

	m.draft.Reset()
	m.pendingSlot = ""
	return false
}

// applySlot copies the extracted value if it is actually present.
func (m *Machine) applySlot(slot Slot, intent types.Intent) bool {
	switch slot {
	case SlotAction:
		if intent.Action != types.ActionBuy && intent.Action != types.ActionSell {
			return false
		}
		m.draft.Action = intent.Action
	case SlotQuantity:
		if intent.Quantity <= 0 {
			return false
		}
		m.draft.Quantity = intent.Quantity
	case SlotSymbol:
		if intent.Symbol == "" {
			return false
		}
		m.draft.Symbol = intent.Symbol
		m.draft.Instrument = nil
		m.draft.Candidates = nil
	default:
		return false
	}
	return true
}

func (m *Machine) fillSlotFromKeyboard(ctx context.Context, slot Slot) bool {
	switch slot {
	case SlotAction:
		choice, err := m.deps.Prompter.ReadLine(ctx, "Enter 1 for BUY or 2 for SELL: ")
		if err != nil {
			return false
		}
		switch strings.TrimSpace(choice) {
		case "1":
			m.draft.Action = types.ActionBuy
		case "2":
			m.draft.Action = types.ActionSell
		default:
			m.say(ctx, "Invalid choice. Cancelling order.")
			return false
		}
		return true

	case SlotQuantity:
		choice, err := m.deps.Prompter.ReadLine(ctx, "Enter quantity: ")
		if err != nil {
			return false
		}
		qty, perr := strconv.Atoi(strings.TrimSpace(choice))
		if perr != nil || qty <= 0 {
			m.say(ctx, "That's not a valid number. Cancelling order.")
			return false
		}
		m.draft.Quantity = qty
		return true

	case SlotSymbol:
		choice, err := m.deps.Prompter.ReadLine(ctx, "Enter stock name: ")
		if err != nil || strings.TrimSpace(choice) == "" {
			m.say(ctx, "I need a stock name. Cancelling order.")
			return false
		}
		m.draft.Symbol = strings.TrimSpace(choice)
		m.draft.Instrument = nil
		m.draft.Candidates = nil
		return true
	}
	return false
}

// resolveInstrument turns the spoken symbol into a bound instrument.
// Zero matches re-asks for the symbol a bounded number of times; many
// matches enter disambiguation.
func (m *Machine) resolveInstrument(ctx context.Context) bool {
	refs := m.deps.Resolver.Resolve(ctx, m.draft.Symbol)

	switch len(refs) {
	case 0:
		m.resolveMiss++
		if m.resolveMiss >= m.maxResolveAttempts() {
			m.say(ctx, fmt.Sprintf("Sorry, I couldn't find a stock matching %s. Cancelling order.", m.draft.Symbol))
			m.draft.Reset()
			return false
		}
		prompt := fmt.Sprintf("Sorry, I couldn't find a stock matching %s. Which stock did you mean?", m.draft.Symbol)
		m.draft.Symbol = ""
		return m.fillSlot(ctx, SlotSymbol, prompt)

	case 1:
		m.draft.BindInstrument(refs[0])
		logger.Info(ctx, "Instrument bound",
			"securityId", refs[0].SecurityID, "name", refs[0].DisplayName)
		return true

	default:
		m.draft.Candidates = refs
		m.draft.Instrument = nil
		return m.disambiguate(ctx)
	}
}

// disambiguate announces the candidates and picks one: first by
// substring against a spoken answer, then by numbered keyboard choice.
func (m *Machine) disambiguate(ctx context.Context) bool {
	m.pendingSlot = SlotDisambiguation
	m.setState(ctx, StateAwaitingSlot)

	m.say(ctx, fmt.Sprintf("Which %s did you mean?", m.draft.Symbol))
	for _, ref := range m.draft.Candidates {
		m.say(ctx, shortName(ref.DisplayName))
	}

	m.setState(ctx, StateCapturingAnswer)
	answer, err := m.deps.Listener.Capture(ctx, m.answerWindow())
	if err == nil && answer != "" {
		if ref, ok := matchCandidate(m.draft.Candidates, answer); ok {
			m.draft.BindInstrument(ref)
			m.pendingSlot = ""
			return true
		}
		m.say(ctx, fmt.Sprintf("I didn't understand '%s'. Please use your keyboard.", answer))
	} else {
		m.say(ctx, "I didn't catch that. Please use your keyboard.")
	}

	n := len(m.draft.Candidates)
	for i, ref := range m.draft.Candidates {
		fmt.Printf("  %d: %s\n", i+1, ref.DisplayName)
	}
	choice, rerr := m.deps.Prompter.ReadLine(ctx,
		fmt.Sprintf("Enter the number (1-%d) for the stock you want: ", n))
	if rerr == nil {
		if idx, perr := strconv.Atoi(strings.TrimSpace(choice)); perr == nil && idx >= 1 && idx <= n {
			m.draft.BindInstrument(m.draft.Candidates[idx-1])
			m.pendingSlot = ""
			return true
		}
	}

	m.say(ctx, "That's not a valid selection. Cancelling order.")
	m.draft.Reset()
	m.pendingSlot = ""
	return false
}

// matchCandidate returns the first candidate whose display name
// contains the answer, case-insensitive.
func matchCandidate(candidates []types.InstrumentRef, answer string) (types.InstrumentRef, bool) {
	needle := strings.ToLower(strings.TrimSpace(answer))
	for _, ref := range candidates {
		if strings.Contains(strings.ToLower(ref.DisplayName), needle) {
			return ref, true
		}
	}
	return types.InstrumentRef{}, false
}

// shortName trims a display name to its first three words for speech.
func shortName(name string) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// confirmAndPlace runs the pre-trade check, the PIN gate, and the
// placement. Returns the turn outcome for the log.
func (m *Machine) confirmAndPlace(ctx context.Context) string {
	m.setState(ctx, StateConfirming)

	check := m.preTradeCheck(ctx)
	if !check.Allowed {
		m.say(ctx, check.Message)
		return "funds-shortfall"
	}
	if check.Message != "" {
		m.say(ctx, check.Message)
	}

	m.say(ctx, fmt.Sprintf("Just to confirm, you want to %s %d shares of %s.",
		m.draft.Action, m.draft.Quantity, m.draft.Instrument.DisplayName))

	pin, err := m.deps.Prompter.ReadSecret(ctx, "Enter 4-digit PIN: ")
	if err != nil || pin != m.deps.ConfirmPIN {
		m.say(ctx, "Incorrect confirmation code. Order cancelled.")
		return "pin-rejected"
	}

	m.say(ctx, "Code accepted. Placing your order...")
	amo := !m.deps.MarketOpen()

	req := types.OrderReq{
		SecurityID:      m.draft.Instrument.SecurityID,
		Side:            m.draft.Action,
		Qty:             m.draft.Quantity,
		OrderType:       m.draft.OrderType,
		ProductType:     m.deps.Config.ProductType,
		Price:           m.draft.Price,
		Validity:        m.deps.Config.Validity,
		AfterMarket:     amo,
		ExchangeSegment: m.deps.Config.ExchangeSegment,
		Tag:             m.draft.Instrument.DisplayName,
	}
	resp, err := m.deps.Broker.PlaceOrder(ctx, req)
	if err != nil {
		m.say(ctx, m.deps.SpeakError(err))
		return "order-failed"
	}

	logger.Trade(ctx, m.draft.Instrument.DisplayName, m.draft.Action,
		m.draft.Quantity, m.draft.Price, resp.OrderID)
	if m.deps.RecordTrade != nil {
		m.deps.RecordTrade(req, resp)
	}

	suffix := "."
	if amo {
		suffix = " as an after market order."
	}
	switch resp.Status {
	case "TRANSIT", "PENDING":
		m.say(ctx, fmt.Sprintf("Your %s order for %d shares of %s is in transit%s",
			m.draft.Action, m.draft.Quantity, m.draft.Instrument.DisplayName, suffix))
	default:
		m.say(ctx, fmt.Sprintf("Your order was successful, but the status is %s.", resp.Status))
	}
	return "order-placed"
}

func (m *Machine) commandWindow() time.Duration {
	return time.Duration(m.deps.Config.Conversation.CommandSeconds) * time.Second
}

func (m *Machine) answerWindow() time.Duration {
	return time.Duration(m.deps.Config.Conversation.AnswerSeconds) * time.Second
}

func (m *Machine) maxResolveAttempts() int {
	if n := m.deps.Config.Conversation.MaxResolveAttempts; n > 0 {
		return n
	}
	return 3
}
