// ABOUTME: Pure state-machine dispatcher for the support flow
// ABOUTME: Maps (state, input) to replies and the next session state

package menu

import (
	"os"

	"github.com/mundonet/dexbot/internal/session"
)

// Input is one inbound message as seen by the dispatcher.
type Input struct {
	Text          string
	HasAttachment bool
	DisplayName   string // customer display name, interpolated into replies
}

// Outcome is the dispatcher's decision for one message. Replies may be empty
// (intentional silence). UpdateState reports whether the session should be
// written; when false the session is left exactly as it was.
type Outcome struct {
	Replies     []Reply
	NextState   session.State
	UpdateState bool
}

// Dispatcher encodes the support flow. It holds no conversation state; all
// decisions are a pure function of the current state and the input.
type Dispatcher struct {
	// TableImagePath, when set and readable, is attached for the package
	// table option instead of the text fallback.
	TableImagePath string
}

// NewDispatcher creates a Dispatcher. tableImagePath may be empty.
func NewDispatcher(tableImagePath string) *Dispatcher {
	return &Dispatcher{TableImagePath: tableImagePath}
}

func silence() Outcome {
	return Outcome{}
}

func stay(state session.State, replies ...Reply) Outcome {
	return Outcome{Replies: replies, NextState: state, UpdateState: true}
}

// Dispatch decides the replies and next state for one message.
//
// Human support is an intentional silence state: nothing, including the
// global navigation keywords, produces a reply until an operator moves the
// conversation back out.
func (d *Dispatcher) Dispatch(state session.State, in Input) Outcome {
	if state == session.StateHumanSupport {
		return silence()
	}

	intent := Classify(in.Text, in.HasAttachment)

	// Global navigation forces the menu from any remaining state.
	if intent == IntentNavigateMenu {
		return stay(session.StateMenu, GreetingReplies(in.DisplayName)...)
	}

	switch state {
	case session.StateMenu:
		return d.dispatchMenu(intent, in)
	case session.StateWaitingPayment:
		return d.dispatchWaitingPayment(intent)
	case session.StateWaitingConfirmation:
		return d.dispatchWaitingConfirmation(intent)
	case session.StateActive:
		return d.dispatchActive(intent)
	default:
		// Unknown state tag: recover by showing the menu.
		return stay(session.StateMenu, Reply{Text: MenuText})
	}
}

func (d *Dispatcher) dispatchMenu(intent Intent, in Input) Outcome {
	switch intent {
	case IntentBuy:
		return stay(session.StateWaitingPayment, Reply{Text: paymentText})
	case IntentTable:
		return stay(session.StateMenu, d.tableReply())
	case IntentGroups:
		return stay(session.StateMenu, Reply{Text: groupsText})
	case IntentEarn:
		return stay(session.StateMenu, Reply{Text: earnText})
	case IntentAbout:
		return stay(session.StateMenu, Reply{Text: aboutText})
	case IntentHuman:
		return stay(session.StateHumanSupport, Reply{Text: humanText})
	case IntentOptOut:
		return stay(session.StateActive, Reply{Text: optOutText})
	default:
		return stay(session.StateMenu, Reply{Text: invalidOptionText(in.DisplayName)})
	}
}

func (d *Dispatcher) dispatchWaitingPayment(intent Intent) Outcome {
	if intent == IntentPaymentProof {
		return stay(session.StateWaitingConfirmation, Reply{Text: verifyingText})
	}
	return silence()
}

func (d *Dispatcher) dispatchWaitingConfirmation(intent Intent) Outcome {
	if intent == IntentStillWaiting {
		return stay(session.StateWaitingConfirmation, Reply{Text: reassuranceText})
	}
	return silence()
}

func (d *Dispatcher) dispatchActive(intent Intent) Outcome {
	switch intent {
	case IntentAssistant:
		return stay(session.StateActive, Reply{Text: assistantText})
	case IntentAutoMode:
		return stay(session.StateMenu, Reply{Text: autoModeText}, Reply{Text: MenuText})
	default:
		return silence()
	}
}

// tableReply attaches the package table image when available, otherwise the
// text fallback.
func (d *Dispatcher) tableReply() Reply {
	if d.TableImagePath != "" {
		if _, err := os.Stat(d.TableImagePath); err == nil {
			return Reply{Text: tableCaption, ImagePath: d.TableImagePath}
		}
	}
	return Reply{Text: tableFallbackText}
}
