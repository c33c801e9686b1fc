// Package workflow holds the question lifecycle rules: which role may move a
// question from which status to which, and how the flag overlay behaves.
// It is pure value logic; persistence and HTTP never reach into it, and the
// rest of the codebase never writes a status except through Apply.
package workflow

import (
	"errors"
	"fmt"
)

type Status string

const (
	// StatusNone is the state of a question that does not exist yet.
	StatusNone             Status = ""
	StatusPendingProcessor Status = "pending_processor"
	StatusPendingCreator   Status = "pending_creator"
	StatusPendingExplainer Status = "pending_explainer"
	StatusApproved         Status = "approved"
	StatusCompleted        Status = "completed"
	StatusRejected         Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingProcessor, StatusPendingCreator, StatusPendingExplainer,
		StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Published reports whether students may see the question.
func (s Status) Published() bool {
	return s == StatusApproved || s == StatusCompleted
}

type Role string

const (
	RoleGatherer  Role = "gatherer"
	RoleProcessor Role = "processor"
	RoleCreator   Role = "creator"
	RoleExplainer Role = "explainer"
	RoleStudent   Role = "student"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleGatherer, RoleProcessor, RoleCreator, RoleExplainer, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

type Action string

const (
	ActionSubmit            Action = "submit"
	ActionAccept            Action = "accept"
	ActionReject            Action = "reject"
	ActionResubmit          Action = "resubmit"
	ActionSubmitVariant     Action = "submit_variant"
	ActionSubmitUpdate      Action = "submit_update"
	ActionSubmitExplanation Action = "submit_explanation"
	ActionRaiseFlag         Action = "raise_flag"
	ActionApproveFlag       Action = "approve_flag"
	ActionRejectFlag        Action = "reject_flag"
)

// Destination is the processor's routing choice on accept.
type Destination string

const (
	DestinationCreator   Destination = "creator"
	DestinationExplainer Destination = "explainer"
	DestinationApproved  Destination = "approved"
	DestinationCompleted Destination = "completed"
)

type FlagStatus string

const (
	FlagNone     FlagStatus = ""
	FlagPending  FlagStatus = "pending"
	FlagApproved FlagStatus = "approved"
	FlagRejected FlagStatus = "rejected"
)

// Flag is the dispute overlay on a question. A question is visibly flagged
// only when Raised is true and Status is FlagApproved; pending and rejected
// flags are hidden from flagged-list views.
type Flag struct {
	Raised bool
	Type   Role
	Status FlagStatus
}

// Visible reports whether list views should surface the flag.
func (f Flag) Visible() bool {
	return f.Raised && f.Status == FlagApproved
}

// State is everything the transition rules need to know about a question.
type State struct {
	Status Status
	Flag   Flag
}

// Request describes one attempted transition.
type Request struct {
	Actor  Role
	Action Action

	// Destination routes an accept. Required for ActionAccept.
	Destination Destination
	// Reason is required for ActionReject and ActionRejectFlag, and carries
	// the flag reason for ActionRaiseFlag.
	Reason string
	// SendForCorrection routes an approved flag back to the flag
	// originator's queue instead of leaving the question in place.
	SendForCorrection bool
	// NeedsReview sends an explanation back through the processor queue
	// instead of completing the question.
	NeedsReview bool
}

var ErrInvalidTransition = errors.New("invalid transition")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Apply returns the state a question moves to when actor performs action, or
// ErrInvalidTransition when the edge is not in the lifecycle table. Apply
// never mutates its input and performs no I/O.
func Apply(s State, r Request) (State, error) {
	switch r.Action {
	case ActionSubmit:
		return applySubmit(s, r)
	case ActionAccept:
		return applyAccept(s, r)
	case ActionReject:
		return applyReject(s, r)
	case ActionResubmit:
		return applyResubmit(s, r)
	case ActionSubmitVariant, ActionSubmitUpdate:
		return applyCreatorSubmit(s, r)
	case ActionSubmitExplanation:
		return applyExplanation(s, r)
	case ActionRaiseFlag:
		return applyRaiseFlag(s, r)
	case ActionApproveFlag:
		return applyApproveFlag(s, r)
	case ActionRejectFlag:
		return applyRejectFlag(s, r)
	}
	return s, invalid("unknown action %q", r.Action)
}

func applySubmit(s State, r Request) (State, error) {
	if r.Actor != RoleGatherer {
		return s, invalid("only gatherers submit new questions, got %q", r.Actor)
	}
	if s.Status != StatusNone {
		return s, invalid("question already submitted (status %q)", s.Status)
	}
	return State{Status: StatusPendingProcessor}, nil
}

func applyAccept(s State, r Request) (State, error) {
	if r.Actor != RoleProcessor {
		return s, invalid("only processors accept questions, got %q", r.Actor)
	}
	if s.Status != StatusPendingProcessor {
		return s, invalid("cannot accept from status %q", s.Status)
	}
	if s.Flag.Raised && s.Flag.Status == FlagPending {
		return s, invalid("adjudicate the pending flag before accepting")
	}
	next := s
	switch r.Destination {
	case DestinationCreator:
		next.Status = StatusPendingCreator
	case DestinationExplainer:
		next.Status = StatusPendingExplainer
	case DestinationApproved:
		next.Status = StatusApproved
	case DestinationCompleted:
		next.Status = StatusCompleted
	default:
		return s, invalid("unknown accept destination %q", r.Destination)
	}
	return next, nil
}

func applyReject(s State, r Request) (State, error) {
	if r.Actor != RoleProcessor {
		return s, invalid("only processors reject questions, got %q", r.Actor)
	}
	if s.Status != StatusPendingProcessor {
		return s, invalid("cannot reject from status %q", s.Status)
	}
	if r.Reason == "" {
		return s, invalid("rejection requires a reason")
	}
	next := s
	next.Status = StatusRejected
	return next, nil
}

// applyResubmit returns a question to the processor queue after a rejection
// or an approved-flag correction. The flag overlay is cleared: the correction
// answered the dispute.
func applyResubmit(s State, r Request) (State, error) {
	switch r.Actor {
	case RoleGatherer:
		if s.Status != StatusRejected {
			return s, invalid("gatherer resubmits only rejected questions, status is %q", s.Status)
		}
	case RoleCreator:
		if s.Status != StatusRejected && s.Status != StatusPendingCreator {
			return s, invalid("creator cannot resubmit from status %q", s.Status)
		}
	case RoleExplainer:
		if s.Status != StatusRejected && s.Status != StatusPendingExplainer {
			return s, invalid("explainer cannot resubmit from status %q", s.Status)
		}
	default:
		return s, invalid("role %q cannot resubmit", r.Actor)
	}
	return State{Status: StatusPendingProcessor}, nil
}

func applyCreatorSubmit(s State, r Request) (State, error) {
	if r.Actor != RoleCreator {
		return s, invalid("only creators submit variants and updates, got %q", r.Actor)
	}
	if s.Status != StatusPendingCreator {
		return s, invalid("cannot submit from status %q", s.Status)
	}
	next := s
	next.Status = StatusPendingProcessor
	next.Flag = Flag{}
	return next, nil
}

func applyExplanation(s State, r Request) (State, error) {
	if r.Actor != RoleExplainer {
		return s, invalid("only explainers submit explanations, got %q", r.Actor)
	}
	if s.Status != StatusPendingExplainer {
		return s, invalid("cannot submit explanation from status %q", s.Status)
	}
	next := s
	next.Flag = Flag{}
	if r.NeedsReview {
		next.Status = StatusPendingProcessor
	} else {
		next.Status = StatusCompleted
	}
	return next, nil
}

func applyRaiseFlag(s State, r Request) (State, error) {
	if s.Flag.Raised && s.Flag.Status == FlagPending {
		return s, invalid("question already has a pending flag")
	}
	if r.Reason == "" {
		return s, invalid("flag requires a reason")
	}
	switch r.Actor {
	case RoleStudent:
		if !s.Status.Published() {
			return s, invalid("students flag only published questions, status is %q", s.Status)
		}
	case RoleCreator:
		if s.Status != StatusPendingCreator {
			return s, invalid("creators flag only questions in their queue, status is %q", s.Status)
		}
	case RoleExplainer:
		if s.Status != StatusPendingExplainer {
			return s, invalid("explainers flag only questions in their queue, status is %q", s.Status)
		}
	default:
		return s, invalid("role %q cannot raise flags", r.Actor)
	}
	next := s
	next.Flag = Flag{Raised: true, Type: r.Actor, Status: FlagPending}
	return next, nil
}

func applyApproveFlag(s State, r Request) (State, error) {
	if r.Actor != RoleProcessor {
		return s, invalid("only processors adjudicate flags, got %q", r.Actor)
	}
	if !s.Flag.Raised {
		return s, invalid("no flag to approve")
	}
	if s.Flag.Status == FlagApproved {
		// Already adjudicated; approving again changes nothing.
		return s, nil
	}
	if s.Flag.Status != FlagPending {
		return s, invalid("flag is %q, not pending", s.Flag.Status)
	}
	next := s
	next.Flag.Status = FlagApproved
	if r.SendForCorrection {
		switch s.Flag.Type {
		case RoleCreator:
			next.Status = StatusPendingCreator
		case RoleExplainer:
			next.Status = StatusPendingExplainer
		default:
			// Student flags have no upstream queue; the processor owns
			// the correction.
			next.Status = StatusPendingProcessor
		}
	}
	return next, nil
}

func applyRejectFlag(s State, r Request) (State, error) {
	if r.Actor != RoleProcessor {
		return s, invalid("only processors adjudicate flags, got %q", r.Actor)
	}
	if !s.Flag.Raised || s.Flag.Status != FlagPending {
		return s, invalid("no pending flag to reject")
	}
	if r.Reason == "" {
		return s, invalid("flag rejection requires a reason")
	}
	next := s
	next.Flag.Status = FlagRejected
	return next, nil
}
