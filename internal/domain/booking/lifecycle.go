package booking

import (
	"strings"
	"time"

	"tourbook/internal/domain/user"
)

type TransitionPolicy struct {
	// CancellationWindow is how long before the tour start a tourist may still cancel a confirmed booking
	CancellationWindow time.Duration
	Location           *time.Location
}

func (p TransitionPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

type TransitionRequest struct {
	Target Status
	Actor  user.Actor
	Reason string
	Now    time.Time
}

// Transition applies one lifecycle step. Re-applying the current status reports
// changed=false without error; every rejection leaves the booking untouched.
func (b *Booking) Transition(req TransitionRequest, policy TransitionPolicy) (bool, error) {
	if !req.Target.IsValid() {
		return false, ErrInvalidStatus
	}
	if err := b.authorize(req.Target, req.Actor); err != nil {
		return false, err
	}
	if b.status == req.Target {
		return false, nil
	}
	if !b.status.CanTransitionTo(req.Target) {
		return false, &IllegalTransitionError{From: b.status, To: req.Target}
	}
	if err := b.guard(req, policy); err != nil {
		return false, err
	}

	b.status = req.Target
	b.updatedAt = req.Now
	if reason := strings.TrimSpace(req.Reason); reason != "" && (req.Target == StatusCancelled || req.Target == StatusRejected) {
		b.cancellationReason = &reason
	}
	return true, nil
}

func (b *Booking) authorize(target Status, actor user.Actor) error {
	allowed := false
	switch target {
	case StatusConfirmed:
		allowed = actor.IsGuide(b.guideID) || actor.IsSystem()
	case StatusRejected:
		allowed = actor.IsGuide(b.guideID) || actor.IsOperator()
	case StatusCancelled:
		allowed = b.IsParticipant(actor) || actor.IsOperator() || actor.IsSystem()
	case StatusCompleted:
		allowed = actor.IsGuide(b.guideID) || actor.IsOperator()
	case StatusPending:
		return &IllegalTransitionError{From: b.status, To: target}
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func (b *Booking) guard(req TransitionRequest, policy TransitionPolicy) error {
	loc := policy.location()
	switch req.Target {
	case StatusCompleted:
		if req.Now.Before(b.EndsAt(loc)) {
			return ErrTourNotFinished
		}
	case StatusCancelled:
		if b.status == StatusConfirmed && req.Actor.IsTourist(b.touristID) && policy.CancellationWindow > 0 {
			deadline := b.StartsAt(loc).Add(-policy.CancellationWindow)
			if !req.Now.Before(deadline) {
				return ErrCancellationWindowClosed
			}
		}
	}
	return nil
}
