package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// TeamDirectory resolves team notification addresses.
type TeamDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
}

// StaffDirectory resolves assignee addresses.
type StaffDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
}

// Listener subscribes to domain events and hands them to the dispatcher with
// the resolved recipient list.
type Listener struct {
	dispatcher *Dispatcher
	teams      TeamDirectory
	staff      StaffDirectory
	logger     *zap.Logger
}

// NewListener builds the listener.
func NewListener(dispatcher *Dispatcher, teams TeamDirectory, staff StaffDirectory, logger *zap.Logger) *Listener {
	return &Listener{dispatcher: dispatcher, teams: teams, staff: staff, logger: logger}
}

// Register subscribes to the event kinds that trigger notifications.
func (l *Listener) Register(bus events.Dispatcher) {
	bus.Subscribe(events.EventTicketCreated, l.handle)
	bus.Subscribe(events.EventTicketStatusChanged, l.handle)
	bus.Subscribe(events.EventTicketAssigned, l.handle)
}

func (l *Listener) handle(ctx context.Context, event events.Event) error {
	l.dispatcher.Notify(ctx, event, l.recipients(ctx, event))
	return nil
}

// recipients collects interested parties: the responsible team's notify
// address and webhook endpoint and, when set, the assignee. Lookup failures
// reduce the recipient list instead of failing dispatch.
func (l *Listener) recipients(ctx context.Context, event events.Event) Recipients {
	var out Recipients
	seen := make(map[string]struct{})

	addEmail := func(addr string) {
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out.Emails = append(out.Emails, addr)
	}

	if event.Ticket.TeamID != nil && l.teams != nil {
		team, err := l.teams.GetByID(ctx, *event.Ticket.TeamID)
		if err != nil {
			l.logger.Warn("recipient team lookup failed", zap.String("team_id", *event.Ticket.TeamID), zap.Error(err))
		} else {
			addEmail(team.NotifyEmail)
			if team.WebhookURL != "" {
				out.WebhookURLs = append(out.WebhookURLs, team.WebhookURL)
			}
		}
	}
	if event.Ticket.AssigneeID != nil && l.staff != nil {
		assignee, err := l.staff.GetByID(ctx, *event.Ticket.AssigneeID)
		if err != nil {
			l.logger.Warn("recipient staff lookup failed", zap.String("staff_id", *event.Ticket.AssigneeID), zap.Error(err))
		} else {
			addEmail(assignee.Email)
		}
	}
	return out
}
