package notify

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Variables is the closed set of fields templates may reference. Placeholders
// use {name} syntax; anything outside this set is left untouched rather than
// substituted blindly.
type Variables struct {
	Code          string
	Subject       string
	Description   string
	Status        string
	Priority      string
	Category      string
	AssigneeName  string
	RequesterName string
	Comment       string
	Link          string
	DateTime      string
}

func (v Variables) lookup(name string) (string, bool) {
	switch name {
	case "code":
		return v.Code, true
	case "subject":
		return v.Subject, true
	case "description":
		return v.Description, true
	case "status":
		return v.Status, true
	case "priority":
		return v.Priority, true
	case "category":
		return v.Category, true
	case "assignee":
		return v.AssigneeName, true
	case "requester":
		return v.RequesterName, true
	case "comment":
		return v.Comment, true
	case "link":
		return v.Link, true
	case "datetime":
		return v.DateTime, true
	default:
		return "", false
	}
}

// Render substitutes known {placeholder} tokens in tmpl. Unknown placeholders
// and unbalanced braces pass through verbatim.
func Render(tmpl string, vars Variables) string {
	var out strings.Builder
	out.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		open := strings.IndexByte(tmpl[i:], '{')
		if open < 0 {
			out.WriteString(tmpl[i:])
			break
		}
		open += i
		out.WriteString(tmpl[i:open])

		closing := strings.IndexByte(tmpl[open:], '}')
		if closing < 0 {
			out.WriteString(tmpl[open:])
			break
		}
		closing += open

		name := tmpl[open+1 : closing]
		if value, ok := vars.lookup(name); ok {
			out.WriteString(value)
		} else {
			out.WriteString(tmpl[open : closing+1])
		}
		i = closing + 1
	}
	return out.String()
}

// VariablesFor maps an event snapshot to template variables.
func VariablesFor(event events.Event, baseURL string, now time.Time) Variables {
	return Variables{
		Code:          event.Ticket.Code,
		Subject:       event.Ticket.Subject,
		Description:   event.Ticket.Description,
		Status:        string(event.Ticket.Status),
		Priority:      event.Ticket.PriorityName,
		Category:      event.Ticket.CategoryName,
		AssigneeName:  event.Ticket.AssigneeName,
		RequesterName: event.Ticket.RequesterName,
		Comment:       event.Comment,
		Link:          strings.TrimRight(baseURL, "/") + "/tickets/" + event.Ticket.Code,
		DateTime:      now.Format(time.RFC3339),
	}
}

// Template pairs a subject and body for one event kind on one channel.
type Template struct {
	Subject string
	Body    string
}

// TemplateSet holds template texts keyed by event kind. A channel-specific
// variant is stored under "<kind>:<channel>" and takes precedence over the
// plain event-kind entry for that channel.
type TemplateSet map[string]Template

// Resolve returns the template for an (event kind, channel) pair.
func (s TemplateSet) Resolve(eventKind string, channel domain.NotificationChannel) (Template, bool) {
	if tmpl, ok := s[eventKind+":"+string(channel)]; ok {
		return tmpl, true
	}
	tmpl, ok := s[eventKind]
	return tmpl, ok
}

// DefaultTemplates returns the built-in template texts. Admin screens may
// replace individual entries; the variable set stays fixed.
func DefaultTemplates() TemplateSet {
	return TemplateSet{
		string(events.EventTicketCreated): {
			Subject: "[{code}] New ticket: {subject}",
			Body: "A new ticket was submitted by {requester}.\n\n" +
				"Subject: {subject}\nCategory: {category}\nPriority: {priority}\n\n" +
				"{description}\n\nTrack it at {link}\nSent {datetime}",
		},
		string(events.EventTicketStatusChanged): {
			Subject: "[{code}] Status changed to {status}",
			Body: "Ticket {code} ({subject}) is now {status}.\n\n" +
				"Note: {comment}\n\nDetails: {link}\nSent {datetime}",
		},
		string(events.EventTicketAssigned): {
			Subject: "[{code}] Ticket assigned",
			Body: "Ticket {code} ({subject}) was assigned to {assignee}.\n\n" +
				"Details: {link}\nSent {datetime}",
		},
		// Webhook consumers get compact one-line bodies; the email prose
		// above stays the fallback for every other channel.
		string(events.EventTicketCreated) + ":" + string(domain.ChannelWebhook): {
			Subject: "[{code}] New ticket: {subject}",
			Body:    "ticket {code} created by {requester} ({status}) {link}",
		},
		string(events.EventTicketStatusChanged) + ":" + string(domain.ChannelWebhook): {
			Subject: "[{code}] Status changed to {status}",
			Body:    "ticket {code} moved to {status} {link}",
		},
		string(events.EventTicketAssigned) + ":" + string(domain.ChannelWebhook): {
			Subject: "[{code}] Ticket assigned",
			Body:    "ticket {code} assigned to {assignee} {link}",
		},
	}
}
