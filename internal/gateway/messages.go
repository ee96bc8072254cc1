package gateway

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

const (
	escalationMarker   = "⚠️ ESCALATED"
	messagePreviewSize = 100
	defaultReason      = "No reason provided"
)

// TicketLink is the deep link back to a ticket in the web app.
func TicketLink(appBaseURL, ticketID string) string {
	return fmt.Sprintf("%s/tickets/%s", strings.TrimRight(appBaseURL, "/"), ticketID)
}

func directMessageText(ev events.Event, appBaseURL string) string {
	link := TicketLink(appBaseURL, ev.TicketID)
	switch ev.Type {
	case events.EventTicketCreated:
		return fmt.Sprintf("🎫 Your ticket \"%s\" has been created.\nCategory: %s\nStatus: %s\nView ticket: %s",
			ev.Subject, ev.Category, ev.Status, link)
	case events.EventTicketEscalated:
		return fmt.Sprintf("%s: Ticket \"%s\" has been escalated.\nReason: %s\nView ticket: %s",
			escalationMarker, ev.Subject, escalationReason(ev), link)
	case events.EventTicketMessage:
		return fmt.Sprintf("💬 New message on ticket \"%s\":\n%s\nView ticket: %s",
			ev.Subject, Truncate(ev.MessageContent, messagePreviewSize), link)
	default:
		return fmt.Sprintf("🔄 Ticket \"%s\" has been updated.\nNew status: %s\nView ticket: %s",
			ev.Subject, ev.Status, link)
	}
}

func webhookText(ev events.Event, appBaseURL string) string {
	var b strings.Builder
	switch ev.Type {
	case events.EventTicketCreated:
		b.WriteString("🎫 *New ticket*\n")
	case events.EventTicketEscalated:
		b.WriteString(escalationMarker + " *Ticket escalated*\n")
	default:
		b.WriteString("🔄 *Ticket updated*\n")
	}
	fmt.Fprintf(&b, "*Subject:* %s\n", ev.Subject)
	fmt.Fprintf(&b, "*Status:* %s\n", ev.Status)
	if ev.Category != "" {
		fmt.Fprintf(&b, "*Category:* %s\n", ev.Category)
	}
	if ev.Priority != "" {
		fmt.Fprintf(&b, "*Priority:* %s\n", ev.Priority)
	}
	if ev.EmployeeName != "" || ev.EmployeeEmail != "" {
		fmt.Fprintf(&b, "*Raised by:* %s\n", strings.TrimSpace(ev.EmployeeName+" <"+ev.EmployeeEmail+">"))
	}
	if ev.Department != "" {
		fmt.Fprintf(&b, "*Department:* %s\n", ev.Department)
	}
	if ev.Type == events.EventTicketEscalated {
		fmt.Fprintf(&b, "*Reason:* %s\n", escalationReason(ev))
	}
	fmt.Fprintf(&b, "<%s|View ticket>", TicketLink(appBaseURL, ev.TicketID))
	return b.String()
}

func escalationReason(ev events.Event) string {
	if strings.TrimSpace(ev.EscalationReason) == "" {
		return defaultReason
	}
	return ev.EscalationReason
}

// Truncate cuts s to at most n runes, the trailing ellipsis included.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
