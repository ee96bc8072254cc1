package service

import (
	"fmt"
	"strconv"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Field names in the order updates are audited and notified.
const (
	fieldSubject          = "subject"
	fieldDescription      = "description"
	fieldCategory         = "category"
	fieldPriority         = "priority"
	fieldStatus           = "status"
	fieldAssignedTo       = "assignedTo"
	fieldDepartment       = "department"
	fieldSubDepartment    = "subDepartment"
	fieldRating           = "rating"
	fieldEscalationReason = "escalationReason"
	fieldSLAViolated      = "slaViolated"
)

var fieldLabels = map[string]string{
	fieldSubject:          "Subject",
	fieldDescription:      "Description",
	fieldCategory:         "Category",
	fieldPriority:         "Priority",
	fieldStatus:           "Status",
	fieldAssignedTo:       "Assignee",
	fieldDepartment:       "Department",
	fieldSubDepartment:    "Sub-department",
	fieldRating:           "Rating",
	fieldEscalationReason: "Escalation reason",
	fieldSLAViolated:      "SLA violated",
}

type fieldChange struct {
	Field string
	Old   *string
	New   *string
}

func (c fieldChange) action() domain.AuditAction {
	switch c.Field {
	case fieldStatus:
		return domain.AuditActionStatusChanged
	case fieldAssignedTo:
		return domain.AuditActionAssigned
	default:
		return domain.AuditActionUpdated
	}
}

func (c fieldChange) describe() string {
	return fmt.Sprintf("%s changed from %q to %q", fieldLabels[c.Field], valueOrNone(c.Old), valueOrNone(c.New))
}

// diffTickets lists the fields whose values differ, in audit order. Computed stamps
// (response/resolution time, escalation date, updated_at) are not reported.
func diffTickets(before, after *domain.Ticket) []fieldChange {
	var changes []fieldChange
	add := func(field string, oldValue, newValue *string) {
		if equalStringPtr(oldValue, newValue) {
			return
		}
		changes = append(changes, fieldChange{Field: field, Old: oldValue, New: newValue})
	}

	add(fieldSubject, stringPtr(before.Subject), stringPtr(after.Subject))
	add(fieldDescription, stringPtr(before.Description), stringPtr(after.Description))
	add(fieldCategory, stringPtr(string(before.Category)), stringPtr(string(after.Category)))
	add(fieldPriority, stringPtr(string(before.Priority)), stringPtr(string(after.Priority)))
	add(fieldStatus, stringPtr(string(before.Status)), stringPtr(string(after.Status)))
	add(fieldAssignedTo, before.AssignedTo, after.AssignedTo)
	add(fieldDepartment, before.Department, after.Department)
	add(fieldSubDepartment, before.SubDepartment, after.SubDepartment)
	add(fieldRating, intString(before.Rating), intString(after.Rating))
	add(fieldEscalationReason, before.EscalationReason, after.EscalationReason)
	add(fieldSLAViolated, stringPtr(strconv.FormatBool(before.SLAViolated)), stringPtr(strconv.FormatBool(after.SLAViolated)))
	return changes
}

func stringPtr(s string) *string {
	return &s
}

func intString(v *int) *string {
	if v == nil {
		return nil
	}
	return stringPtr(strconv.Itoa(*v))
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func valueOrNone(v *string) string {
	if v == nil || *v == "" {
		return "none"
	}
	return *v
}

const ellipsis = "..."

// stringPreview trims body to at most max runes. A cut body ends in an ellipsis that
// counts toward max.
func stringPreview(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}
