package workflow

import "github.com/spec-kit/request-workflow/internal/domain"

// Classify decides whether a ticket being created is a fresh parent
// ticket or a follow-up child referencing an original. A non-empty
// selected ticket id combined with an adjustment or enhancement request
// yields CHILD; everything else is PARENT.
func Classify(selectedTicketID string, requestType domain.RequestType) domain.HierarchyLevel {
	if selectedTicketID == "" {
		return domain.HierarchyParent
	}
	if requestType == domain.RequestTypeAdjustment || requestType == domain.RequestTypeEnhancement {
		return domain.HierarchyChild
	}
	return domain.HierarchyParent
}

// ApplyHierarchy stamps the classification onto a ticket under
// construction. A CHILD records the selected id as its parent reference;
// the ticket's own identifier is always issued fresh by persistence and
// never reuses the selection.
func ApplyHierarchy(ticket *domain.Ticket, selectedTicketID string) {
	level := Classify(selectedTicketID, ticket.RequestType)
	ticket.HierarchyLevel = level
	if level == domain.HierarchyChild {
		parent := selectedTicketID
		ticket.ParentTicketID = &parent
	} else {
		ticket.ParentTicketID = nil
	}
}
