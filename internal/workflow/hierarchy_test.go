package workflow

import (
	"testing"

	"github.com/spec-kit/request-workflow/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		selectedID  string
		requestType domain.RequestType
		want        domain.HierarchyLevel
	}{
		{"no selection is a parent", "", domain.RequestTypeRequest, domain.HierarchyParent},
		{"selection with plain request stays parent", "TCK-100", domain.RequestTypeRequest, domain.HierarchyParent},
		{"selection with adjustment is a child", "TCK-100", domain.RequestTypeAdjustment, domain.HierarchyChild},
		{"selection with enhancement is a child", "TCK-100", domain.RequestTypeEnhancement, domain.HierarchyChild},
		{"selection with testing stays parent", "TCK-100", domain.RequestTypeTesting, domain.HierarchyParent},
		{"adjustment without selection is a parent", "", domain.RequestTypeAdjustment, domain.HierarchyParent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.selectedID, tc.requestType); got != tc.want {
				t.Fatalf("Classify(%q, %s) = %s, want %s", tc.selectedID, tc.requestType, got, tc.want)
			}
		})
	}
}

func TestApplyHierarchy(t *testing.T) {
	child := &domain.Ticket{ID: "fresh-id", RequestType: domain.RequestTypeAdjustment}
	ApplyHierarchy(child, "TCK-100")
	if child.HierarchyLevel != domain.HierarchyChild {
		t.Fatalf("hierarchy = %s, want CHILD", child.HierarchyLevel)
	}
	if child.ParentTicketID == nil || *child.ParentTicketID != "TCK-100" {
		t.Fatalf("parent ticket id = %v, want TCK-100", child.ParentTicketID)
	}
	if child.ID == "TCK-100" {
		t.Fatal("child ticket must not reuse the selected id as its own")
	}
	if err := child.Validate(); err != nil {
		t.Fatalf("child ticket invalid: %v", err)
	}

	parent := &domain.Ticket{ID: "fresh-id", RequestType: domain.RequestTypeRequest}
	ApplyHierarchy(parent, "")
	if parent.HierarchyLevel != domain.HierarchyParent {
		t.Fatalf("hierarchy = %s, want PARENT", parent.HierarchyLevel)
	}
	if parent.ParentTicketID != nil {
		t.Fatalf("parent ticket id = %v, want nil", parent.ParentTicketID)
	}
	if err := parent.Validate(); err != nil {
		t.Fatalf("parent ticket invalid: %v", err)
	}
}
