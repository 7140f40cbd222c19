package contextdata

import (
	"reflect"
	"testing"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

func TestAssemble_FiltersInternalAndExcludedKeys(t *testing.T) {
	properties := map[string]any{
		"$pathname":   "/home",
		"token":       "secret",
		"distinct_id": "user-1",
		"order_id":    "12345",
	}
	got := Assemble("order_completed", properties, models.ParsedElements{}, nil)

	want := map[string]any{
		"order_id":      "12345",
		"posthog_event": "order_completed",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAssemble_AddsElementAttributesAndHierarchy(t *testing.T) {
	element := models.ParsedElements{
		Attributes: []models.AttributePair{{Name: "product-id", Value: "42"}},
		Hierarchy:  []string{"button", "div"},
	}
	got := Assemble("", map[string]any{}, element, nil)

	want := map[string]any{
		"product_id": "42",
		"hierarchy":  []string{"button", "div"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	if got := GenerateSummary(nil, 0); got != "No activity recorded" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateSummary_NoSignificantActivity(t *testing.T) {
	events := []models.EnrichedEvent{
		{EventType: models.EventTypeNavigation, ActionType: models.ActionTypeLeave},
	}
	if got := GenerateSummary(events, 0); got != "No significant activity." {
		t.Errorf("got %q", got)
	}
}

func TestGenerateSummary_MixedActivity(t *testing.T) {
	events := []models.EnrichedEvent{
		{EventType: models.EventTypePageview, PageTitle: "Home Page"},
		{EventType: models.EventTypePageview, PageTitle: "Products"},
		{EventType: models.EventTypeClick, ActionType: models.ActionTypeClick},
		{EventType: models.EventTypeClick, ActionType: models.ActionTypeRageClick},
		{EventType: models.EventTypeCustom, ActionType: models.ActionTypeSubmit},
	}
	got := GenerateSummary(events, 3)
	want := "Viewed 2 pages including Home Page, Products. Clicked 2 times. Rage-clicked 1 times (frustration detected). Triggered 1 custom events."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerateSummary_RespectsPagesLimit(t *testing.T) {
	events := []models.EnrichedEvent{
		{EventType: models.EventTypePageview, PageTitle: "A"},
		{EventType: models.EventTypePageview, PageTitle: "B"},
		{EventType: models.EventTypePageview, PageTitle: "C"},
	}
	got := GenerateSummary(events, 2)
	want := "Viewed 3 pages including A, B."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
