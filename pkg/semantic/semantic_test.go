package semantic

import (
	"testing"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

func TestBuild_Pageview(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypePageview, ActionType: models.ActionTypeView},
		models.PageInfo{PagePath: "/home", PageTitle: "Home Page"},
		models.ParsedElements{},
		"$pageview",
		nil,
	)
	if got != "Viewed Home Page" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_ClickWithText(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeClick},
		models.PageInfo{PagePath: "/products", PageTitle: "Products"},
		models.ParsedElements{ElementType: "button", ElementText: "Buy Now"},
		"$autocapture",
		nil,
	)
	if got != "Clicked 'Buy Now' button" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_ClickEnrichedByAttribute(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeClick},
		models.PageInfo{PagePath: "/products", PageTitle: "Products"},
		models.ParsedElements{ElementType: "card", ElementText: "Widget", Attributes: []models.AttributePair{{Name: "product-id", Value: "42"}}},
		"$autocapture",
		nil,
	)
	if got != "Clicked 'Widget' product card" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_ClickNoText(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeClick},
		models.PageInfo{PagePath: "/products", PageTitle: "Products"},
		models.ParsedElements{},
		"$autocapture",
		nil,
	)
	if got != "Clicked element on Products" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_RageClick(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeRageClick},
		models.PageInfo{PagePath: "/checkout", PageTitle: "Checkout"},
		models.ParsedElements{ElementType: "button"},
		"$rageclick",
		nil,
	)
	if got != "Rage-clicked button on Checkout" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_Navigation(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeNavigation, ActionType: models.ActionTypeLeave},
		models.PageInfo{PagePath: "/about", PageTitle: "About Us"},
		models.ParsedElements{},
		"$pageleave",
		nil,
	)
	if got != "Left About Us" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_CustomEventTemplate(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeCustom, ActionType: models.ActionTypeClick},
		models.PageInfo{PagePath: "/products", PageTitle: "Products"},
		models.ParsedElements{},
		"product_clicked",
		map[string]any{"product_name": "Widget"},
	)
	if got != "Selected product: Widget" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_CustomEventMissingPropertyFallsBackToHumanize(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeCustom, ActionType: models.ActionTypeClick},
		models.PageInfo{PagePath: "/products", PageTitle: "Products"},
		models.ParsedElements{},
		"product_clicked",
		map[string]any{},
	)
	if got != "Product clicked" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_CustomEventUnknownTemplate(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeCustom, ActionType: models.ActionTypeNavigate},
		models.PageInfo{PagePath: "/trial", PageTitle: "Trial"},
		models.ParsedElements{},
		"trial_started",
		nil,
	)
	if got != "Trial started" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_Fallback(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 0)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypeUnknown, ActionType: models.ActionTypeUnknown},
		models.PageInfo{PagePath: "/weird", PageTitle: "Weird Page"},
		models.ParsedElements{},
		"$identify",
		nil,
	)
	if got != "Event on Weird Page" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_TruncatesLongLabels(t *testing.T) {
	b := NewLabelBuilder(nil, nil, 10)
	got := b.Build(
		models.EventClassification{EventType: models.EventTypePageview, ActionType: models.ActionTypeView},
		models.PageInfo{PagePath: "/home", PageTitle: "A Very Long Page Title Indeed"},
		models.ParsedElements{},
		"$pageview",
		nil,
	)
	if len([]rune(got)) != 10 {
		t.Errorf("got %q (len %d), want length 10", got, len([]rune(got)))
	}
}
