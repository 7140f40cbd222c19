// Package eventparse turns a raw PostHog-shaped event into the structured
// pieces the rest of the pipeline consumes: its DOM element chain, its
// event/action classification, and its page location.
package eventparse

import (
	"regexp"
	"strings"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

var (
	elementTypeRe = regexp.MustCompile(`(?i)^([a-z0-9]+)`)
	textRe        = regexp.MustCompile(`text="([^"]*)"`)
	altRe         = regexp.MustCompile(`attr__alt="([^"]*)"`)
	attrRe        = regexp.MustCompile(`attr__data-ph-capture-attribute-([^=]+)="([^"]*)"`)
)

// ParseElementsChain parses a PostHog `elements_chain` string into structured
// element information.
//
// Extraction order:
//  1. Element type — HTML tag name before '.' or ':' (normalized to lowercase)
//  2. Element text — from `text="..."`, falling back to `attr__alt="..."` for images
//  3. Custom attributes — every `attr__data-ph-capture-attribute-*` pair
//  4. Hierarchy — element types of the first 5 DOM levels
func ParseElementsChain(chain string) models.ParsedElements {
	if chain == "" {
		return models.ParsedElements{}
	}

	segments := strings.Split(chain, ";")
	first := strings.TrimSpace(segments[0])

	var elementType string
	if m := elementTypeRe.FindStringSubmatch(first); m != nil {
		elementType = strings.ToLower(m[1])
	}

	var elementText string
	if m := textRe.FindStringSubmatch(first); m != nil {
		elementText = m[1]
	} else if m := altRe.FindStringSubmatch(first); m != nil {
		elementText = m[1]
	}

	var attributes []models.AttributePair
	for _, m := range attrRe.FindAllStringSubmatch(first, -1) {
		attributes = append(attributes, models.AttributePair{Name: m[1], Value: m[2]})
	}

	hierarchy := make([]string, 0, 5)
	for i, segment := range segments {
		if i >= 5 {
			break
		}
		if m := elementTypeRe.FindStringSubmatch(strings.TrimSpace(segment)); m != nil {
			hierarchy = append(hierarchy, strings.ToLower(m[1]))
		}
	}

	return models.ParsedElements{
		ElementType: elementType,
		ElementText: elementText,
		Attributes:  attributes,
		Hierarchy:   hierarchy,
	}
}

func classifyAutocapture(properties map[string]any) models.EventClassification {
	autocaptureType, _ := properties["$event_type"].(string)
	if autocaptureType == "" {
		autocaptureType = "click"
	}
	switch autocaptureType {
	case "submit":
		return models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeSubmit}
	case "change":
		return models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeChange}
	default:
		return models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeClick}
	}
}

// InferActionFromCustomEvent guesses an ActionType from a custom event's
// name. This is a heuristic, not an algorithm — it assumes event names were
// chosen with some attention to the action they represent.
func InferActionFromCustomEvent(eventName string) models.ActionType {
	lower := strings.ToLower(eventName)

	if containsAny(lower, "click", "select", "choose") {
		return models.ActionTypeClick
	}
	if containsAny(lower, "submit", "complete", "finish") {
		return models.ActionTypeSubmit
	}
	if containsAny(lower, "start", "open", "view", "navigate") {
		return models.ActionTypeNavigate
	}
	return models.ActionTypeClick
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ClassifyEvent classifies a PostHog event into an EventType/ActionType pair.
//
//  1. Known PostHog system events ($pageview, $pageleave, $rageclick,
//     $autocapture) use a fixed mapping.
//  2. $autocapture inspects properties["$event_type"] for the specific action.
//  3. Custom events (no "$" prefix) are classified as "custom" with a
//     heuristically inferred action.
//  4. Anything else falls back to "unknown".
func ClassifyEvent(eventName string, properties map[string]any) models.EventClassification {
	switch eventName {
	case "$pageview":
		return models.EventClassification{EventType: models.EventTypePageview, ActionType: models.ActionTypeView}
	case "$pageleave":
		return models.EventClassification{EventType: models.EventTypeNavigation, ActionType: models.ActionTypeLeave}
	case "$rageclick":
		return models.EventClassification{EventType: models.EventTypeClick, ActionType: models.ActionTypeRageClick}
	case "$autocapture":
		return classifyAutocapture(properties)
	}

	if !strings.HasPrefix(eventName, "$") {
		return models.EventClassification{EventType: models.EventTypeCustom, ActionType: InferActionFromCustomEvent(eventName)}
	}

	return models.EventClassification{EventType: models.EventTypeUnknown, ActionType: models.ActionTypeUnknown}
}

// NormalizePagePath strips a trailing slash, except for the root path itself.
func NormalizePagePath(pagePath string) string {
	if pagePath == "/" {
		return "/"
	}
	return strings.TrimRight(pagePath, "/")
}

// HumanizePagePath converts a page path into a human-readable page name,
// e.g. "/billing/settings" -> "billing page".
func HumanizePagePath(pagePath string) string {
	path := strings.Trim(pagePath, "/")
	if path == "" {
		return "home page"
	}

	firstSegment := strings.SplitN(path, "/", 2)[0]
	humanized := strings.NewReplacer("_", " ", "-", " ").Replace(firstSegment)
	return humanized + " page"
}

// ExtractPageInfo pulls the page path and title out of an event's properties.
func ExtractPageInfo(properties map[string]any) models.PageInfo {
	pagePath := "/"
	if v, ok := properties["$pathname"].(string); ok && v != "" {
		pagePath = v
	}
	pagePath = NormalizePagePath(pagePath)

	pageTitle := HumanizePagePath(pagePath)
	if v, ok := properties["title"].(string); ok && v != "" {
		pageTitle = v
	}

	return models.PageInfo{PagePath: pagePath, PageTitle: pageTitle}
}
