// Package contextdata builds the metadata blob attached to each enriched
// event and the human-readable session summary served to LLM consumers.
package contextdata

import (
	"fmt"
	"strings"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/textutil"
)

// DefaultExcludedKeys are the PostHog distinct_id/token style properties
// that never belong in an event's context blob.
var DefaultExcludedKeys = []string{"token", "distinct_id"}

// DefaultPagesInSummaryLimit caps how many distinct page titles are named in
// a generated session summary.
const DefaultPagesInSummaryLimit = 3

// Assemble builds the context map attached to an enriched event: properties
// minus PostHog-internal ($-prefixed) and excluded keys, plus the element's
// custom attributes (hyphenated names normalized to snake_case), its DOM
// hierarchy, and the originating event name.
func Assemble(eventName string, properties map[string]any, element models.ParsedElements, excludedKeys []string) map[string]any {
	if excludedKeys == nil {
		excludedKeys = DefaultExcludedKeys
	}
	excluded := make(map[string]struct{}, len(excludedKeys))
	for _, k := range excludedKeys {
		excluded[k] = struct{}{}
	}

	context := make(map[string]any)
	for key, value := range properties {
		if strings.HasPrefix(key, "$") {
			continue
		}
		if _, skip := excluded[key]; skip {
			continue
		}
		context[key] = value
	}

	for _, attr := range element.Attributes {
		context[textutil.HyphensToSnake(attr.Name)] = attr.Value
	}

	if len(element.Hierarchy) > 0 {
		context["hierarchy"] = element.Hierarchy
	}

	if eventName != "" {
		context["posthog_event"] = eventName
	}

	return context
}

// GenerateSummary produces a human-readable summary of a session's
// chronologically ordered enriched events. Pure function: no I/O.
func GenerateSummary(events []models.EnrichedEvent, pagesInSummaryLimit int) string {
	if len(events) == 0 {
		return "No activity recorded"
	}
	if pagesInSummaryLimit <= 0 {
		pagesInSummaryLimit = DefaultPagesInSummaryLimit
	}

	var pageViews, clicks, rageClicks, customEvents int
	var uniquePages []string
	seenPages := make(map[string]struct{})

	for _, e := range events {
		switch e.EventType {
		case models.EventTypePageview:
			pageViews++
			if e.PageTitle != "" {
				if _, seen := seenPages[e.PageTitle]; !seen && len(uniquePages) < pagesInSummaryLimit {
					uniquePages = append(uniquePages, e.PageTitle)
					seenPages[e.PageTitle] = struct{}{}
				}
			}
		case models.EventTypeClick:
			clicks++
		case models.EventTypeCustom:
			customEvents++
		}
		if e.ActionType == models.ActionTypeRageClick {
			rageClicks++
		}
	}

	var parts []string
	if len(uniquePages) > 0 {
		parts = append(parts, fmt.Sprintf("Viewed %d pages including %s", pageViews, strings.Join(uniquePages, ", ")))
	}
	if clicks > 0 {
		parts = append(parts, fmt.Sprintf("Clicked %d times", clicks))
	}
	if rageClicks > 0 {
		parts = append(parts, fmt.Sprintf("Rage-clicked %d times (frustration detected)", rageClicks))
	}
	if customEvents > 0 {
		parts = append(parts, fmt.Sprintf("Triggered %d custom events", customEvents))
	}
	if len(parts) == 0 {
		parts = []string{"No significant activity"}
	}

	summary := strings.Join(parts, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}
