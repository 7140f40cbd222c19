// Package semantic builds short, human-readable labels from classified
// events — the strings downstream LLM consumers read instead of raw
// PostHog event payloads.
package semantic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/textutil"
)

// DefaultMaxLength is the built-in cap on a generated semantic label.
const DefaultMaxLength = 150

// DefaultCustomEventTemplates maps well-known custom event names to
// `{placeholder}`-style templates.
var DefaultCustomEventTemplates = map[string]string{
	"product_clicked":        "Selected product: {product_name}",
	"plan_upgrade_started":   "Started plan upgrade",
	"plan_upgrade_completed": "Completed plan upgrade to {plan_name}",
	"form_submitted":         "Submitted {form_name} form",
}

// DefaultElementEnrichmentRules maps a custom element attribute name to a
// `{base_type}`-style enrichment template. The first of an element's
// attributes, in elements-chain order, that has a rule decides the result.
var DefaultElementEnrichmentRules = map[string]string{
	"nav":          "navigation {base_type}",
	"product-id":   "product card",
	"product-name": "product card",
	"form-id":      "{base_type} in form",
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// LabelBuilder constructs semantic labels for classified events.
// Zero value is not usable; construct with NewLabelBuilder.
type LabelBuilder struct {
	customTemplates  map[string]string
	enrichmentRules  map[string]string
	enrichmentOrder  []string
	maxLength        int
}

// NewLabelBuilder constructs a LabelBuilder. A nil customTemplates or
// enrichmentRules falls back to the package defaults; maxLength <= 0 falls
// back to DefaultMaxLength.
func NewLabelBuilder(customTemplates, enrichmentRules map[string]string, maxLength int) *LabelBuilder {
	if customTemplates == nil {
		customTemplates = DefaultCustomEventTemplates
	}
	if enrichmentRules == nil {
		enrichmentRules = DefaultElementEnrichmentRules
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &LabelBuilder{
		customTemplates: customTemplates,
		enrichmentRules: enrichmentRules,
		maxLength:       maxLength,
	}
}

// Build routes to the appropriate template based on (event_type, action_type)
// and post-processes the result (truncate, then capitalize the first
// character).
func (b *LabelBuilder) Build(
	classification models.EventClassification,
	pageInfo models.PageInfo,
	element models.ParsedElements,
	eventName string,
	properties map[string]any,
) string {
	if properties == nil {
		properties = map[string]any{}
	}

	var label string
	switch {
	case classification.EventType == models.EventTypePageview:
		label = b.buildPageview(pageInfo)
	case classification.ActionType == models.ActionTypeRageClick:
		label = b.buildRageClick(element, pageInfo)
	case classification.EventType == models.EventTypeClick:
		label = b.buildClick(element, pageInfo)
	case classification.EventType == models.EventTypeNavigation && classification.ActionType == models.ActionTypeLeave:
		label = b.buildNavigation(pageInfo)
	case classification.EventType == models.EventTypeCustom:
		label = b.buildCustom(eventName, properties)
	default:
		label = b.buildFallback(pageInfo)
	}

	label = textutil.Truncate(label, b.maxLength)
	return textutil.CapitalizeFirst(label)
}

func (b *LabelBuilder) buildPageview(page models.PageInfo) string {
	return "viewed " + page.PageTitle
}

func (b *LabelBuilder) buildClick(element models.ParsedElements, page models.PageInfo) string {
	if element.ElementText != "" {
		return fmt.Sprintf("clicked '%s' %s", element.ElementText, b.enrichElementType(element))
	}
	elementType := element.ElementType
	if elementType == "" {
		elementType = "element"
	}
	return fmt.Sprintf("clicked %s on %s", elementType, page.PageTitle)
}

func (b *LabelBuilder) buildRageClick(element models.ParsedElements, page models.PageInfo) string {
	if element.ElementText != "" {
		elementType := element.ElementType
		if elementType == "" {
			elementType = "element"
		}
		return fmt.Sprintf("rage-clicked '%s' %s", element.ElementText, elementType)
	}
	if element.ElementType != "" {
		return fmt.Sprintf("rage-clicked %s on %s", element.ElementType, page.PageTitle)
	}
	return "rage-clicked on " + page.PageTitle
}

func (b *LabelBuilder) buildNavigation(page models.PageInfo) string {
	return "left " + page.PageTitle
}

func (b *LabelBuilder) buildCustom(eventName string, properties map[string]any) string {
	if eventName == "" {
		return "custom event"
	}
	if template, ok := b.customTemplates[eventName]; ok {
		if rendered, ok := renderTemplate(template, properties); ok {
			return rendered
		}
		// Missing property: fall through to humanizing the event name.
	}
	return textutil.HumanizeSnake(eventName)
}

func (b *LabelBuilder) buildFallback(page models.PageInfo) string {
	return "event on " + page.PageTitle
}

// enrichElementType adds context from an element's custom attributes, e.g.
// type="button", attributes={"nav": "home"} -> "navigation button".
func (b *LabelBuilder) enrichElementType(element models.ParsedElements) string {
	baseType := element.ElementType
	if baseType == "" {
		baseType = "element"
	}

	for _, attr := range element.Attributes {
		if template, ok := b.enrichmentRules[attr.Name]; ok {
			return strings.ReplaceAll(template, "{base_type}", baseType)
		}
	}
	return baseType
}

// renderTemplate substitutes every `{key}` placeholder in template with
// properties[key]. Returns ok=false if any referenced key is absent,
// mirroring Python's str.format KeyError-on-missing-placeholder behavior.
func renderTemplate(template string, properties map[string]any) (string, bool) {
	missing := false
	result := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := properties[key]
		if !ok {
			missing = true
			return match
		}
		return fmt.Sprint(value)
	})
	if missing {
		return "", false
	}
	return result, true
}
