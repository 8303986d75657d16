// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"

	"github.com/pdiddy/training-factory/internal/textutil"
	"github.com/pdiddy/training-factory/pkg/types"
)

// IntentKeywords are the research intents every plan carries.
var IntentKeywords = []string{
	"best practices",
	"governance",
	"lifecycle",
	"security",
	"alm",
	"risk",
	"operating model",
}

// genericQueries are appended to every plan, in order.
var genericQueries = []string{
	"%s best practices",
	"%s governance operating model",
	"%s lifecycle ALM",
	"%s security risk controls",
}

const microsoftLearn = "learn.microsoft.com"

// productRule describes how one product family is detected and anchored.
type productRule struct {
	product    types.Product
	phrases    []string
	namespaces []string
}

// productRules are checked in order; the umbrella platform comes last so
// a specific product wins when both are named.
var productRules = []productRule{
	{types.ProductPowerBI, []string{"power bi", "powerbi"}, []string{"power-bi", "fabric"}},
	{types.ProductPowerApps, []string{"power apps", "powerapps"}, []string{"power-apps"}},
	{types.ProductPowerAutomate, []string{"power automate"}, []string{"power-automate"}},
	{types.ProductPowerPlatform, []string{"power platform", "dataverse"}, []string{"power-platform"}},
}

// umbrellaNamespace is the shared platform docs tree.
const umbrellaNamespace = "power-platform"

// DetectProduct matches the topic against the product vocabulary.
func DetectProduct(topic string) types.Product {
	lower := strings.ToLower(topic)
	for _, r := range productRules {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return r.product
			}
		}
	}
	return types.ProductNone
}

func ruleFor(p types.Product) (productRule, bool) {
	for _, r := range productRules {
		if r.product == p {
			return r, true
		}
	}
	return productRule{}, false
}

// hasLifecycleContext reports whether the topic is about ALM or lifecycle,
// which legitimizes the shared platform docs for any product.
func hasLifecycleContext(topic string) bool {
	toks := textutil.Tokenize(topic)
	return toks.Has("alm") || toks.Has("lifecycle")
}

// BuildQueryPlan derives the ordered query list, intent keywords, and
// preferred domains from the topic.
func BuildQueryPlan(topic string) types.QueryPlan {
	topic = strings.TrimSpace(topic)
	product := DetectProduct(topic)

	var queries []string
	if r, ok := ruleFor(product); ok {
		for _, ns := range r.namespaces {
			queries = append(queries, fmt.Sprintf("%s site:%s/%s", topic, microsoftLearn, ns))
		}
	}
	for _, q := range genericQueries {
		queries = append(queries, fmt.Sprintf(q, topic))
	}

	preferred := []string{}
	lower := strings.ToLower(topic)
	if product != types.ProductNone || textutil.Tokenize(topic).Has("alm") || strings.Contains(lower, "dataverse") {
		preferred = append(preferred, microsoftLearn)
	}

	return types.QueryPlan{
		Queries:          queries,
		IntentKeywords:   append([]string(nil), IntentKeywords...),
		PreferredDomains: preferred,
		DetectedProduct:  product,
	}
}
