package guardrail

// Definition is a human-readable guardrail description for the report view.
type Definition struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Rule  string `json:"rule"`
}

// Definitions lists all guardrails in evaluation order.
var Definitions = []Definition{
	{ID: 1, Title: "Services First", Rule: "Legacy systems require Data Foundation Service before AI Product."},
	{ID: 2, Title: "Data Audit", Rule: "AI Product proposed without data audit; recommend Data Foundation."},
	{ID: 3, Title: "6+ Months Engagement", Rule: "Product requires 6+ months prior engagement."},
	{ID: 4, Title: "Use Case Documented", Rule: "Use case must be documented before product proposal."},
	{ID: 5, Title: "Delivery Capacity", Rule: "Delivery capacity must be confirmed before committing."},
	{ID: 6, Title: "Pilot Before Scale", Rule: "AI products start as pilots unless prior success."},
	{ID: 7, Title: "Handoff Checklist", Rule: "Complete handoff checklist before contract."},
	{ID: 8, Title: "Trust Preservation", Rule: "Low trust + AI product = add services support."},
	{ID: 9, Title: "New Relationship", Rule: "Establish services (< 90 days) before product."},
}
