package leadgen

import "github.com/hupe1980/leadmesh/schema"

// IntentExtractionSchema constrains the intent extractor's structured output.
// Country and industry are empty strings when the user did not mention them;
// hooks only overwrite session state with non-empty values.
func IntentExtractionSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"country":  schema.String("Country the user is interested in, or empty if not mentioned"),
		"industry": schema.String("Industry the user is interested in, or empty if not mentioned"),
		"stage": schema.Enum("Conversation stage implied by the user's message",
			StageInitial, StagePatternDiscovery, StageLeadGeneration,
			StagePatternsShown, StageFollowUp, StageChitchat),
		"intent": schema.Enum("Classified user intent",
			"find_leads", "find_patterns", "company_research", "general_chat"),
		"confidence": schema.Number("Classification confidence between 0 and 1"),
		"reasoning":  schema.String("Short justification for the classification"),
	}, "country", "industry", "stage", "intent", "confidence", "reasoning")
}

// companySchema describes a single discovered company record.
func companySchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name":         schema.String("Official company name"),
		"country_of_origin":    schema.String("Country where the company is headquartered"),
		"investment_type":      schema.String("Type of investment or market entry, e.g. greenfield, acquisition"),
		"investment_date":      schema.String("Date or period of the investment"),
		"source_url":           schema.String("URL of the source reporting the investment"),
		"business_description": schema.String("One sentence describing the company's business"),
	}, "company_name", "country_of_origin", "investment_type",
		"investment_date", "source_url", "business_description")
}

// CompanyFinderOutputSchema constrains the company formatter's output: the
// finder's prose distilled into structured company records.
func CompanyFinderOutputSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"companies_found": schema.ArrayOf("Companies extracted from the research text", companySchema()),
	}, "companies_found")
}

// ValidationResultSchema constrains per-company validation output. The
// consolidator drops findings whose validation has is_valid set to false.
func ValidationResultSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name": schema.String("Name of the validated company"),
		"is_valid":     schema.Bool("Whether the company record is plausible and self-consistent"),
		"reasoning":    schema.String("Short justification for the verdict"),
		"corrected_country_of_origin": schema.Nullable(
			schema.String("Corrected headquarters country, or null if the original was right")),
	}, "company_name", "is_valid", "reasoning", "corrected_country_of_origin")
}

// ResearchFindingsSchema constrains the per-company findings formatter.
func ResearchFindingsSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name": schema.String("Company the findings relate to"),
		"summary":      schema.String("Summary of expansion signals found for the company"),
		"sources":      schema.StringArray("Source URLs backing the summary"),
	}, "company_name", "summary", "sources")
}

// leadSchema describes a single potential lead record.
func leadSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name":         schema.String("Official company name"),
		"country_of_origin":    schema.String("Country where the company is headquartered"),
		"business_description": schema.String("One sentence describing the company's business"),
	}, "company_name", "country_of_origin", "business_description")
}

// LeadFinderOutputSchema constrains the lead formatter's output.
func LeadFinderOutputSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"potential_leads": schema.ArrayOf("Potential leads extracted from the research text", leadSchema()),
	}, "potential_leads")
}

// LeadValidationSchema constrains per-lead validation output.
func LeadValidationSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name": schema.String("Name of the validated lead"),
		"is_valid":     schema.Bool("Whether the lead matches the discovered patterns"),
		"reasoning":    schema.String("Short justification for the verdict"),
	}, "company_name", "is_valid", "reasoning")
}

// LeadFindingsSchema constrains the per-lead analysis formatter.
func LeadFindingsSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"company_name": schema.String("Lead the findings relate to"),
		"summary":      schema.String("Summary of expansion signals found for the lead"),
		"sources":      schema.StringArray("Source URLs backing the summary"),
	}, "company_name", "summary", "sources")
}
