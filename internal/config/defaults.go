package config

// DefaultFieldMappings is the built-in registry for mortgage applications,
// used when no external YAML registry is configured. Document types in the
// preference lists: government_id outranks employment_letter outranks
// bank_statement outranks property_assessment.
func DefaultFieldMappings() []FieldMapping {
	idFirst := []string{"government_id", "employment_letter", "bank_statement"}
	employmentFirst := []string{"employment_letter", "bank_statement"}

	return []FieldMapping{
		{
			Name:             "applicant_first_name",
			FormField:        "APPLICANT_FIRST_NAME",
			DocumentAliases:  []string{"first_name", "given_name", "employee_name"},
			Compare:          CompareFuzzyText,
			Priority:         PriorityCritical,
			SourcePreference: idFirst,
		},
		{
			Name:             "applicant_last_name",
			FormField:        "APPLICANT_LAST_NAME",
			DocumentAliases:  []string{"last_name", "family_name", "surname"},
			Compare:          CompareFuzzyText,
			Priority:         PriorityCritical,
			SourcePreference: idFirst,
		},
		{
			Name:             "applicant_dob",
			FormField:        "APPLICANT_DOB",
			DocumentAliases:  []string{"date_of_birth", "dob", "birth_date"},
			Compare:          CompareDate,
			Priority:         PriorityCritical,
			SourcePreference: idFirst,
		},
		{
			Name:             "applicant_sin",
			FormField:        "APPLICANT_SIN",
			DocumentAliases:  []string{"sin", "social_insurance_number"},
			Compare:          CompareExactText,
			Priority:         PriorityCritical,
			SourcePreference: idFirst,
		},
		{
			Name:            "applicant_address",
			FormField:       "APPLICANT_ADDRESS",
			DocumentAliases: []string{"address", "residential_address", "mailing_address"},
			Compare:         CompareFuzzyText,
			Threshold:       0.70,
			Priority:        PriorityImportant,
		},
		{
			Name:            "applicant_phone",
			FormField:       "APPLICANT_PHONE",
			DocumentAliases: []string{"phone", "phone_number", "telephone"},
			Compare:         CompareExactText,
			Priority:        PriorityOptional,
		},
		{
			Name:            "applicant_email",
			FormField:       "APPLICANT_EMAIL",
			DocumentAliases: []string{"email", "email_address"},
			Compare:         CompareFuzzyText,
			Priority:        PriorityOptional,
		},
		{
			Name:             "annual_income",
			FormField:        "ANNUAL_INCOME",
			DocumentAliases:  []string{"gross_income", "annual_salary", "total_income"},
			Compare:          CompareCurrency,
			Priority:         PriorityCritical,
			SourcePreference: employmentFirst,
		},
		{
			Name:             "employment_status",
			FormField:        "EMPLOYMENT_STATUS",
			DocumentAliases:  []string{"employment_type", "job_status"},
			Compare:          CompareFuzzyText,
			Priority:         PriorityOptional,
			SourcePreference: employmentFirst,
		},
		{
			Name:             "employer_name",
			FormField:        "EMPLOYER_NAME",
			DocumentAliases:  []string{"employer", "company_name", "company"},
			Compare:          CompareFuzzyText,
			Threshold:        0.70,
			Priority:         PriorityImportant,
			SourcePreference: employmentFirst,
		},
		{
			Name:            "account_number",
			FormField:       "ACCOUNT_NUMBER",
			DocumentAliases: []string{"account_no", "account_number"},
			Compare:         CompareExactText,
			Priority:        PriorityImportant,
			SourcePreference: []string{"bank_statement"},
		},
		{
			Name:            "ending_balance",
			FormField:       "ENDING_BALANCE",
			DocumentAliases: []string{"closing_balance", "ending_balance"},
			Compare:         CompareCurrency,
			Tolerance:       0.10,
			Priority:        PriorityOptional,
			SourcePreference: []string{"bank_statement"},
		},
		{
			Name:            "credit_score",
			FormField:       "CREDIT_SCORE",
			DocumentAliases: []string{"credit_score", "beacon_score"},
			Compare:         CompareNumeric,
			Priority:        PriorityImportant,
		},
		{
			Name:            "assessed_value",
			FormField:       "ASSESSED_VALUE",
			DocumentAliases: []string{"assessed_value", "property_value"},
			Compare:         CompareCurrency,
			Tolerance:       0.10,
			Priority:        PriorityOptional,
			SourcePreference: []string{"property_assessment"},
		},
	}
}

// DefaultRequiredDocuments is the built-in document checklist. The status
// endpoint reports any of these an application has not yet supplied.
func DefaultRequiredDocuments() []string {
	return []string{"government_id", "employment_letter", "bank_statement"}
}
