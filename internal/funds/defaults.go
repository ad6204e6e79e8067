package funds

// DefaultVersion is the version of the built-in catalogue. Bump it whenever a
// fund or the order of its conditions changes.
const DefaultVersion = "2024.1"

// DefaultDefinitions returns the built-in fund list in display order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:         "SEMAS General Operating Fund",
			Category:     CategoryOperating,
			MaxAmount:    70_000_000,
			InterestRate: "3.0% (policy rate linked)",
			Requirements: "Operating small business, credit score 600+, debt ratio at most 200%",
			Conditions: []Condition{
				CreditScoreAtLeast(600),
				DebtRatioAtMost(200),
				BusinessAgeAtLeast(1),
			},
		},
		{
			Name:         "Youth Startup Fund",
			Category:     CategoryStartup,
			MaxAmount:    100_000_000,
			InterestRate: "2.5% fixed",
			Requirements: "Representative aged 39 or under, in business 3 years or less",
			Conditions: []Condition{
				ApplicantAgeAtMost(39),
				BusinessAgeAtMost(3),
			},
		},
		{
			Name:         "Technology Growth Fund",
			Category:     CategoryTechnology,
			MaxAmount:    500_000_000,
			InterestRate: "2.0-3.0% variable",
			Requirements: "Venture or INNOBIZ certification, credit score 700+, 2+ years in business",
			Conditions: []Condition{
				TechnologyCertified(),
				CreditScoreAtLeast(700),
				BusinessAgeAtLeast(2),
			},
		},
		{
			Name:         "Smart Facility Fund",
			Category:     CategoryFacility,
			MaxAmount:    1_000_000_000,
			InterestRate: "2.3% variable",
			Requirements: "Revenue 100M+, debt ratio at most 150%, 3+ years in business, 5+ employees",
			Conditions: []Condition{
				RevenueAtLeast(100_000_000),
				DebtRatioAtMost(150),
				BusinessAgeAtLeast(3),
				EmployeesAtLeast(5),
			},
		},
		{
			Name:         "KODIT Credit Guarantee",
			Category:     CategoryGuarantee,
			MaxAmount:    300_000_000,
			InterestRate: "Guarantee fee 0.5-1.5%",
			Requirements: "Credit score 650+, debt ratio at most 300%",
			Conditions: []Condition{
				CreditScoreAtLeast(650),
				DebtRatioAtMost(300),
			},
		},
		{
			Name:         "KIBO Technology Guarantee",
			Category:     CategoryGuarantee,
			MaxAmount:    500_000_000,
			InterestRate: "Guarantee fee 0.5-1.0%",
			Requirements: "Technology certification, credit score 650+, revenue 30M+",
			Conditions: []Condition{
				TechnologyCertified(),
				CreditScoreAtLeast(650),
				RevenueAtLeast(30_000_000),
			},
		},
		{
			Name:         "Growth Leap Fund",
			Category:     CategoryFacility,
			MaxAmount:    1_000_000_000,
			InterestRate: "2.7% variable",
			Requirements: "3+ years in business, revenue 300M+, credit score 750+, debt ratio at most 100%",
			Conditions: []Condition{
				BusinessAgeAtLeast(3),
				RevenueAtLeast(300_000_000),
				CreditScoreAtLeast(750),
				DebtRatioAtMost(100),
			},
		},
		{
			Name:         "Micro Enterprise Stabilisation Fund",
			Category:     CategorySpecial,
			MaxAmount:    30_000_000,
			InterestRate: "2.0% fixed",
			Requirements: "Revenue at most 300M, credit score 500+",
			Conditions: []Condition{
				RevenueAtMost(300_000_000),
				CreditScoreAtLeast(500),
			},
		},
		{
			Name:         "Employment Expansion Fund",
			Category:     CategorySpecial,
			MaxAmount:    200_000_000,
			InterestRate: "2.5% variable",
			Requirements: "10+ employees, 2+ years in business, debt ratio at most 200%",
			Conditions: []Condition{
				EmployeesAtLeast(10),
				BusinessAgeAtLeast(2),
				DebtRatioAtMost(200),
			},
		},
	}
}

// DefaultCatalogue returns the validated built-in catalogue.
func DefaultCatalogue() *Catalogue {
	c, err := NewCatalogue(DefaultVersion, DefaultDefinitions())
	if err != nil {
		panic(err)
	}
	return c
}
