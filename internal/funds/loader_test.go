package funds

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/models"
)

const sampleCatalogue = `
version: "2025.02"
funds:
  - name: Youth Startup Fund
    category: startup
    max_amount: 100000000
    interest_rate: 2.5% fixed
    requirements: Aged 39 or under, 3 years or less in business
    conditions:
      - type: max_applicant_age
        value: 39
      - type: max_business_age
        value: 3
  - name: Technology Growth Fund
    category: technology
    max_amount: 500000000
    conditions:
      - type: requires_technology
      - type: min_credit_score
        value: 700
`

func writeCatalogue(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Sample(t *testing.T) {
	c, err := Parse([]byte(sampleCatalogue))
	require.NoError(t, err)

	assert.Equal(t, "2025.02", c.Version())
	require.Equal(t, 2, c.Len())

	youth, ok := c.Lookup("Youth Startup Fund")
	require.True(t, ok)
	assert.Equal(t, CategoryStartup, youth.Category)
	require.Len(t, youth.Conditions, 2)
	assert.Equal(t, MaxApplicantAge, youth.Conditions[0].Type)
	assert.Equal(t, "<= 3 years", youth.Conditions[1].Required)

	results := Evaluate(c, models.Profile{ApplicantAge: 30, BusinessAgeYears: 2})
	assert.Equal(t, "Youth Startup Fund", results[0].Name)
	assert.True(t, results[0].Eligible)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"not yaml", "version: [unterminated", ""},
		{"missing version", "funds:\n  - name: A\n    category: startup\n    max_amount: 1\n    conditions:\n      - type: min_employees\n        value: 1\n", "version"},
		{"unknown condition type", "version: v1\nfunds:\n  - name: A\n    category: startup\n    max_amount: 1\n    conditions:\n      - type: min_height\n        value: 180\n", `unknown condition type "min_height"`},
		{"unknown category", "version: v1\nfunds:\n  - name: A\n    category: lottery\n    max_amount: 1\n    conditions:\n      - type: min_employees\n        value: 1\n", `unknown category "lottery"`},
		{"missing value", "version: v1\nfunds:\n  - name: A\n    category: startup\n    max_amount: 1\n    conditions:\n      - type: min_employees\n", "requires a value"},
		{"unknown field", "version: v1\nfunds:\n  - name: A\n    category: startup\n    max_amount: 1\n    colour: red\n    conditions:\n      - type: min_employees\n        value: 1\n", "colour"},
		{"negative value", "version: v1\nfunds:\n  - name: A\n    category: startup\n    max_amount: 1\n    conditions:\n      - type: min_employees\n        value: -1\n", "value"},
		{"fractional credit score", "version: v1\nfunds:\n  - name: A\n    category: startup\n    max_amount: 1\n    conditions:\n      - type: min_credit_score\n        value: 650.5\n", "whole number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, ErrInvalidCatalogue))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMarshal_RoundTripsDefault(t *testing.T) {
	data, err := Marshal(DefaultCatalogue())
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)
	assertSameCatalogue(t, DefaultCatalogue(), c)
}

func TestShippedCatalogueMatchesDefault(t *testing.T) {
	c, err := LoadFile(filepath.Join("..", "..", "configs", "funds.yaml"))
	require.NoError(t, err)
	assertSameCatalogue(t, DefaultCatalogue(), c)
}

func assertSameCatalogue(t *testing.T, want, got *Catalogue) {
	t.Helper()
	assert.Equal(t, want.Version(), got.Version())
	require.Equal(t, want.Len(), got.Len())

	strong := strongProfile()
	assert.Equal(t, Evaluate(want, strong), Evaluate(got, strong))
	assert.Equal(t, Evaluate(want, models.Profile{}), Evaluate(got, models.Profile{}))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// ==========================
// Store
// ==========================

func TestStore_ReloadKeepsOldOnFailure(t *testing.T) {
	store := NewStore(DefaultCatalogue())

	_, err := store.ReloadFromFile(writeCatalogue(t, "version: v2\nfunds: []\n"))
	require.Error(t, err)
	assert.Equal(t, DefaultVersion, store.Load().Version())

	c, err := store.ReloadFromFile(writeCatalogue(t, sampleCatalogue))
	require.NoError(t, err)
	assert.Equal(t, "2025.02", c.Version())
	assert.Same(t, c, store.Load())
}

func TestStore_SwapIsAtomicForReaders(t *testing.T) {
	v1 := DefaultCatalogue()
	v2, err := Parse([]byte(sampleCatalogue))
	require.NoError(t, err)

	store := NewStore(v1)
	p := strongProfile()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c := store.Load()
				results := Evaluate(c, p)
				// every result set comes from exactly one table
				assert.Len(t, results, c.Len())
				for _, r := range results {
					_, ok := c.Lookup(r.Name)
					assert.True(t, ok)
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			store.Swap(v2)
		} else {
			store.Swap(v1)
		}
	}
	wg.Wait()
}
