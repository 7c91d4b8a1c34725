package salary

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/salary-tracker/internal/models"
)

func earning(date string, amount float64) models.DailyEarning {
	return models.DailyEarning{ID: date, Date: date, Amount: amount}
}

func TestCalculate_TableTests(t *testing.T) {
	tests := []struct {
		name     string
		earnings []models.DailyEarning
		rates    models.TaxRates
		want     models.SalaryCalculation
	}{
		{
			name: "two days with default rates",
			earnings: []models.DailyEarning{
				earning("2024-01-01", 1000),
				earning("2024-01-02", 500),
			},
			rates: models.TaxRates{Tax: 10, Retirement: 10, Insurance: 5},
			want: models.SalaryCalculation{
				GrossSalary:         1500,
				TaxDeduction:        150,
				RetirementDeduction: 150,
				InsuranceDeduction:  75,
				TotalDeductions:     375,
				NetSalary:           1125,
				WorkingDays:         2,
			},
		},
		{
			name:     "empty earnings",
			earnings: nil,
			rates:    models.DefaultTaxRates(),
			want:     models.SalaryCalculation{},
		},
		{
			name:     "zero rates keep gross",
			earnings: []models.DailyEarning{earning("2024-05-01", 250)},
			rates:    models.TaxRates{},
			want: models.SalaryCalculation{
				GrossSalary: 250,
				NetSalary:   250,
				WorkingDays: 1,
			},
		},
		{
			name:     "full rates consume everything",
			earnings: []models.DailyEarning{earning("2024-05-01", 200)},
			rates:    models.TaxRates{Tax: 100, Retirement: 0, Insurance: 0},
			want: models.SalaryCalculation{
				GrossSalary:     200,
				TaxDeduction:    200,
				TotalDeductions: 200,
				NetSalary:       0,
				WorkingDays:     1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.earnings, tt.rates)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculate_EmptyIsZeroForAnyRates(t *testing.T) {
	for _, rates := range []models.TaxRates{
		models.DefaultTaxRates(),
		{Tax: 100, Retirement: 100, Insurance: 100},
		{Tax: 0.5, Retirement: 33.3, Insurance: 12},
	} {
		got := Calculate([]models.DailyEarning{}, rates)
		assert.Zero(t, got.GrossSalary)
		assert.Zero(t, got.TotalDeductions)
		assert.Zero(t, got.NetSalary)
		assert.Zero(t, got.WorkingDays)
	}
}

func TestCalculate_Invariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := 1 + rnd.Intn(30)
		earnings := make([]models.DailyEarning, n)
		for j := range earnings {
			earnings[j] = models.DailyEarning{ID: "e", Date: "2024-01-01", Amount: 0.01 + rnd.Float64()*5000}
		}
		rates := models.TaxRates{
			Tax:        rnd.Float64() * 100,
			Retirement: rnd.Float64() * 100,
			Insurance:  rnd.Float64() * 100,
		}

		got := Calculate(earnings, rates)

		assert.Equal(t, got.GrossSalary-got.TotalDeductions, got.NetSalary)
		assert.Equal(t, got.TaxDeduction+got.RetirementDeduction+got.InsuranceDeduction, got.TotalDeductions)
		assert.Equal(t, n, got.WorkingDays)
		assert.Equal(t, got, Calculate(earnings, rates), "calculation must be deterministic")
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	earnings := []models.DailyEarning{earning("2024-01-01", 100), earning("2024-01-02", 200)}
	snapshot := append([]models.DailyEarning(nil), earnings...)

	_ = Calculate(earnings, models.DefaultTaxRates())

	assert.Equal(t, snapshot, earnings)
}

func TestSum_PointwiseAcrossOwners(t *testing.T) {
	first := []models.DailyEarning{earning("2024-01-01", 1000), earning("2024-01-02", 500)}
	second := []models.DailyEarning{earning("2024-01-01", 300)}

	a := Calculate(first, models.TaxRates{Tax: 10, Retirement: 10, Insurance: 5})
	b := Calculate(second, models.TaxRates{Tax: 20, Retirement: 0, Insurance: 0})

	got := Sum(a, b)

	assert.Equal(t, models.SalaryCalculation{
		GrossSalary:         1800,
		TaxDeduction:        210,
		RetirementDeduction: 150,
		InsuranceDeduction:  75,
		TotalDeductions:     435,
		NetSalary:           1365,
		WorkingDays:         3,
	}, got)

	// пересчёт по объединённому списку с одной ставкой дал бы другой результат
	merged := Calculate(append(append([]models.DailyEarning{}, first...), second...),
		models.TaxRates{Tax: 10, Retirement: 10, Insurance: 5})
	assert.NotEqual(t, merged.TotalDeductions, got.TotalDeductions)
}

func TestSum_SameRatesMatchesMerged(t *testing.T) {
	rates := models.DefaultTaxRates()
	first := []models.DailyEarning{earning("2024-01-01", 1000)}
	second := []models.DailyEarning{earning("2024-01-01", 400), earning("2024-01-03", 600)}

	got := Sum(Calculate(first, rates), Calculate(second, rates))

	assert.Equal(t, 2000.0, got.GrossSalary)
	assert.Equal(t, 500.0, got.TotalDeductions)
	assert.Equal(t, 1500.0, got.NetSalary)
	assert.Equal(t, 3, got.WorkingDays)
}

func TestSum_Empty(t *testing.T) {
	assert.Equal(t, models.SalaryCalculation{}, Sum())
}
