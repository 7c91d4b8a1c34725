package models

// TaxRates — ставки удержаний в процентах, каждая в диапазоне [0, 100].
// Один экземпляр на всё приложение.
type TaxRates struct {
	Tax        float64 `json:"tax"`
	Retirement float64 `json:"retirement"`
	Insurance  float64 `json:"insurance"`
}

// DefaultTaxRates возвращает ставки, действующие пока пользователь не сохранил свои.
func DefaultTaxRates() TaxRates {
	return TaxRates{Tax: 10, Retirement: 10, Insurance: 5}
}

// SalaryCalculation — производный результат расчёта, в хранилище не попадает.
type SalaryCalculation struct {
	GrossSalary         float64 `json:"grossSalary"`
	TaxDeduction        float64 `json:"taxDeduction"`
	RetirementDeduction float64 `json:"retirementDeduction"`
	InsuranceDeduction  float64 `json:"insuranceDeduction"`
	TotalDeductions     float64 `json:"totalDeductions"`
	NetSalary           float64 `json:"netSalary"`
	WorkingDays         int     `json:"workingDays"`
}

// EmployeeSalary связывает сотрудника с его расчётом.
type EmployeeSalary struct {
	Employee Employee
	Salary   SalaryCalculation
}

// CompanyReport — расчёт по каждому сотруднику и итог по компании.
type CompanyReport struct {
	Employees []EmployeeSalary
	Total     SalaryCalculation
}
