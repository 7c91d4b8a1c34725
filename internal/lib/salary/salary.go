// Package salary реализует расчёт зарплаты по дневным заработкам и ставкам удержаний.
//
// Calculate — чистая функция: одинаковый вход всегда даёт одинаковый результат,
// округление не выполняется. Sum агрегирует расчёты нескольких владельцев поточечно.
package salary

import "github.com/magabrotheeeer/salary-tracker/internal/models"

// Calculate считает брутто, удержания и нетто по списку дневных заработков.
//
// WorkingDays — число записей, GrossSalary — сумма Amount (0 для пустого списка),
// каждое удержание — GrossSalary * ставка / 100, TotalDeductions — сумма трёх удержаний,
// NetSalary — GrossSalary - TotalDeductions. Корректность ставок проверяет вызывающая сторона.
func Calculate(earnings []models.DailyEarning, rates models.TaxRates) models.SalaryCalculation {
	var gross float64
	for _, e := range earnings {
		gross += e.Amount
	}

	tax := gross * rates.Tax / 100
	retirement := gross * rates.Retirement / 100
	insurance := gross * rates.Insurance / 100
	total := tax + retirement + insurance

	return models.SalaryCalculation{
		GrossSalary:         gross,
		TaxDeduction:        tax,
		RetirementDeduction: retirement,
		InsuranceDeduction:  insurance,
		TotalDeductions:     total,
		NetSalary:           gross - total,
		WorkingDays:         len(earnings),
	}
}

// Sum складывает расчёты поле за полем. Итог по компании строится именно так,
// а не пересчётом по объединённому списку заработков: ставки применяются к каждому
// владельцу отдельно.
func Sum(calcs ...models.SalaryCalculation) models.SalaryCalculation {
	var total models.SalaryCalculation
	for _, c := range calcs {
		total.GrossSalary += c.GrossSalary
		total.TaxDeduction += c.TaxDeduction
		total.RetirementDeduction += c.RetirementDeduction
		total.InsuranceDeduction += c.InsuranceDeduction
		total.TotalDeductions += c.TotalDeductions
		total.NetSalary += c.NetSalary
		total.WorkingDays += c.WorkingDays
	}
	return total
}
