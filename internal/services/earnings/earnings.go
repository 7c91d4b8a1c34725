// Package services содержит бизнес-логику учёта дневных заработков: добавление записей
// физического лица и сотрудников компании, расчёт зарплаты и настройку ставок удержаний.
//
// Каждое изменение выполняется как чтение всего списка, проверка, добавление и полная
// перезапись. Операции не атомарны: предполагается один пишущий клиент на хранилище.
// Если сохранённый список повреждён, изменение отклоняется с apperr.ErrCorrupted.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/salary-tracker/internal/apperr"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/day"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/salary"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/salary-tracker/internal/models"
)

// Repository описывает хранилище, с которым работает сервис.
type Repository interface {
	LoadIndividualEarnings(ctx context.Context, userID string) []models.DailyEarning
	SaveIndividualEarnings(ctx context.Context, userID string, earnings []models.DailyEarning) error
	LoadEmployees(ctx context.Context, userID string) []models.Employee
	SaveEmployees(ctx context.Context, userID string, employees []models.Employee) error
	LoadTaxRates(ctx context.Context) models.TaxRates
	SaveTaxRates(ctx context.Context, rates models.TaxRates)
	LoadTheme(ctx context.Context) models.Theme
	SaveTheme(ctx context.Context, theme models.Theme)
}

// IDGenerator выдаёт идентификаторы новых записей.
type IDGenerator func() string

// EarningsService — журнал заработков.
type EarningsService struct {
	repo    Repository
	log     *slog.Logger
	metrics *metrics.Metrics
	newID   IDGenerator
	now     func() time.Time
}

// Option настраивает EarningsService.
type Option func(*EarningsService)

// WithIDGenerator подменяет генератор идентификаторов.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *EarningsService) { s.newID = gen }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *EarningsService) { s.now = now }
}

// NewEarningsService создаёт сервис. metrics может быть nil.
func NewEarningsService(repo Repository, log *slog.Logger, m *metrics.Metrics, opts ...Option) *EarningsService {
	s := &EarningsService{
		repo:    repo,
		log:     log,
		metrics: m,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today возвращает сегодняшнюю дату, которую клиент подставляет по умолчанию.
func (s *EarningsService) Today() string {
	return day.Today(s.now())
}

// AddIndividualEarning добавляет заработок физического лица за день date.
// На одну дату допускается одна запись.
func (s *EarningsService) AddIndividualEarning(ctx context.Context, userID, date string, amount float64) (models.DailyEarning, error) {
	const op = "services.AddIndividualEarning"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID))

	if err := s.checkEarning(date, amount); err != nil {
		s.metrics.Rejected(op)
		return models.DailyEarning{}, err
	}

	earnings := s.repo.LoadIndividualEarnings(ctx, userID)
	if hasDate(earnings, date) {
		s.metrics.Rejected(op)
		return models.DailyEarning{}, apperr.Validation("date", "earning for %s already exists", date)
	}

	earning := models.DailyEarning{
		ID:     s.newID(),
		Date:   date,
		Amount: amount,
	}
	if err := s.repo.SaveIndividualEarnings(ctx, userID, append(earnings, earning)); err != nil {
		log.Error("failed to save earning", sl.Err(err))
		return models.DailyEarning{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("earning added", slog.String("date", date), slog.Float64("amount", amount))
	return earning, nil
}

// ListIndividualEarnings возвращает заработки физического лица, начиная с самой поздней даты.
func (s *EarningsService) ListIndividualEarnings(ctx context.Context, userID string) []models.DailyEarning {
	earnings := s.repo.LoadIndividualEarnings(ctx, userID)
	sortByDateDesc(earnings)
	return earnings
}

// Recent возвращает не более n последних заработков.
func Recent(earnings []models.DailyEarning, n int) []models.DailyEarning {
	if n < 0 {
		n = 0
	}
	if len(earnings) <= n {
		return earnings
	}
	return earnings[:n]
}

// AddEmployee добавляет сотрудника компании. Имена сравниваются без учёта регистра.
func (s *EarningsService) AddEmployee(ctx context.Context, userID, name string) (models.Employee, error) {
	const op = "services.AddEmployee"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID))

	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.Rejected(op)
		return models.Employee{}, apperr.Validation("name", "employee name is required")
	}

	employees := s.repo.LoadEmployees(ctx, userID)
	for _, e := range employees {
		if strings.EqualFold(e.Name, name) {
			s.metrics.Rejected(op)
			return models.Employee{}, apperr.Validation("name", "employee %q already exists", name)
		}
	}

	employee := models.Employee{
		ID:            s.newID(),
		Name:          name,
		DailyEarnings: []models.DailyEarning{},
		UserID:        userID,
	}
	if err := s.repo.SaveEmployees(ctx, userID, append(employees, employee)); err != nil {
		log.Error("failed to save employee", sl.Err(err))
		return models.Employee{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("employee added", slog.String("employee_id", employee.ID))
	return employee, nil
}

// ListEmployees возвращает сотрудников компании в порядке добавления.
func (s *EarningsService) ListEmployees(ctx context.Context, userID string) []models.Employee {
	return s.repo.LoadEmployees(ctx, userID)
}

// AddEmployeeEarning добавляет заработок сотрудника за день date.
func (s *EarningsService) AddEmployeeEarning(ctx context.Context, userID, employeeID, date string, amount float64) (models.DailyEarning, error) {
	const op = "services.AddEmployeeEarning"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID), slog.String("employee_id", employeeID))

	if err := s.checkEarning(date, amount); err != nil {
		s.metrics.Rejected(op)
		return models.DailyEarning{}, err
	}

	employees := s.repo.LoadEmployees(ctx, userID)
	idx := -1
	for i := range employees {
		if employees[i].ID == employeeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.metrics.Rejected(op)
		return models.DailyEarning{}, apperr.NotFound("employee %s", employeeID)
	}
	if hasDate(employees[idx].DailyEarnings, date) {
		s.metrics.Rejected(op)
		return models.DailyEarning{}, apperr.Validation("date", "earning for %s already exists", date)
	}

	earning := models.DailyEarning{
		ID:         s.newID(),
		Date:       date,
		Amount:     amount,
		EmployeeID: employeeID,
	}
	employees[idx].DailyEarnings = append(employees[idx].DailyEarnings, earning)
	if err := s.repo.SaveEmployees(ctx, userID, employees); err != nil {
		log.Error("failed to save employee earning", sl.Err(err))
		return models.DailyEarning{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("employee earning added", slog.String("date", date), slog.Float64("amount", amount))
	return earning, nil
}

// IndividualReport считает зарплату физического лица по действующим ставкам.
func (s *EarningsService) IndividualReport(ctx context.Context, userID string) models.SalaryCalculation {
	rates := s.repo.LoadTaxRates(ctx)
	return salary.Calculate(s.repo.LoadIndividualEarnings(ctx, userID), rates)
}

// CompanyReport считает зарплату каждого сотрудника и итог по компании.
func (s *EarningsService) CompanyReport(ctx context.Context, userID string) models.CompanyReport {
	rates := s.repo.LoadTaxRates(ctx)
	employees := s.repo.LoadEmployees(ctx, userID)

	report := models.CompanyReport{Employees: make([]models.EmployeeSalary, 0, len(employees))}
	calcs := make([]models.SalaryCalculation, 0, len(employees))
	for _, e := range employees {
		calc := salary.Calculate(e.DailyEarnings, rates)
		report.Employees = append(report.Employees, models.EmployeeSalary{Employee: e, Salary: calc})
		calcs = append(calcs, calc)
	}
	report.Total = salary.Sum(calcs...)
	return report
}

func (s *EarningsService) TaxRates(ctx context.Context) models.TaxRates {
	return s.repo.LoadTaxRates(ctx)
}

// UpdateTaxRates сохраняет ставки, если каждая лежит в диапазоне [0, 100].
func (s *EarningsService) UpdateTaxRates(ctx context.Context, rates models.TaxRates) error {
	const op = "services.UpdateTaxRates"

	for _, r := range []struct {
		field string
		value float64
	}{
		{"tax", rates.Tax},
		{"retirement", rates.Retirement},
		{"insurance", rates.Insurance},
	} {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 100 {
			s.metrics.Rejected(op)
			return apperr.Validation(r.field, "%s rate must be between 0 and 100", r.field)
		}
	}

	s.repo.SaveTaxRates(ctx, rates)
	s.log.Info("tax rates updated", sl.Op(op),
		slog.Float64("tax", rates.Tax),
		slog.Float64("retirement", rates.Retirement),
		slog.Float64("insurance", rates.Insurance))
	return nil
}

func (s *EarningsService) Theme(ctx context.Context) models.Theme {
	return s.repo.LoadTheme(ctx)
}

// ToggleTheme переключает тему и возвращает новую.
func (s *EarningsService) ToggleTheme(ctx context.Context) models.Theme {
	theme := s.repo.LoadTheme(ctx).Toggle()
	s.repo.SaveTheme(ctx, theme)
	return theme
}

func (s *EarningsService) checkEarning(date string, amount float64) error {
	if !day.Valid(date) {
		return apperr.Validation("date", "date %q must be in format YYYY-MM-DD", date)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperr.Validation("amount", "amount must be a valid number")
	}
	if amount <= 0 {
		return apperr.Validation("amount", "amount must be greater than zero")
	}
	return nil
}

func hasDate(earnings []models.DailyEarning, date string) bool {
	for _, e := range earnings {
		if e.Date == date {
			return true
		}
	}
	return false
}

func sortByDateDesc(earnings []models.DailyEarning) {
	sort.SliceStable(earnings, func(i, j int) bool {
		return day.Before(earnings[j].Date, earnings[i].Date)
	})
}
