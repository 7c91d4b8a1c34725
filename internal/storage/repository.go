// Package storage — репозиторий учёта заработка поверх хранилища ключ-значение.
//
// Любой сбой хранилища и любое повреждённое значение превращаются в пустое значение
// или значение по умолчанию: ошибка логируется и учитывается в метриках, но наружу
// не передаётся. Ошибки записи также поглощаются. Наружу видна только ошибка
// apperr.ErrCorrupted: повреждённый список не перезаписывается.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/salary-tracker/internal/apperr"
	"github.com/magabrotheeeer/salary-tracker/internal/kvstore"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/salary-tracker/internal/models"
)

const (
	KeyUsers       = "users"
	KeyCurrentUser = "current_user"
	KeyTaxRates    = "tax_rates"
	KeyTheme       = "theme_preference"
)

// Виды ключей для меток метрик.
const (
	kindUsers              = "users"
	kindCurrentUser        = "current_user"
	kindTaxRates           = "tax_rates"
	kindTheme              = "theme"
	kindEmployees          = "employees"
	kindIndividualEarnings = "individual_earnings"
)

var errMalformed = errors.New("malformed value")

// EmployeesKey — ключ списка сотрудников компании.
func EmployeesKey(userID string) string {
	return "employees_" + userID
}

// IndividualEarningsKey — ключ дневных заработков физического лица.
func IndividualEarningsKey(userID string) string {
	return "individual_earnings_" + userID
}

// Repository читает и пишет доменные записи в Store.
type Repository struct {
	store    kvstore.Store
	log      *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// New создаёт репозиторий. metrics может быть nil.
func New(store kvstore.Store, log *slog.Logger, m *metrics.Metrics) *Repository {
	return &Repository{
		store:    store,
		log:      log,
		metrics:  m,
		validate: validation.New(),
	}
}

func (r *Repository) LoadIndividualEarnings(ctx context.Context, userID string) []models.DailyEarning {
	const op = "storage.LoadIndividualEarnings"

	var earnings []models.DailyEarning
	if !r.load(ctx, op, IndividualEarningsKey(userID), kindIndividualEarnings, func(raw string) (err error) {
		earnings, err = r.decodeEarnings(raw)
		return err
	}) {
		return []models.DailyEarning{}
	}
	return earnings
}

// SaveIndividualEarnings перезаписывает заработки физического лица.
// Возвращает apperr.ErrCorrupted, если хранимый список повреждён: он не перезаписывается.
func (r *Repository) SaveIndividualEarnings(ctx context.Context, userID string, earnings []models.DailyEarning) error {
	const op = "storage.SaveIndividualEarnings"
	if earnings == nil {
		earnings = []models.DailyEarning{}
	}
	return r.saveList(ctx, op, IndividualEarningsKey(userID), kindIndividualEarnings, earnings, func(raw string) error {
		_, err := r.decodeEarnings(raw)
		return err
	})
}

func (r *Repository) LoadEmployees(ctx context.Context, userID string) []models.Employee {
	const op = "storage.LoadEmployees"

	var employees []models.Employee
	if !r.load(ctx, op, EmployeesKey(userID), kindEmployees, func(raw string) (err error) {
		employees, err = r.decodeEmployees(raw)
		return err
	}) {
		return []models.Employee{}
	}
	return employees
}

// SaveEmployees перезаписывает список сотрудников. Повреждённый список не перезаписывается.
func (r *Repository) SaveEmployees(ctx context.Context, userID string, employees []models.Employee) error {
	const op = "storage.SaveEmployees"
	if employees == nil {
		employees = []models.Employee{}
	}
	return r.saveList(ctx, op, EmployeesKey(userID), kindEmployees, employees, func(raw string) error {
		_, err := r.decodeEmployees(raw)
		return err
	})
}

// storedRates отличает отсутствующее поле от нулевой ставки.
type storedRates struct {
	Tax        *float64 `json:"tax"`
	Retirement *float64 `json:"retirement"`
	Insurance  *float64 `json:"insurance"`
}

// LoadTaxRates возвращает сохранённые ставки или ставки по умолчанию.
func (r *Repository) LoadTaxRates(ctx context.Context) models.TaxRates {
	const op = "storage.LoadTaxRates"

	var stored storedRates
	if !r.load(ctx, op, KeyTaxRates, kindTaxRates, func(raw string) error {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return err
		}
		if stored.Tax == nil || stored.Retirement == nil || stored.Insurance == nil {
			return errors.New("missing rate")
		}
		return nil
	}) {
		return models.DefaultTaxRates()
	}
	return models.TaxRates{
		Tax:        *stored.Tax,
		Retirement: *stored.Retirement,
		Insurance:  *stored.Insurance,
	}
}

// SaveTaxRates перезаписывает ставки. Диапазон значений здесь не проверяется.
func (r *Repository) SaveTaxRates(ctx context.Context, rates models.TaxRates) {
	const op = "storage.SaveTaxRates"
	r.save(ctx, op, KeyTaxRates, kindTaxRates, rates)
}

// LoadUsers возвращает список пользователей и признак того, что список вообще сохранён.
// Повреждённый список считается отсутствующим.
func (r *Repository) LoadUsers(ctx context.Context) ([]models.User, bool) {
	const op = "storage.LoadUsers"

	var users []models.User
	if !r.load(ctx, op, KeyUsers, kindUsers, func(raw string) (err error) {
		users, err = r.decodeUsers(raw)
		return err
	}) {
		return []models.User{}, false
	}
	return users, true
}

// SaveUsers перезаписывает список пользователей. Повреждённый список не перезаписывается.
func (r *Repository) SaveUsers(ctx context.Context, users []models.User) error {
	const op = "storage.SaveUsers"
	if users == nil {
		users = []models.User{}
	}
	return r.saveList(ctx, op, KeyUsers, kindUsers, users, func(raw string) error {
		_, err := r.decodeUsers(raw)
		return err
	})
}

// LoadCurrentUser возвращает пользователя текущей сессии или nil.
func (r *Repository) LoadCurrentUser(ctx context.Context) *models.User {
	const op = "storage.LoadCurrentUser"

	var user *models.User
	if !r.load(ctx, op, KeyCurrentUser, kindCurrentUser, func(raw string) error {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return err
		}
		if user == nil {
			return errMalformed
		}
		return r.validate.Struct(user)
	}) {
		return nil
	}
	return user
}

func (r *Repository) SaveCurrentUser(ctx context.Context, user models.User) {
	const op = "storage.SaveCurrentUser"
	r.save(ctx, op, KeyCurrentUser, kindCurrentUser, user)
}

func (r *Repository) ClearCurrentUser(ctx context.Context) {
	const op = "storage.ClearCurrentUser"
	log := r.log.With(sl.Op(op))

	if err := r.store.Remove(ctx, KeyCurrentUser); err != nil {
		log.Warn("failed to remove value", slog.String("key", KeyCurrentUser), sl.Err(err))
		r.metrics.Fallback(kindCurrentUser, metrics.ReasonWriteError)
	}
}

// LoadTheme возвращает сохранённую тему. Всё, кроме "dark", считается светлой темой.
func (r *Repository) LoadTheme(ctx context.Context) models.Theme {
	const op = "storage.LoadTheme"

	raw, found := r.read(ctx, op, KeyTheme, kindTheme)
	if found && models.Theme(raw) == models.ThemeDark {
		return models.ThemeDark
	}
	return models.ThemeLight
}

func (r *Repository) SaveTheme(ctx context.Context, theme models.Theme) {
	const op = "storage.SaveTheme"
	log := r.log.With(sl.Op(op))

	if err := r.store.Set(ctx, KeyTheme, string(theme)); err != nil {
		log.Warn("failed to write value", slog.String("key", KeyTheme), sl.Err(err))
		r.metrics.Fallback(kindTheme, metrics.ReasonWriteError)
	}
}

// read возвращает сырое значение. Ошибка хранилища приравнивается к отсутствию ключа.
func (r *Repository) read(ctx context.Context, op, key, kind string) (string, bool) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn("failed to read value, using default",
			sl.Op(op), slog.String("key", key), sl.Err(err))
		r.metrics.Fallback(kind, metrics.ReasonStoreError)
		return "", false
	}
	return raw, found
}

// load читает key и передаёт сырое значение в decode.
// Возвращает false, если значения нет или decode вернул ошибку.
func (r *Repository) load(ctx context.Context, op, key, kind string, decode func(raw string) error) bool {
	raw, found := r.read(ctx, op, key, kind)
	if !found {
		return false
	}

	if err := decode(raw); err != nil {
		r.log.Warn("malformed stored value, using default",
			sl.Op(op), slog.String("key", key), sl.Err(err))
		r.metrics.Fallback(kind, metrics.ReasonMalformed)
		return false
	}
	return true
}

// saveList перезаписывает список, только если хранимое значение отсутствует или проходит decode.
// Повреждённый список читается как пустой, и запись поверх него потеряла бы остальные записи.
// Ошибка чтения запись не останавливает.
func (r *Repository) saveList(ctx context.Context, op, key, kind string, value any, decode func(raw string) error) error {
	raw, found, err := r.store.Get(ctx, key)
	if err == nil && found {
		if err := decode(raw); err != nil {
			r.log.Error("refusing to overwrite malformed stored value",
				sl.Op(op), slog.String("key", key), sl.Err(err))
			r.metrics.Fallback(kind, metrics.ReasonRefused)
			return fmt.Errorf("%s: %w", op, apperr.ErrCorrupted)
		}
	}

	r.save(ctx, op, key, kind, value)
	return nil
}

func (r *Repository) save(ctx context.Context, op, key, kind string, value any) {
	log := r.log.With(sl.Op(op), slog.String("key", key))

	data, err := json.Marshal(value)
	if err != nil {
		log.Error("failed to encode value", sl.Err(err))
		r.metrics.Fallback(kind, metrics.ReasonWriteError)
		return
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		log.Warn("failed to write value", sl.Err(err))
		r.metrics.Fallback(kind, metrics.ReasonWriteError)
	}
}

func (r *Repository) validateEach(n int, item func(i int) any) error {
	for i := 0; i < n; i++ {
		if err := r.validate.Struct(item(i)); err != nil {
			return fmt.Errorf("element %d: %s", i, validation.Message(err))
		}
	}
	return nil
}

func (r *Repository) decodeEarnings(raw string) ([]models.DailyEarning, error) {
	var earnings []models.DailyEarning
	if err := json.Unmarshal([]byte(raw), &earnings); err != nil {
		return nil, err
	}
	if err := r.validateEach(len(earnings), func(i int) any { return earnings[i] }); err != nil {
		return nil, err
	}
	if earnings == nil {
		earnings = []models.DailyEarning{}
	}
	return earnings, nil
}

func (r *Repository) decodeEmployees(raw string) ([]models.Employee, error) {
	var employees []models.Employee
	if err := json.Unmarshal([]byte(raw), &employees); err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].DailyEarnings == nil {
			employees[i].DailyEarnings = []models.DailyEarning{}
		}
	}
	if err := r.validateEach(len(employees), func(i int) any { return employees[i] }); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, nil
}

func (r *Repository) decodeUsers(raw string) ([]models.User, error) {
	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, err
	}
	if err := r.validateEach(len(users), func(i int) any { return users[i] }); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
