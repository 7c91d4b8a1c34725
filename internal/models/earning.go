package models

// DailyEarning — заработок за один календарный день.
// У физического лица EmployeeID пустой, у сотрудника компании указывает на владельца.
type DailyEarning struct {
	ID         string  `json:"id" validate:"required"`
	Date       string  `json:"date" validate:"required,isodate"` // YYYY-MM-DD
	Amount     float64 `json:"amount" validate:"gt=0"`
	EmployeeID string  `json:"employeeId,omitempty"`
}

// Employee — сотрудник компании со своим набором дневных заработков.
type Employee struct {
	ID            string         `json:"id" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	DailyEarnings []DailyEarning `json:"dailyEarnings" validate:"dive"`
	UserID        string         `json:"userId" validate:"required"`
}
