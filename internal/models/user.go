// Package models содержит доменные структуры учёта заработка: пользователя,
// сотрудника, дневной заработок, ставки удержаний и результат расчёта зарплаты.
// Структуры не содержат поведения, JSON-теги совпадают с форматом хранения.
package models

// Role определяет тип учётной записи.
type Role string

const (
	// RoleIndividual — физическое лицо, ведущее учёт собственного заработка.
	RoleIndividual Role = "individual"
	// RoleCompany — компания, ведущая учёт заработка сотрудников.
	RoleCompany Role = "company"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	return r == RoleIndividual || r == RoleCompany
}

// User представляет зарегистрированного пользователя.
// Username уникален и сравнивается с учётом регистра, пароль хранится как есть.
type User struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password"`
	Role      Role   `json:"role" validate:"required,oneof=individual company"`
	CreatedAt string `json:"createdAt"` // RFC 3339
}

// RegisterRequest — данные кандидата при регистрации, до присвоения ID и даты создания.
type RegisterRequest struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Username  string `validate:"required"`
	Password  string `validate:"min=4"`
	Role      Role   `validate:"required,oneof=individual company"`
}
