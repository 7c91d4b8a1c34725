// Package services содержит логику каталога учётных записей: регистрацию, вход и выход.
//
// Состояние сессии не хранится внутри сервиса. Каждая операция возвращает Session,
// а вызывающая сторона передаёт её дальше сама. Указатель на текущего пользователя
// сохраняется в хранилище, чтобы сессия переживала перезапуск клиента.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/salary-tracker/internal/apperr"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/salary-tracker/internal/models"
)

// UserRepository описывает хранение пользователей и указателя на текущую сессию.
type UserRepository interface {
	// LoadUsers возвращает пользователей и признак того, что список сохранён.
	LoadUsers(ctx context.Context) ([]models.User, bool)
	// SaveUsers возвращает apperr.ErrCorrupted, если сохранённый список повреждён.
	SaveUsers(ctx context.Context, users []models.User) error
	LoadCurrentUser(ctx context.Context) *models.User
	SaveCurrentUser(ctx context.Context, user models.User)
	ClearCurrentUser(ctx context.Context)
}

// Session — состояние аутентификации клиента. Нулевое значение — анонимная сессия.
type Session struct {
	User *models.User
}

// Authenticated сообщает, выполнен ли вход.
func (s Session) Authenticated() bool {
	return s.User != nil
}

func (s Session) IsCompany() bool {
	return s.User != nil && s.User.Role == models.RoleCompany
}

func (s Session) IsIndividual() bool {
	return s.User != nil && s.User.Role == models.RoleIndividual
}

// AuthService отвечает за регистрацию и вход пользователей.
type AuthService struct {
	users    UserRepository
	log      *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	newID    func() string
	now      func() time.Time
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithIDGenerator подменяет генератор идентификаторов пользователей.
func WithIDGenerator(gen func() string) Option {
	return func(s *AuthService) { s.newID = gen }
}

// WithClock подменяет источник времени для CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, log *slog.Logger, m *metrics.Metrics, opts ...Option) *AuthService {
	s := &AuthService{
		users:    users,
		log:      log,
		metrics:  m,
		validate: validation.New(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создаёт пользователя и сразу открывает для него сессию.
// Имя, фамилия и логин проверяются без учёта пробелов по краям, но сохраняются как введены.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (Session, error) {
	const op = "services.Register"
	log := s.log.With(sl.Op(op), slog.String("username", req.Username))

	trimmed := req
	trimmed.FirstName = strings.TrimSpace(req.FirstName)
	trimmed.LastName = strings.TrimSpace(req.LastName)
	trimmed.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(trimmed); err != nil {
		s.metrics.Rejected(op)
		return Session{}, apperr.Validation(validation.FirstField(err), "%s", validation.Message(err))
	}

	users, _ := s.users.LoadUsers(ctx)
	for _, u := range users {
		if u.Username == req.Username {
			s.metrics.Rejected(op)
			return Session{}, apperr.Validation("Username", "username %q is already taken", req.Username)
		}
	}

	user := models.User{
		ID:        s.newID(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.users.SaveUsers(ctx, append(users, user)); err != nil {
		log.Error("failed to save user", sl.Err(err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	s.users.SaveCurrentUser(ctx, user)

	log.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return Session{User: &user}, nil
}

// Login ищет пользователя с точным совпадением логина и пароля и открывает сессию.
// Неудачная попытка не меняет сохранённую сессию.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	const op = "services.Login"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	users, found := s.users.LoadUsers(ctx)
	if !found {
		return Session{}, apperr.NotFound("user list")
	}

	for i := range users {
		if users[i].Username == username && users[i].Password == password {
			user := users[i]
			s.users.SaveCurrentUser(ctx, user)
			log.Info("user logged in", slog.String("user_id", user.ID))
			return Session{User: &user}, nil
		}
	}

	log.Info("invalid credentials")
	return Session{}, apperr.ErrInvalidCredentials
}

// Logout закрывает сессию. Операция всегда успешна.
func (s *AuthService) Logout(ctx context.Context) Session {
	s.users.ClearCurrentUser(ctx)
	return Session{}
}

// CurrentSession восстанавливает сессию из хранилища.
func (s *AuthService) CurrentSession(ctx context.Context) Session {
	return Session{User: s.users.LoadCurrentUser(ctx)}
}
