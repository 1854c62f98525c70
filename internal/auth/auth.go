// Package auth — вход по email/паролю и JWT-токены для API.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"educrm/internal/access"
	"educrm/internal/db"
	"educrm/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrInvalidToken       = errors.New("невалидный токен")
)

type Claims struct {
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	database *sql.DB
	secret   []byte
	ttl      time.Duration
}

func New(database *sql.DB, secret string, ttl time.Duration) *Service {
	return &Service{database: database, secret: []byte(secret), ttl: ttl}
}

// Login ищет актора по email последовательно среди админов, воркеров
// и преподавателей. Удалённый или отключённый преподаватель войти не
// может.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Claims, error) {
	id, role, hash, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		UserID: id,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("подпись токена: %w", err)
	}
	return token, claims, nil
}

// EnsureAdmin заводит стартового админа на пустой базе. Занятый e-mail
// (любой из трёх коллекций персонала) — no-op: пароль существующей
// записи не перетирается.
func EnsureAdmin(ctx context.Context, database *sql.DB, email, password string) error {
	taken, err := db.EmailTaken(ctx, database, email, "", 0)
	if err != nil {
		return fmt.Errorf("проверка e-mail: %w", err)
	}
	if taken {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.CreateAdmin(ctx, database, &models.Admin{
		FullName: "Администратор",
		Email:    email,
		Password: string(hash),
	})
}

func (s *Service) findByEmail(ctx context.Context, email string) (int64, models.Role, string, error) {
	if a, err := db.GetAdminByEmail(ctx, s.database, email); err == nil {
		return a.ID, models.RoleAdmin, a.Password, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return 0, "", "", err
	}

	if w, err := db.GetWorkerByEmail(ctx, s.database, email); err == nil {
		return w.ID, models.RoleWorker, w.Password, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return 0, "", "", err
	}

	t, err := db.GetTeacherByEmail(ctx, s.database, email)
	if err != nil {
		return 0, "", "", err
	}
	if t.Deleted || !t.Status {
		return 0, "", "", models.ErrNotFound
	}
	return t.ID, t.Role, t.Password, nil
}

func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Actor достраивает права к claims: воркеру подтягиваются настройки
// разделов, остальным роли достаточно.
func (s *Service) Actor(ctx context.Context, claims *Claims) (access.Actor, error) {
	actor := access.Actor{ID: claims.UserID, Role: claims.Role}
	if claims.Role != models.RoleWorker {
		return actor, nil
	}
	w, err := db.GetWorkerByID(ctx, s.database, claims.UserID)
	if err != nil {
		return access.Actor{}, err
	}
	actor.Profiles = w.Profiles
	return actor, nil
}
