package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/db"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("authentication failed")
	ErrInvalidRole        = errors.New("invalid role")
)

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, error)
	Register(ctx context.Context, id, password, role string) error
	Get(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Delete(ctx context.Context, id string) error
	ChangeID(ctx context.Context, oldID, newID string) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

type Service struct {
	db       *sql.DB
	store    AccountStore
	secret   []byte
	tokenTTL time.Duration
	clock    clock.Clock
}

func NewService(conn *sql.DB, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		db:       conn,
		store:    NewStore(conn),
		secret:   secret,
		tokenTTL: tokenTTL,
		clock:    clock.Real{},
	}
}

func (s *Service) Secret() []byte {
	return s.secret
}

func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	acct, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	if acct == nil || acct.IsDisabled {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) Register(ctx context.Context, id, password, role string) error {
	id = strings.TrimSpace(id)
	if id == "" || password == "" {
		return ErrInvalidCredentials
	}
	if role != RoleAdmin && role != RoleUser {
		return ErrInvalidRole
	}

	exists, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock.Now(),
	})
	if db.IsDuplicateKey(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	acct, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrNotFound
	}
	return acct, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.List(ctx)
}

// ChangeID: 存在確認と変更を同一Txで行う
func (s *Service) ChangeID(ctx context.Context, oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return ErrInvalidCredentials
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		old, err := s.store.GetByID(ctx, tx, oldID)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrNotFound
		}
		taken, err := s.store.GetByID(ctx, tx, newID)
		if err != nil {
			return err
		}
		if taken != nil {
			return ErrAlreadyExists
		}

		n, err := s.store.UpdateID(ctx, tx, oldID, newID)
		if db.IsDuplicateKey(err) {
			return ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetDisabled: ログイン可否の切替。発行済みトークンは exp まで有効
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	n, err := s.store.SetDisabled(ctx, id, disabled)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
