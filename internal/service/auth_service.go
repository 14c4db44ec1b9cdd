// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"time"

	"student-risk-be/internal/dto"
	"student-risk-be/internal/entity"
	"student-risk-be/internal/pkg/logger"
	"student-risk-be/internal/pkg/mailer"
	"student-risk-be/internal/pkg/metrics"
	"student-risk-be/internal/pkg/serverutils"
	"student-risk-be/internal/repository/specification"
	"student-risk-be/internal/repository/unitofwork"
	"student-risk-be/pkg/events"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password is too short")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthOptions struct {
	MinPasswordLength int
	JWTSecret         string
	JWTTTL            time.Duration
}

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*entity.User, error)
	Token(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session)
	MinPasswordLength() int
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher events.Publisher
	metrics        *metrics.Metrics
	logger         logger.ILogger
	opts           AuthOptions
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
	opts AuthOptions,
) IAuthService {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 24 * time.Hour
	}
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		metrics:        m,
		logger:         log,
		opts:           opts,
	}
}

func (s *authService) MinPasswordLength() int {
	return s.opts.MinPasswordLength
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, ErrInvalidEmail
	}
	if req.Password != req.Confirm {
		return nil, ErrPasswordMismatch
	}
	if len(req.Password) < s.opts.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	user := &entity.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	s.metrics.AuthEvent("register")
	s.publish(ctx, events.UserRegistered, map[string]interface{}{
		"user_id": user.Id,
		"email":   user.Email,
	})

	go func() {
		if err := s.emailService.SendWelcome(user.Email); err != nil {
			s.logger.Warn("AUTH", "Failed to send welcome email", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
	}()

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*entity.User, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		s.metrics.AuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.AuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.AuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthEvent("login")
	s.publish(ctx, events.UserLogin, map[string]interface{}{
		"user_id": user.Id,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) Token(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := serverutils.IssueToken(s.opts.JWTSecret, user.Id, user.Email, s.opts.JWTTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        dto.UserDTO{Id: user.Id, Email: user.Email},
	}, nil
}

// Logout only records the event; the session itself is replaced by the caller.
func (s *authService) Logout(ctx context.Context, session *entity.Session) {
	if session == nil || !session.IsAuthenticated() {
		return
	}
	s.metrics.AuthEvent("logout")
	s.publish(ctx, events.UserLogout, map[string]interface{}{
		"user_id": session.UserId,
		"email":   session.Email,
	})
}

func (s *authService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("AUTH", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
