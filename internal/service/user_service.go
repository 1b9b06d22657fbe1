package service

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/auth"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	users    port.UserRepository
	orders   port.OrderRepository
	tokens   port.TokenIssuer
	notifier port.Notifier
	log      logrus.FieldLogger
}

func NewUser(
	users port.UserRepository,
	orders port.OrderRepository,
	tokens port.TokenIssuer,
	notifier port.Notifier,
	log logrus.FieldLogger,
) *UserService {
	return &UserService{
		users:    users,
		orders:   orders,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

type SignUpInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

func (in SignUpInput) validate() error {
	switch {
	case in.Username == "":
		return apperr.New(apperr.KindValidation, "username cannot be empty")
	case in.Password == "" || len(in.Password) < 8:
		return apperr.New(apperr.KindValidation, "password must be at least 8 chars long")
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.New(apperr.KindValidation, "must provide a valid email")
	}

	return nil
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (domain.User, error) {
	var u domain.User

	if err := in.validate(); err != nil {
		return u, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return u, fmt.Errorf("auth.HashPassword: %w", err)
	}

	// anything but an explicit admin request signs up as a normal user
	role := domain.RoleNormal
	if in.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}

	user := domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}

	userID, err := s.users.InsertUser(ctx, user)
	if err != nil {
		return u, fmt.Errorf("users.InsertUser: %w", err)
	}
	user.ID = userID
	user.PasswordHash = ""

	if err := s.notifier.SendWelcome(ctx, user.Email, user.Username); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("welcome notification failed")
	}

	return user, nil
}

// Login resolves credentials to a signed session token. Both an unknown
// email and a wrong password surface the same message.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", apperr.New(apperr.KindUnauthenticated, "credentials invalid")
		}
		return "", fmt.Errorf("users.GetUserByEmail: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperr.New(apperr.KindUnauthenticated, "credentials invalid")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("tokens.Issue: %w", err)
	}

	return token, nil
}

func (s *UserService) Update(ctx context.Context, session domain.SessionUser, userID uuid.UUID, username, email string) error {
	if err := requireOwnAccount(session, userID); err != nil {
		return err
	}

	if username == "" || email == "" {
		return apperr.New(apperr.KindValidation, "you must provide an email and username")
	}

	if err := s.users.UpdateUser(ctx, userID, username, email); err != nil {
		return fmt.Errorf("users.UpdateUser: %w", err)
	}

	return nil
}

func (s *UserService) Delete(ctx context.Context, session domain.SessionUser, userID uuid.UUID) error {
	if err := requireOwnAccount(session, userID); err != nil {
		return err
	}

	if err := s.users.SoftDeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("users.SoftDeleteUser: %w", err)
	}

	return nil
}

func requireOwnAccount(session domain.SessionUser, userID uuid.UUID) error {
	if session.ID != userID {
		return apperr.New(apperr.KindForbidden, "you can only modify your own account")
	}
	return nil
}

// Orders lists the caller's orders, each with its purchased lines.
func (s *UserService) Orders(ctx context.Context, session domain.SessionUser) ([]domain.Order, error) {
	orders, err := s.orders.SearchOrders(ctx, domain.OrderFilter{
		OwnerIDs: []uuid.UUID{session.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

func (s *UserService) Order(ctx context.Context, session domain.SessionUser, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID, session.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}
