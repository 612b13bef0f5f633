package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chatapp/module/chat/store"
	usermodel "chatapp/module/user/model"
	"chatapp/tools/errs"
	"chatapp/tools/ids"
	jwtlib "chatapp/tools/security"
)

// Service handles account registration and login. Passwords are stored as
// bcrypt hashes; login yields a signed token whose subject is the user id.
type Service struct {
	social store.SocialStore
	jwt    jwtlib.Options
}

func NewService(social store.SocialStore, jwt jwtlib.Options) *Service {
	return &Service{social: social, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, username, password string) (*usermodel.User, error) {
	if username == "" || password == "" {
		return nil, errs.ErrInvalidArgument.WithDetail("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &usermodel.User{
		ID:           ids.GenerateString(),
		Username:     username,
		PasswordHash: string(hash),
		Friends:      []string{},
		CreateTime:   time.Now().UTC(),
	}
	if err := s.social.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a token. Unknown user and wrong
// password collapse to the same Unauthenticated answer.
func (s *Service) Login(ctx context.Context, username, password string) (string, *usermodel.User, error) {
	u, err := s.social.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, errs.ErrUnauthenticated.WithDetail("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, errs.ErrUnauthenticated.WithDetail("invalid credentials")
	}
	token, _, err := jwtlib.Generate(s.jwt, u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
