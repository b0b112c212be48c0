package user

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrUserExists           = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
)

type (
	Repository interface {
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		CreateUser(ctx context.Context, usr User) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{repo: repo, validate: validate, translator: translator}
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

// Authenticate checks the credentials of an active account and records the login.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}

	usr.LastLogin = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// AddUser updates or creates an active account.
func (svc *Service) AddUser(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, core.TranslateErrors(err, svc.translator)
	}

	now := time.Now().UTC()
	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: nu.Username})
	switch err {
	case nil:
	case ErrNotFound:
		usr = User{Username: nu.Username, CreatedAt: now}
	default:
		return User{}, errors.Wrap(err, "finding user by username")
	}

	usr.Role = nu.Role
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if usr.ID == 0 {
		usr, err = svc.repo.CreateUser(ctx, usr)
		return usr, errors.Wrap(err, "creating user")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

func (svc *Service) ResetPassword(ctx context.Context, sp SetPassword) error {
	sp.Username = core.CleanString(sp.Username, true /* lower */)
	if err := svc.validate.Struct(sp); err != nil {
		return core.TranslateErrors(err, svc.translator)
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: sp.Username})
	if err != nil {
		return err
	}
	if err = usr.SetPassword(sp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}
