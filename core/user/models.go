package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/schooldash/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

var Roles = []Role{
	{Name: "Admin", Value: RoleAdmin},
	{Name: "Teacher", Value: RoleTeacher},
	{Name: "Student", Value: RoleStudent},
	{Name: "Parent", Value: RoleParent},
}

func IsRole(value string) bool {
	for _, r := range Roles {
		if r.Value == value {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a login account. PersonID links teacher, student and parent accounts to their record.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PersonID     string    `json:"person_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role, PersonID: u.PersonID}
}

func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

// NewUser contains information needed to create an account from the admin CLI.
type NewUser struct {
	Username string `json:"username" label:"User name" validate:"min=3,max=20,alphanum_"`
	Role     string `json:"role" label:"Role" validate:"required,userrole"`
	Password string `json:"password" label:"Password"`
}

func (nu *NewUser) Clean() {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
}

// SetPassword defines what information may be provided to reset an account's password.
type SetPassword struct {
	Username string `json:"username" label:"User name"`
	Password string `json:"password" label:"Password"`
}

type GetFilter struct {
	ID       int
	Username string
}
