package dummydb

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
	"github.com/trezcool/schooldash/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) boil(usr user.User) Record {
	rec := Record{
		"username":      usr.Username,
		"role":          usr.Role,
		"person_id":     null.NewString(usr.PersonID, usr.PersonID != ""),
		"is_active":     usr.IsActive,
		"password_hash": usr.PasswordHash,
		"created_at":    usr.CreatedAt.UTC(),
		"updated_at":    usr.UpdatedAt.UTC(),
		"last_login":    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
	if usr.ID != 0 {
		rec["id"] = usr.ID
	}
	return rec
}

func (repo *userRepository) unboil(rec Record) user.User {
	hash, _ := rec["password_hash"].([]byte)
	active, _ := rec["is_active"].(bool)
	return user.User{
		ID:           rec.intAt("id"),
		Username:     rec.stringAt("username"),
		Role:         rec.stringAt("role"),
		PersonID:     rec.stringAt("person_id"),
		IsActive:     active,
		PasswordHash: hash,
		CreatedAt:    rec.timeAt("created_at"),
		UpdatedAt:    rec.timeAt("updated_at"),
		LastLogin:    rec.timeAt("last_login"),
	}
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if err := repo.db.checkOpen(); err != nil {
		return user.User{}, err
	}

	t := repo.db.tables[school.AccountTable]
	if filter.ID != 0 {
		if rec, ok := t.rows[filter.ID]; ok {
			return repo.unboil(rec), nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, rec := range t.rows {
			if rec.stringAt("username") == filter.Username {
				return repo.unboil(rec), nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	rec := repo.boil(usr)
	keys, err := repo.db.apply(school.Mutation{
		Op: school.Insert, Table: school.AccountTable, KeyColumn: school.KeyField, Key: rec["id"], Set: rec.assignments(),
	})
	if _, ok := err.(*core.ValidationError); ok {
		return user.User{}, user.ErrUserExists
	}
	if err != nil {
		return user.User{}, err
	}
	usr.ID = keys[0].(int)
	return usr, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.apply(school.Mutation{
		Op: school.Update, Table: school.AccountTable, KeyColumn: school.KeyField, Key: usr.ID, Set: repo.boil(usr).assignments(),
	})
	if err == school.ErrNotFound {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}
