package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(id ID) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetActive(email string, active bool) error
	SetEmailVerified(email string, verified bool) error
}
