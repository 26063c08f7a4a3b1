package fakeuserrepo

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/rideon-session/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[users.ID]*users.User
	emailIds map[string]users.ID // email to user id
	nextID   int
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[users.ID]*users.User),
		emailIds: make(map[string]users.ID),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email := strings.ToLower(user.Email)
	if user.ID == "" {
		if existing, ok := ur.emailIds[email]; ok {
			user.ID = existing
		} else {
			ur.nextID++
			user.ID = users.ID(strconv.Itoa(ur.nextID))
		}
	}
	ur.users[user.ID] = user
	ur.emailIds[email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email = strings.ToLower(email)
	userID, ok := ur.emailIds[email]
	if !ok {
		return errors.New("not found")
	}
	delete(ur.emailIds, email)
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("not found")
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(id users.ID) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return user, nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, v)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].Email < userList[j].Email
	})

	if offset >= len(userList) {
		return nil, nil
	}
	end := offset + limit
	if end > len(userList) {
		end = len(userList)
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) SetActive(email string, active bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return errors.New("not found")
	}
	ur.users[id].IsActive = active
	return nil
}

func (ur *FakeUserRepo) SetEmailVerified(email string, verified bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return errors.New("not found")
	}
	ur.users[id].IsEmailVerified = verified
	return nil
}
