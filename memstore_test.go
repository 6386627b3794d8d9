package main

import (
	"errors"
	"sort"
	"sync"
	"time"

	"znappystore/models"
)

var errStoreFailure = errors.New("store failure")

// memStore is an in-memory UserStore/FileStore for the handler tests. It
// doubles as proof that route logic only depends on the store contracts, not
// on GORM. The fail* switches force write failures for the compensation
// paths.
type memStore struct {
	mu             sync.Mutex
	users          map[uint]*models.User
	files          map[string]*models.File
	nextUserID     uint
	failCreateFile bool
	failDeleteFile map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:          make(map[uint]*models.User),
		files:          make(map[string]*models.File),
		failDeleteFile: make(map[string]bool),
	}
}

func (m *memStore) FindUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) FindUserByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *memStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	user.ID = m.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) DeleteUser(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	// cascade, like the FK does in Postgres
	for fid, f := range m.files {
		if f.UserID == id {
			delete(m.files, fid)
		}
	}
	return nil
}

func (m *memStore) ListUsers() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *memStore) CountUsers() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memStore) CreateFile(file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateFile {
		return errStoreFailure
	}
	if file.UploadDate.IsZero() {
		file.UploadDate = time.Now()
	}
	m.files[file.ID] = file
	return nil
}

func (m *memStore) FindFileByID(id string) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *memStore) FindFilesByUserID(userID uint) ([]models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := make([]models.File, 0)
	for _, f := range m.files {
		if f.UserID == userID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadDate.After(files[j].UploadDate)
	})
	return files, nil
}

func (m *memStore) DeleteFile(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteFile[id] {
		return errStoreFailure
	}
	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *memStore) FilePaths() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for _, f := range m.files {
		paths = append(paths, f.FilePath)
	}
	return paths, nil
}
