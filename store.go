package main

import (
	"errors"

	"gorm.io/gorm"

	"znappystore/models"
)

// ErrNotFound is returned by store lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// UserStore is the credential/identity lookup contract used by login and the
// auth middleware.
type UserStore interface {
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	CreateUser(user *models.User) error
	DeleteUser(id uint) error
	ListUsers() ([]models.User, error)
	CountUsers() (int64, error)
}

// FileStore is the file-metadata contract used by the upload and
// retrieval/deletion handlers. Route logic never touches the database
// directly, so the backend is swappable.
type FileStore interface {
	CreateFile(file *models.File) error
	FindFileByID(id string) (*models.File, error)
	FindFilesByUserID(userID uint) ([]models.File, error)
	// DeleteFile removes the metadata row only; blob cleanup is the caller's
	// job. Returns ErrNotFound when no row was deleted.
	DeleteFile(id string) error
	FilePaths() ([]string, error)
}

// gormStore implements UserStore and FileStore on Postgres via GORM.
type gormStore struct {
	db *gorm.DB
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{db: db}
}

func (s *gormStore) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *gormStore) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *gormStore) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *gormStore) DeleteUser(id uint) error {
	res := s.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *gormStore) CountUsers() (int64, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *gormStore) CreateFile(file *models.File) error {
	return s.db.Create(file).Error
}

func (s *gormStore) FindFileByID(id string) (*models.File, error) {
	var file models.File
	if err := s.db.Where("id = ?", id).First(&file).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &file, nil
}

func (s *gormStore) FindFilesByUserID(userID uint) ([]models.File, error) {
	var files []models.File
	err := s.db.Where("user_id = ?", userID).Order("upload_date desc").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *gormStore) DeleteFile(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.File{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) FilePaths() ([]string, error) {
	var paths []string
	if err := s.db.Model(&models.File{}).Pluck("file_path", &paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
