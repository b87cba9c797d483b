package repository

import (
	"gorm.io/gorm"

	"filevault/infra"
)

type Repository struct {
	FileRepo *FileRecordRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		FileRepo: NewFileRecordRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return &Repository{
		FileRepo: NewFileRecordRepository(tx),
	}
}
