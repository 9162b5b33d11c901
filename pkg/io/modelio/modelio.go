package modelio

import (
	"github.com/gnames/phenogrid/pkg/ent/model"
	"github.com/jinzhu/gorm"
)

type modelio struct {
	db *gorm.DB
}

// New returns a new instance of Model
func New(db *gorm.DB) model.Model {
	res := modelio{db: db}
	return &res
}

// Migrate creates tables in the database.
func (m *modelio) Migrate() error {
	res := m.db.AutoMigrate(
		&model.UnifiedRow{},
		&model.BirdPresence{},
	)
	return res.Error
}
