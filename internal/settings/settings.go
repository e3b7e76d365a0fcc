package settings

import (
	"errors"
	"fmt"

	"github.com/neurastate/datahub/internal/models"
	"gorm.io/gorm"
)

// Repository reads the externally managed settings table. The DataHub core
// never writes it.
type Repository interface {
	// GetFirst returns the first settings record ordered by primary key,
	// or nil, nil when the table is empty.
	GetFirst() (*models.Settings, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a settings repository backed by a gorm connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetFirst() (*models.Settings, error) {
	var record models.Settings
	err := r.db.Order("id asc").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return &record, nil
}
