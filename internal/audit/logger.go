package audit

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliniflow/clinic-manager/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	professionalID uuid.UUID,
	actorID *uuid.UUID,
	action string,
	entity string,
	entityID *uuid.UUID,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		ProfessionalID: professionalID,
		ActorID:        actorID,
		Action:         action,
		Entity:         entity,
		EntityID:       entityID,
		Metadata:       metaJSON,
	}

	return l.db.Create(&entry).Error
}
