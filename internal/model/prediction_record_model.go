package model

import (
	"time"

	"gorm.io/datatypes"
)

type PredictionRecord struct {
	Id           uint           `gorm:"primaryKey;autoIncrement"`
	UserId       *uint          `gorm:"index"`
	User         *User          `gorm:"foreignKey:UserId;constraint:OnDelete:SET NULL"`
	Source       string         `gorm:"type:varchar(10);not null"`
	Label        string         `gorm:"type:varchar(20);not null"`
	Confidence   float64        `gorm:"not null"`
	ModelVersion string         `gorm:"type:varchar(100)"`
	Features     datatypes.JSON `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (PredictionRecord) TableName() string {
	return "prediction_records"
}

// Models lists every table owned by the application, in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&PredictionRecord{},
	}
}
