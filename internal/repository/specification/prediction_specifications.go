package specification

import "gorm.io/gorm"

type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}

// Latest returns the newest records first, tie-broken by id.
type Latest struct {
	Limit int
}

func (s Latest) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC").Limit(s.Limit)
}
