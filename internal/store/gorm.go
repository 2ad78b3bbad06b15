package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRecord is the single table backing every collection.
type documentRecord struct {
	Collection string         `gorm:"primaryKey;type:varchar(64)"`
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	Body       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRecord) TableName() string {
	return "documents"
}

// GormStore is a Store over a relational database reached through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore. Call AutoMigrate before first use.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the documents table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&documentRecord{})
}

// Get loads one document.
func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	return decodeDocument(rec.Body)
}

// Query pushes string equality predicates down as JSON queries, then
// evaluates the full query in process so every driver behaves the same way.
func (s *GormStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	tx := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, p := range q.Where {
		if v, ok := p.Value.(string); ok {
			tx = tx.Where(datatypes.JSONQuery("body").Equals(v, p.Field))
		}
	}

	var recs []documentRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, mapGormError(err)
	}

	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeDocument(rec.Body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return q.apply(docs), nil
}

// Set upserts a document.
func (s *GormStore) Set(ctx context.Context, collection, id string, doc Document) error {
	raw, err := encodeDocument(id, doc)
	if err != nil {
		return err
	}

	rec := documentRecord{Collection: collection, ID: id, Body: datatypes.JSON(raw)}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return mapGormError(err)
	}
	return nil
}

// Update merges partial into the stored body. The read-modify-write of the
// single row runs in one database transaction.
func (s *GormStore) Update(ctx context.Context, collection, id string, partial Document) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec documentRecord
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&rec).Error; err != nil {
			return err
		}
		doc, err := decodeDocument(rec.Body)
		if err != nil {
			return err
		}
		for k, v := range partial {
			doc[k] = v
		}
		raw, err := encodeDocument(id, doc)
		if err != nil {
			return err
		}
		return tx.Model(&documentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]interface{}{
				"body":       datatypes.JSON(raw),
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return mapGormError(err)
	}
	return nil
}

// Delete removes a document.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRecord{})
	if res.Error != nil {
		return mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidDocument), errors.Is(err, ErrNotFound):
		return err
	default:
		return unavailable(err)
	}
}
