//go:build !wasip1 && !js

package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandrolain/goxmatch/pkg/regex"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// valueRow is one indexed node value.
type valueRow struct {
	ID      uint   `gorm:"primaryKey"`
	DocID   string `gorm:"type:varchar(36);index:idx_value_doc,priority:1;not null"`
	NodePos int    `gorm:"not null"`
	Value   string `gorm:"index:idx_value_doc,priority:2"`
}

// sqlBatchSize bounds the document ids bound into one query, well under
// the sqlite host parameter limit.
const sqlBatchSize = 500

// TableName overrides the gorm default.
func (valueRow) TableName() string { return "value_index" }

// SQLIndex stores node values in a sqlite table through gorm.
//
// Anchored case-sensitive patterns are narrowed with a GLOB prefix before
// the regex runs. Each distinct value is tested once per Match.
type SQLIndex struct {
	db     *gorm.DB
	engine regex.Engine
}

// NewSQLIndex opens (and migrates) the sqlite database at dsn.
// Use ":memory:" for a private in-memory database.
func NewSQLIndex(dsn string, engine regex.Engine) (*SQLIndex, error) {
	if engine == nil {
		engine = regex.Default
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, types.NewIndexQueryError("failed to open index database", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise see its own database
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := db.AutoMigrate(&valueRow{}); err != nil {
		return nil, types.NewIndexQueryError("index migration failed", err)
	}
	return &SQLIndex{db: db, engine: engine}, nil
}

// Name implements ValueIndex.
func (s *SQLIndex) Name() string { return "sqlite" }

// Close releases the underlying database.
func (s *SQLIndex) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Index implements Indexer.
func (s *SQLIndex) Index(ctx context.Context, doc *types.Document) error {
	id := doc.ID().String()
	var rows []valueRow
	for _, n := range doc.Nodes() {
		if Indexable(n) {
			rows = append(rows, valueRow{DocID: id, NodePos: n.Position(), Value: n.StringValue()})
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", id).Delete(&valueRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
	if err != nil {
		return types.NewIndexQueryError(fmt.Sprintf("failed to index document %s", doc.URI()), err)
	}
	return nil
}

// Remove implements Indexer.
func (s *SQLIndex) Remove(ctx context.Context, id types.DocumentID) error {
	err := s.db.WithContext(ctx).Where("doc_id = ?", id.String()).Delete(&valueRow{}).Error
	if err != nil {
		return types.NewIndexQueryError(fmt.Sprintf("failed to remove document %s", id), err)
	}
	return nil
}

// Len returns the number of indexed values.
func (s *SQLIndex) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&valueRow{}).Count(&n).Error; err != nil {
		return 0, types.NewIndexQueryError("failed to count index rows", err)
	}
	return n, nil
}

// Match implements ValueIndex.
func (s *SQLIndex) Match(ctx context.Context, docs *types.DocumentSet, nodes *types.NodeSet,
	pattern string, kind MatchKind, flags regex.FlagSet, caseSensitive bool) (*types.NodeSet, error) {
	if kind != MatchRegexp {
		return nil, Unsupported(s.Name(), kind)
	}
	matcher, err := compile(s.engine, pattern, flags)
	if err != nil {
		return nil, err
	}
	out := types.NewNodeSet()
	if nodes.Len() == 0 || docs.Len() == 0 {
		return out, nil
	}

	ids := docs.IDs()
	prefix := literalPrefix(pattern, flags, caseSensitive)
	seen := make(map[string]bool)
	hits := make(map[string]map[int]struct{}, len(ids))
	for start := 0; start < len(ids); start += sqlBatchSize {
		end := min(start+sqlBatchSize, len(ids))
		query := s.db.WithContext(ctx).Model(&valueRow{}).
			Select("doc_id", "node_pos", "value").
			Where("doc_id IN ?", ids[start:end])
		if prefix != "" {
			query = query.Where("value GLOB ?", globPrefix(prefix))
		}
		var rows []valueRow
		if err := query.Find(&rows).Error; err != nil {
			return nil, types.NewIndexQueryError("failed to read index rows", err)
		}
		for _, r := range rows {
			ok, known := seen[r.Value]
			if !known {
				ok = matcher.MatchString(r.Value)
				seen[r.Value] = ok
			}
			if !ok {
				continue
			}
			if hits[r.DocID] == nil {
				hits[r.DocID] = make(map[int]struct{})
			}
			hits[r.DocID][r.NodePos] = struct{}{}
		}
	}

	for _, n := range nodes.Nodes() {
		if _, ok := hits[n.Document().ID().String()][n.Position()]; ok {
			out.Add(n)
		}
	}
	return out, nil
}
