package revisionable

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// EntityStore is what the resolver needs from the persistence layer.
type EntityStore interface {
	ResolveAlias(typeName string) (*Kind, error)
	LoadByID(ctx context.Context, kind *Kind, id string, includeArchived bool) (any, error)
	HasRelationAccessor(kind *Kind, name string) bool
	RelationTarget(kind *Kind, name string) (*Kind, error)
}

// GormStore implements EntityStore over GORM, reading relation metadata from the
// parsed model schema.
type GormStore struct {
	DB       *gorm.DB
	Registry *Registry
}

func NewGormStore(db *gorm.DB, registry *Registry) *GormStore {
	return &GormStore{DB: db, Registry: registry}
}

func (s *GormStore) ResolveAlias(typeName string) (*Kind, error) {
	return s.Registry.Resolve(typeName)
}

// TypeNames lists the stored type names of kind, aliases included.
func (s *GormStore) TypeNames(kind *Kind) []string {
	return s.Registry.Names(kind.Name)
}

func (s *GormStore) schemaOf(kind *Kind) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: s.DB}
	if err := stmt.Parse(kind.New()); err != nil {
		return nil, fmt.Errorf("parse schema of %s: %w", kind.Name, err)
	}
	return stmt.Schema, nil
}

// LoadByID fetches one instance by primary key. includeArchived also matches
// soft-deleted rows.
func (s *GormStore) LoadByID(ctx context.Context, kind *Kind, id string, includeArchived bool) (any, error) {
	sch, err := s.schemaOf(kind)
	if err != nil {
		return nil, err
	}
	pk := sch.PrioritizedPrimaryField
	if pk == nil {
		return nil, fmt.Errorf("%s has no primary key", kind.Name)
	}

	value, ok := primaryKeyValue(pk, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrInstanceNotFound, kind.Name, id)
	}

	tx := s.DB.WithContext(ctx)
	if includeArchived {
		tx = tx.Unscoped()
	}

	instance := kind.New()
	err = tx.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName},
		Value:  value,
	}).Take(instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s %q", ErrInstanceNotFound, kind.Name, id)
	}
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func primaryKeyValue(pk *schema.Field, id string) (any, bool) {
	id = strings.TrimSpace(id)
	switch pk.DataType {
	case schema.Int:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	case schema.Uint:
		n, err := strconv.ParseUint(id, 10, 64)
		return n, err == nil
	default:
		return id, id != ""
	}
}

func (s *GormStore) HasRelationAccessor(kind *Kind, name string) bool {
	sch, err := s.schemaOf(kind)
	if err != nil {
		return false
	}
	_, ok := sch.Relationships.Relations[name]
	return ok
}

// RelationTarget returns the kind on the other side of the named relation.
func (s *GormStore) RelationTarget(kind *Kind, name string) (*Kind, error) {
	sch, err := s.schemaOf(kind)
	if err != nil {
		return nil, err
	}
	rel, ok := sch.Relationships.Relations[name]
	if !ok || rel.FieldSchema == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrRelationNotFound, name, kind.Name)
	}
	return s.Registry.KindOf(rel.FieldSchema.ModelType)
}
