package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// GormTable binds a logical collection to a table and the row model that
// defines its columns.
type GormTable struct {
	Name  string
	Model any
}

type gormTable struct {
	name      string
	modelType reflect.Type
	columns   map[string]struct{}
}

// GormStore serves collections from SQL tables. Rows are returned as
// documents with the primary key moved to "$id".
type GormStore struct {
	db      *gorm.DB
	backend string
	tables  map[string]gormTable
	observe CallObserver
}

func NewGormStore(db *gorm.DB, backend string, tables map[string]GormTable) (*GormStore, error) {
	cache := &sync.Map{}
	s := &GormStore{db: db, backend: backend, tables: make(map[string]gormTable, len(tables))}
	for collection, t := range tables {
		sch, err := schema.Parse(t.Model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse model for %s: %w", collection, err)
		}
		cols := make(map[string]struct{}, len(sch.DBNames))
		for _, name := range sch.DBNames {
			cols[name] = struct{}{}
		}
		s.tables[collection] = gormTable{
			name:      t.Name,
			modelType: reflect.TypeOf(t.Model).Elem(),
			columns:   cols,
		}
	}
	return s, nil
}

func (s *GormStore) WithObserver(fn CallObserver) *GormStore {
	s.observe = fn
	return s
}

func (s *GormStore) ListDocuments(ctx context.Context, collection string, queries ...Query) (list *DocumentList, err error) {
	defer s.track("list", collection, time.Now(), &err)

	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	limit, offset, err := pagination(queries)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = DefaultListLimit
	}

	base := s.db.WithContext(ctx).Table(t.name)
	var order []clause.OrderByColumn
	for _, q := range queries {
		switch {
		case q.isFilter():
			col, err := t.column(q.Attribute)
			if err != nil {
				return nil, err
			}
			base = base.Where(filterExpr(q, col))
		case q.isOrder():
			col, err := t.column(q.Attribute)
			if err != nil {
				return nil, err
			}
			order = append(order, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Method == MethodOrderDesc})
		}
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", t.name, err)
	}

	// offsets are only stable over a total order
	order = append(order, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	page := base
	for _, o := range order {
		page = page.Order(o)
	}

	var rows []map[string]any
	if err := page.Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, rowToDocument(row))
	}
	return &DocumentList{Total: int(total), Documents: docs}, nil
}

func (s *GormStore) CreateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer s.track("create", collection, time.Now(), &err)

	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	row, err := t.row(data)
	if err != nil {
		return nil, err
	}
	if documentID == "" {
		documentID = uuid.NewString()
	}
	row["id"] = documentID

	if err := s.db.WithContext(ctx).Table(t.name).Create(row).Error; err != nil {
		return nil, fmt.Errorf("insert into %s: %w", t.name, err)
	}
	return s.get(ctx, t, documentID)
}

func (s *GormStore) UpdateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer s.track("update", collection, time.Now(), &err)

	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	row, err := t.row(data)
	if err != nil {
		return nil, err
	}

	if len(row) > 0 {
		res := s.db.WithContext(ctx).Table(t.name).Where(idEquals(documentID)).Updates(row)
		if res.Error != nil {
			return nil, fmt.Errorf("update %s/%s: %w", t.name, documentID, res.Error)
		}
	}
	return s.get(ctx, t, documentID)
}

func (s *GormStore) DeleteDocument(ctx context.Context, collection, documentID string) (err error) {
	defer s.track("delete", collection, time.Now(), &err)

	t, err := s.table(collection)
	if err != nil {
		return err
	}
	model := reflect.New(t.modelType).Interface()
	res := s.db.WithContext(ctx).Table(t.name).Where(idEquals(documentID)).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", t.name, documentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, documentID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) get(ctx context.Context, t gormTable, id string) (Document, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(t.name).Where(idEquals(id)).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", t.name, id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", t.name, id, ErrNotFound)
	}
	return rowToDocument(rows[0]), nil
}

func (s *GormStore) table(collection string) (gormTable, error) {
	t, ok := s.tables[collection]
	if !ok {
		return gormTable{}, fmt.Errorf("%w: %s", ErrUnknown, collection)
	}
	return t, nil
}

func (s *GormStore) track(op, collection string, start time.Time, err *error) {
	if s.observe != nil {
		s.observe(s.backend, op, collection, time.Since(start), *err)
	}
}

func (t gormTable) column(attribute string) (string, error) {
	if attribute == IDField {
		return "id", nil
	}
	if _, ok := t.columns[attribute]; !ok {
		return "", fmt.Errorf("%w: unknown attribute %q on %s", ErrInvalidQuery, attribute, t.name)
	}
	return attribute, nil
}

// row keeps the known columns of data. The id is never written from data.
func (t gormTable) row(data map[string]any) (map[string]any, error) {
	row := make(map[string]any, len(data))
	for k, v := range data {
		if k == IDField || k == "id" {
			continue
		}
		if _, ok := t.columns[k]; !ok {
			return nil, fmt.Errorf("%w: unknown attribute %q on %s", ErrInvalidQuery, k, t.name)
		}
		row[k] = v
	}
	return row, nil
}

func filterExpr(q Query, col string) clause.Expression {
	column := clause.Column{Name: col}
	switch q.Method {
	case MethodIsNull:
		return clause.Eq{Column: column, Value: nil}
	case MethodIsNotNull:
		return clause.Neq{Column: column, Value: nil}
	default:
		return clause.IN{Column: column, Values: q.Values}
	}
}

func idEquals(id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "id"}, Value: id}
}

func rowToDocument(row map[string]any) Document {
	doc := make(Document, len(row))
	for k, v := range row {
		if k == "id" {
			doc[IDField] = fmt.Sprint(v)
			continue
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		doc[k] = v
	}
	return doc
}
