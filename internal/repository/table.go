package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// TableSpec описывает таблицу для универсального репозитория.
type TableSpec struct {
	Name string
	// Columns: колонки, которые пишет приложение (без id, created_at, updated_at).
	Columns []string
	// OwnerColumn: колонка владельца, по которой фильтруются чтение и запись.
	OwnerColumn string
	// ConflictColumn: уникальная колонка для upsert; пусто, если upsert не поддерживается.
	ConflictColumn string
	// Timestamps: в таблице есть updated_at.
	Timestamps bool
	// Sortable: колонки, по которым разрешён ORDER BY.
	Sortable []string
}

// Table реализует store.Table поверх PostgreSQL.
type Table[T any] struct {
	db     *sqlx.DB
	spec   TableSpec
	record func(*T) *models.Record
}

// NewTable создаёт репозиторий таблицы.
func NewTable[T any](db *sqlx.DB, spec TableSpec, record func(*T) *models.Record) *Table[T] {
	return &Table[T]{db: db, spec: spec, record: record}
}

var _ store.Table[models.Skill] = (*Table[models.Skill])(nil)

// Query возвращает строки таблицы с фильтром по владельцу и сортировкой.
func (t *Table[T]) Query(ctx context.Context, filter store.Filter, order store.Order) ([]T, error) {
	query, args, err := t.spec.selectQuery(filter, order)
	if err != nil {
		return nil, err
	}

	rows := []T{}
	if err := t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s repository: query %w", t.spec.Name, err)
	}

	return rows, nil
}

// Insert добавляет строку и заполняет её значениями из RETURNING.
func (t *Table[T]) Insert(ctx context.Context, row *T) error {
	if err := t.namedReturning(ctx, t.spec.insertQuery(), row); err != nil {
		return fmt.Errorf("%s repository: insert %w", t.spec.Name, err)
	}
	return nil
}

// Update обновляет строку по идентификатору. Строка чужого владельца не обновляется.
func (t *Table[T]) Update(ctx context.Context, id uuid.UUID, filter store.Filter, row *T) error {
	rec := t.record(row)
	rec.ID = id
	if filter.OwnerID != uuid.Nil {
		rec.UserID = filter.OwnerID
	}

	err := t.namedReturning(ctx, t.spec.updateQuery(filter.OwnerID != uuid.Nil), row)
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s repository: update %w", t.spec.Name, err)
	}
	return nil
}

// Upsert создаёт строку или обновляет существующую по ConflictColumn.
func (t *Table[T]) Upsert(ctx context.Context, row *T) error {
	if t.spec.ConflictColumn == "" {
		return fmt.Errorf("%s repository: upsert не поддерживается", t.spec.Name)
	}
	if err := t.namedReturning(ctx, t.spec.upsertQuery(), row); err != nil {
		return fmt.Errorf("%s repository: upsert %w", t.spec.Name, err)
	}
	return nil
}

// Delete удаляет строку по идентификатору.
func (t *Table[T]) Delete(ctx context.Context, id uuid.UUID, filter store.Filter) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.spec.Name)
	args := []interface{}{id}
	if filter.OwnerID != uuid.Nil {
		query += fmt.Sprintf(` AND %s = $2`, t.spec.OwnerColumn)
		args = append(args, filter.OwnerID)
	}

	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s repository: delete %w", t.spec.Name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s repository: delete rows affected %w", t.spec.Name, err)
	}

	if rowsAffected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// namedReturning выполняет именованный запрос с RETURNING * и сканирует результат в row.
func (t *Table[T]) namedReturning(ctx context.Context, query string, row *T) error {
	rows, err := t.db.NamedQueryContext(ctx, query, row)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return store.ErrNotFound
	}

	return rows.StructScan(row)
}

func (s TableSpec) selectQuery(filter store.Filter, order store.Order) (string, []interface{}, error) {
	var b strings.Builder
	var args []interface{}

	b.WriteString("SELECT * FROM ")
	b.WriteString(s.Name)

	if filter.OwnerID != uuid.Nil {
		args = append(args, filter.OwnerID)
		fmt.Fprintf(&b, " WHERE %s = $%d", s.OwnerColumn, len(args))
	}

	if order.Column != "" {
		if !s.sortable(order.Column) {
			return "", nil, fmt.Errorf("%s repository: сортировка по %q не поддерживается", s.Name, order.Column)
		}
		direction := "DESC"
		if order.Ascending {
			direction = "ASC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", order.Column, direction)
	}

	return b.String(), args, nil
}

func (s TableSpec) insertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s) RETURNING *",
		s.Name,
		strings.Join(s.Columns, ", "),
		strings.Join(s.Columns, ", :"),
	)
}

func (s TableSpec) updateQuery(byOwner bool) string {
	sets := make([]string, 0, len(s.Columns)+1)
	for _, column := range s.Columns {
		if column == s.OwnerColumn {
			continue
		}
		sets = append(sets, column+" = :"+column)
	}
	if s.Timestamps {
		sets = append(sets, "updated_at = NOW()")
	}

	where := "id = :id"
	if byOwner {
		where += " AND " + s.OwnerColumn + " = :" + s.OwnerColumn
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *", s.Name, strings.Join(sets, ", "), where)
}

func (s TableSpec) upsertQuery() string {
	sets := make([]string, 0, len(s.Columns)+1)
	for _, column := range s.Columns {
		if column == s.ConflictColumn {
			continue
		}
		sets = append(sets, column+" = EXCLUDED."+column)
	}
	if s.Timestamps {
		sets = append(sets, "updated_at = NOW()")
	}

	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		strings.TrimSuffix(s.insertQuery(), " RETURNING *"),
		s.ConflictColumn,
		strings.Join(sets, ", "),
	)
}

func (s TableSpec) sortable(column string) bool {
	for _, allowed := range s.Sortable {
		if allowed == column {
			return true
		}
	}
	return false
}
