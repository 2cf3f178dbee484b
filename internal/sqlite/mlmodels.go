package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/njnj03/homewatch/pkg/models"
)

const (
	insertModelQuery = `INSERT INTO ml_models (
    name,
    version,
    file_path,
    description,
    model_type,
    accuracy,
    is_active
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING model_id, created_at, updated_at`

	selectModelBase = `SELECT
    model_id,
    name,
    version,
    file_path,
    description,
    model_type,
    accuracy,
    is_active,
    created_at,
    updated_at
FROM ml_models`

	updateModelQuery = `UPDATE ml_models
SET name = ?,
    version = ?,
    file_path = ?,
    description = ?,
    model_type = ?,
    accuracy = ?,
    updated_at = datetime('now')
WHERE model_id = ?`
)

// InsertModel registers a new model record. New records are never active.
func (db *DB) InsertModel(ctx context.Context, model *models.Model) error {
	if model == nil {
		return fmt.Errorf("model payload is required")
	}
	var accuracy any
	if model.Accuracy != nil {
		accuracy = *model.Accuracy
	}
	row := db.writeDB.QueryRowContext(ctx, insertModelQuery,
		model.Name,
		nullableString(model.Version),
		model.FilePath,
		nullableString(model.Description),
		nullableString(model.ModelType),
		accuracy,
		boolToInt(model.IsActive),
	)

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}
	model.ID = models.ModelID(id)
	model.CreatedAt = createdAt
	model.UpdatedAt = updatedAt
	return nil
}

// UpdateModel persists changes to a model record's metadata. The active flag
// is only changed through ActivateModel.
func (db *DB) UpdateModel(ctx context.Context, model *models.Model) error {
	if model == nil {
		return fmt.Errorf("model payload is required")
	}
	var accuracy any
	if model.Accuracy != nil {
		accuracy = *model.Accuracy
	}
	res, err := db.writeDB.ExecContext(ctx, updateModelQuery,
		model.Name,
		nullableString(model.Version),
		model.FilePath,
		nullableString(model.Description),
		nullableString(model.ModelType),
		accuracy,
		int64(model.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update model: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetModel retrieves a model by its identifier.
func (db *DB) GetModel(ctx context.Context, modelID models.ModelID) (*models.Model, error) {
	row := db.readDB.QueryRowContext(ctx, selectModelBase+" WHERE model_id = ?", int64(modelID))
	model, err := scanModel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return model, nil
}

// GetModelByName retrieves a model by its unique name.
func (db *DB) GetModelByName(ctx context.Context, name string) (*models.Model, error) {
	row := db.readDB.QueryRowContext(ctx, selectModelBase+" WHERE name = ?", name)
	model, err := scanModel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return model, nil
}

// ListModels returns every registered model, newest first.
func (db *DB) ListModels(ctx context.Context) ([]*models.Model, error) {
	rows, err := db.readDB.QueryContext(ctx, selectModelBase+" ORDER BY created_at DESC, model_id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var result []*models.Model
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}
	return result, nil
}

// CountModels returns the size of the registry.
func (db *DB) CountModels(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM ml_models").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count models: %w", err)
	}
	return n, nil
}

// DeleteModel removes a model record.
func (db *DB) DeleteModel(ctx context.Context, modelID models.ModelID) error {
	res, err := db.writeDB.ExecContext(ctx, "DELETE FROM ml_models WHERE model_id = ?", int64(modelID))
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivateModel flips the exclusive active flag to the given model inside one
// transaction: either the target becomes the sole active record, or nothing
// changes.
func (db *DB) ActivateModel(ctx context.Context, modelID models.ModelID) error {
	tx, err := db.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin activation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE ml_models SET is_active = 0, updated_at = datetime('now') WHERE is_active = 1"); err != nil {
		return fmt.Errorf("failed to deactivate current model: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE ml_models SET is_active = 1, updated_at = datetime('now') WHERE model_id = ?", int64(modelID))
	if err != nil {
		return fmt.Errorf("failed to activate model: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

func scanModel(scanner interface{ Scan(dest ...any) error }) (*models.Model, error) {
	var (
		id          int64
		name        string
		version     sql.NullString
		filePath    string
		description sql.NullString
		modelType   sql.NullString
		accuracy    sql.NullFloat64
		isActive    int64
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := scanner.Scan(&id, &name, &version, &filePath, &description, &modelType, &accuracy, &isActive, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan model: %w", err)
	}

	model := &models.Model{
		ID:          models.ModelID(id),
		Name:        name,
		Version:     version.String,
		FilePath:    filePath,
		Description: description.String,
		ModelType:   modelType.String,
		IsActive:    isActive == 1,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if accuracy.Valid {
		model.Accuracy = &accuracy.Float64
	}
	return model, nil
}
