package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

var (
	// ErrModelNotFound is returned when a model identifier does not resolve.
	ErrModelNotFound = errors.New("model not found")
	// ErrInvalidModel indicates the request payload failed validation. It is
	// raised before anything is written.
	ErrInvalidModel = errors.New("invalid model")
	// ErrLastModel guards deletion of the only remaining registry record.
	ErrLastModel = errors.New("cannot delete the last remaining model")
	// ErrActiveModel guards deletion of the currently active record; activate
	// another model first.
	ErrActiveModel = errors.New("cannot delete the active model")
	// ErrActivationFailed indicates activation was rejected; the previously
	// active model remains active.
	ErrActivationFailed = errors.New("model activation failed")
)

func validateModelFields(name, filePath string, accuracy *float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: model_name is required", ErrInvalidModel)
	}
	if strings.TrimSpace(filePath) == "" {
		return fmt.Errorf("%w: file_path is required", ErrInvalidModel)
	}
	if accuracy != nil && (*accuracy < 0 || *accuracy > 1) {
		return fmt.Errorf("%w: accuracy must be within [0,1]", ErrInvalidModel)
	}
	return nil
}

// artifactExists reports whether the model artifact resolves under modelsDir.
func artifactExists(modelsDir, filePath string) bool {
	if filePath == "" {
		return false
	}
	path := filePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(modelsDir, path)
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func annotateFileExists(modelsDir string, records ...*models.Model) {
	for _, m := range records {
		if m != nil {
			m.FileExists = artifactExists(modelsDir, m.FilePath)
		}
	}
}

// ListModels returns the full registry newest-first together with the
// currently active record, each annotated with artifact existence.
func ListModels(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelsDir string) (*models.ModelList, error) {
	records, err := db.ListModels(ctx)
	if err != nil {
		log.Error("failed to list models", "error", err)
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	if records == nil {
		records = []*models.Model{}
	}
	annotateFileExists(modelsDir, records...)

	list := &models.ModelList{Models: records}
	for _, m := range records {
		if m.IsActive {
			list.ActiveModel = m
			break
		}
	}
	return list, nil
}

// GetModel retrieves one registry record.
func GetModel(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelsDir string, modelID models.ModelID) (*models.Model, error) {
	model, err := db.GetModel(ctx, modelID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		log.Error("failed to get model", "model_id", modelID, "error", err)
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	annotateFileExists(modelsDir, model)
	return model, nil
}

// CreateModel registers a new model record. New records are inactive until
// explicitly activated.
func CreateModel(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelsDir string, req *models.CreateModelRequest) (*models.Model, error) {
	if req == nil {
		return nil, ErrInvalidModel
	}
	if err := validateModelFields(req.Name, req.FilePath, req.Accuracy); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if _, err := db.GetModelByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: model with name %q already exists", ErrInvalidModel, name)
	} else if !errors.Is(err, sqlite.ErrNotFound) {
		log.Error("failed to check model name", "name", name, "error", err)
		return nil, fmt.Errorf("failed to check model name: %w", err)
	}

	model := &models.Model{
		Name:        name,
		Version:     strings.TrimSpace(req.Version),
		FilePath:    strings.TrimSpace(req.FilePath),
		Description: strings.TrimSpace(req.Description),
		ModelType:   strings.TrimSpace(req.ModelType),
		Accuracy:    req.Accuracy,
		IsActive:    false,
	}
	if err := db.InsertModel(ctx, model); err != nil {
		log.Error("failed to create model", "name", name, "error", err)
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	annotateFileExists(modelsDir, model)
	log.Info("model registered", "model_id", model.ID, "name", model.Name)
	return model, nil
}

// UpdateModel applies the non-nil request fields to an existing record.
func UpdateModel(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelsDir string, modelID models.ModelID, req *models.UpdateModelRequest) (*models.Model, error) {
	if req == nil {
		return nil, ErrInvalidModel
	}
	model, err := db.GetModel(ctx, modelID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		log.Error("failed to load model for update", "model_id", modelID, "error", err)
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != model.Name {
			if _, err := db.GetModelByName(ctx, name); err == nil {
				return nil, fmt.Errorf("%w: model with name %q already exists", ErrInvalidModel, name)
			} else if !errors.Is(err, sqlite.ErrNotFound) {
				return nil, fmt.Errorf("failed to check model name: %w", err)
			}
		}
		model.Name = name
	}
	if req.Version != nil {
		model.Version = strings.TrimSpace(*req.Version)
	}
	if req.FilePath != nil {
		model.FilePath = strings.TrimSpace(*req.FilePath)
	}
	if req.Description != nil {
		model.Description = strings.TrimSpace(*req.Description)
	}
	if req.ModelType != nil {
		model.ModelType = strings.TrimSpace(*req.ModelType)
	}
	if req.Accuracy != nil {
		model.Accuracy = req.Accuracy
	}
	if err := validateModelFields(model.Name, model.FilePath, model.Accuracy); err != nil {
		return nil, err
	}

	if err := db.UpdateModel(ctx, model); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrModelNotFound
		}
		log.Error("failed to update model", "model_id", modelID, "error", err)
		return nil, fmt.Errorf("failed to update model: %w", err)
	}
	annotateFileExists(modelsDir, model)
	log.Info("model updated", "model_id", model.ID, "name", model.Name)
	return model, nil
}

// DeleteModel removes a registry record. The last remaining record and the
// currently active record are protected.
func DeleteModel(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelID models.ModelID) error {
	model, err := db.GetModel(ctx, modelID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrModelNotFound
		}
		log.Error("failed to load model for deletion", "model_id", modelID, "error", err)
		return fmt.Errorf("failed to load model: %w", err)
	}

	total, err := db.CountModels(ctx)
	if err != nil {
		log.Error("failed to count models", "error", err)
		return fmt.Errorf("failed to count models: %w", err)
	}
	if total <= 1 {
		return ErrLastModel
	}
	if model.IsActive {
		return ErrActiveModel
	}

	if err := db.DeleteModel(ctx, modelID); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrModelNotFound
		}
		log.Error("failed to delete model", "model_id", modelID, "error", err)
		return fmt.Errorf("failed to delete model: %w", err)
	}
	log.Info("model deleted", "model_id", modelID, "name", model.Name)
	return nil
}

// ActivateModel makes the given model the single active record. Activation is
// rejected when the artifact is missing; the previously active model then
// stays active and the rejection reason is reported to the caller.
func ActivateModel(ctx context.Context, db *sqlite.DB, log *slog.Logger, modelsDir string, modelID models.ModelID) error {
	model, err := db.GetModel(ctx, modelID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrModelNotFound
		}
		log.Error("failed to load model for activation", "model_id", modelID, "error", err)
		return fmt.Errorf("failed to load model: %w", err)
	}

	if !artifactExists(modelsDir, model.FilePath) {
		return fmt.Errorf("%w: artifact %q not found", ErrActivationFailed, model.FilePath)
	}

	if err := db.ActivateModel(ctx, modelID); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return ErrModelNotFound
		}
		log.Error("failed to activate model", "model_id", modelID, "error", err)
		return fmt.Errorf("%w: %s", ErrActivationFailed, err)
	}
	log.Info("model activated", "model_id", modelID, "name", model.Name)
	return nil
}
