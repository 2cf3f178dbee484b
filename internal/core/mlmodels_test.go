package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/njnj03/homewatch/pkg/models"
)

// writeArtifact drops an empty model file under dir and returns its relative
// path.
func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("weights"), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return name
}

func TestCreateModelValidation(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	tests := []struct {
		name string
		req  *models.CreateModelRequest
	}{
		{name: "nil request", req: nil},
		{name: "missing name", req: &models.CreateModelRequest{FilePath: "m.tflite"}},
		{name: "missing file path", req: &models.CreateModelRequest{Name: "m"}},
		{
			name: "accuracy out of range",
			req: &models.CreateModelRequest{
				Name: "m", FilePath: "m.tflite",
				Accuracy: func() *float64 { v := 1.2; return &v }(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateModel(ctx, db, testLogger(), modelsDir, tt.req); !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("err = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestCreateModelRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	req := &models.CreateModelRequest{Name: "YAMNet Human", Version: "1.0", FilePath: "yamnet.tflite"}
	if _, err := CreateModel(ctx, db, testLogger(), modelsDir, req); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := CreateModel(ctx, db, testLogger(), modelsDir, req); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("err = %v, want ErrInvalidModel for duplicate name", err)
	}
}

func TestModelFileExistsAnnotation(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	present, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "present", FilePath: writeArtifact(t, modelsDir, "present.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	missing, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "missing", FilePath: "nowhere.tflite",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !present.FileExists {
		t.Error("existing artifact reported missing")
	}
	if missing.FileExists {
		t.Error("missing artifact reported present")
	}

	list, err := ListModels(ctx, db, testLogger(), modelsDir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, m := range list.Models {
		want := m.Name == "present"
		if m.FileExists != want {
			t.Errorf("model %s file_exists = %v, want %v", m.Name, m.FileExists, want)
		}
	}
}

func TestActivateModelIsExclusive(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	first, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "first", FilePath: writeArtifact(t, modelsDir, "first.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "second", FilePath: writeArtifact(t, modelsDir, "second.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := ActivateModel(ctx, db, testLogger(), modelsDir, first.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := ActivateModel(ctx, db, testLogger(), modelsDir, second.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	list, err := ListModels(ctx, db, testLogger(), modelsDir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var activeCount int
	for _, m := range list.Models {
		if m.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("active models = %d, want exactly 1", activeCount)
	}
	if list.ActiveModel == nil || list.ActiveModel.ID != second.ID {
		t.Fatalf("active model = %+v, want %d", list.ActiveModel, second.ID)
	}
}

func TestActivateModelMissingArtifactKeepsPreviousActive(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	good, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "good", FilePath: writeArtifact(t, modelsDir, "good.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	broken, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "broken", FilePath: "gone.tflite",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := ActivateModel(ctx, db, testLogger(), modelsDir, good.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := ActivateModel(ctx, db, testLogger(), modelsDir, broken.ID); !errors.Is(err, ErrActivationFailed) {
		t.Fatalf("err = %v, want ErrActivationFailed", err)
	}

	list, err := ListModels(ctx, db, testLogger(), modelsDir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.ActiveModel == nil || list.ActiveModel.ID != good.ID {
		t.Fatal("previously active model did not stay active after rejected activation")
	}
}

func TestDeleteModelGuards(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	only, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "only", FilePath: writeArtifact(t, modelsDir, "only.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := ActivateModel(ctx, db, testLogger(), modelsDir, only.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	// Deleting the last record fails even though it is also active; the
	// last-record guard is checked first.
	if err := DeleteModel(ctx, db, testLogger(), only.ID); !errors.Is(err, ErrLastModel) {
		t.Fatalf("err = %v, want ErrLastModel", err)
	}

	other, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "other", FilePath: writeArtifact(t, modelsDir, "other.tflite"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// With two records the active one is still protected.
	if err := DeleteModel(ctx, db, testLogger(), only.ID); !errors.Is(err, ErrActiveModel) {
		t.Fatalf("err = %v, want ErrActiveModel", err)
	}

	// Hand the active flag over, then deletion succeeds.
	if err := ActivateModel(ctx, db, testLogger(), modelsDir, other.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if err := DeleteModel(ctx, db, testLogger(), only.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := GetModel(ctx, db, testLogger(), modelsDir, only.ID); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound after delete", err)
	}
}

func TestUpdateModelPartial(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	modelsDir := t.TempDir()

	model, err := CreateModel(ctx, db, testLogger(), modelsDir, &models.CreateModelRequest{
		Name: "classifier", Version: "1.0", FilePath: "classifier.tflite",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	version := "1.1"
	updated, err := UpdateModel(ctx, db, testLogger(), modelsDir, model.ID, &models.UpdateModelRequest{
		Version: &version,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != "1.1" {
		t.Errorf("version = %q, want 1.1", updated.Version)
	}
	if updated.Name != "classifier" || updated.FilePath != "classifier.tflite" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateModelUnknown(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	version := "2.0"
	if _, err := UpdateModel(ctx, db, testLogger(), t.TempDir(), 9999, &models.UpdateModelRequest{Version: &version}); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
}
