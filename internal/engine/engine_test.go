package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veraticus/hr-attrition/internal/common"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/Veraticus/hr-attrition/internal/service"
	"github.com/Veraticus/hr-attrition/internal/storage"
	"github.com/Veraticus/hr-attrition/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *storage.SQLiteStorage
	artifacts *storage.FileArtifactStore
	engine    *Engine
}

func setupEngine(t *testing.T, records ...model.Record) *testEnv {
	t.Helper()
	return setupEngineWithConfig(t, DefaultConfig(), records...)
}

func setupEngineWithConfig(t *testing.T, config Config, records ...model.Record) *testEnv {
	t.Helper()

	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Collection: config.Collection,
		Records:    records,
	})
	store := db.Storage

	artifacts, err := storage.NewFileArtifactStore(filepath.Join(t.TempDir(), "model.json"))
	require.NoError(t, err)

	return &testEnv{
		store:     store,
		artifacts: artifacts,
		engine:    NewWithConfig(store, artifacts, config),
	}
}

func associate(name, status, department string, absences int) model.Record {
	return model.Record{
		model.FieldAssociateID:      "ID-" + name,
		model.FieldAssociateName:    name,
		model.FieldEmploymentStatus: status,
		model.FieldDepartment:       department,
		model.FieldAbsences:         absences,
	}
}

// balancedRecords returns n active and n terminated associates whose absence
// counts separate the classes.
func balancedRecords(n int) []model.Record {
	records := make([]model.Record, 0, 2*n)
	for i := 0; i < n; i++ {
		dept := "IT"
		if i%2 == 1 {
			dept = "HR"
		}
		records = append(records,
			associate(fmt.Sprintf("Active %d", i), "Active", dept, i+1),
			associate(fmt.Sprintf("Leaver %d", i), "Voluntarily Terminated", dept, i+10))
	}
	return records
}

func TestTrainPredict_TwoRecordScenario(t *testing.T) {
	env := setupEngine(t,
		model.Record{model.FieldAssociateName: "A", model.FieldEmploymentStatus: "Active", model.FieldDepartment: "IT"},
		model.Record{model.FieldAssociateName: "B", model.FieldEmploymentStatus: "Terminated", model.FieldDepartment: "HR"},
	)
	ctx := context.Background()

	records, err := env.engine.FetchRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0][model.FieldTerminated])
	assert.Equal(t, 1, records[1][model.FieldTerminated])

	result, err := env.engine.Train(ctx)
	require.NoError(t, err)
	require.Error(t, result.Warning)
	assert.True(t, common.IsDegraded(result.Warning))
	assert.Nil(t, result.Report)
	assert.True(t, result.Artifacts.Degraded)
	assert.Equal(t, []string{"department_IT", "employment_status_Terminated"}, result.Artifacts.Columns)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, result.ClassCounts)

	prediction, found, err := env.engine.Predict(ctx, "A")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.RiskLow, prediction.Label)
	assert.Equal(t, 0, prediction.Class)
	assert.Less(t, prediction.Probability, 50.0)
	assert.GreaterOrEqual(t, prediction.Probability, 0.0)
	assert.Equal(t, "A", prediction.Name)
	assert.Equal(t, result.Artifacts.ID, prediction.ModelID)
	assert.False(t, prediction.Details.Has(model.FieldTerminated))

	prediction, found, err = env.engine.Predict(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.RiskHigh, prediction.Label)
}

func TestTrain_SingleClassIsIdempotent(t *testing.T) {
	env := setupEngine(t,
		associate("A", "Active", "IT", 1),
		associate("B", "active ", "HR", 4),
		associate("C", "ACTIVE", "IT", 9),
	)
	ctx := context.Background()

	first, err := env.engine.Train(ctx)
	require.NoError(t, err)
	assert.True(t, common.IsDegraded(first.Warning))

	second, err := env.engine.Train(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Artifacts.Classifier, second.Artifacts.Classifier)
	assert.Equal(t, first.Artifacts.Scaler, second.Artifacts.Scaler)
	for _, c := range second.Artifacts.Classifier.Coef {
		assert.Zero(t, c)
	}

	for _, name := range []string{"A", "B", "C"} {
		prediction, found, err := env.engine.Predict(ctx, name)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, model.RiskLow, prediction.Label, name)
	}
}

func TestTrainPredict_RoundTrip(t *testing.T) {
	env := setupEngine(t, balancedRecords(6)...)
	ctx := context.Background()

	result, err := env.engine.Train(ctx)
	require.NoError(t, err)
	assert.NoError(t, result.Warning)
	require.NotNil(t, result.Report)

	// round(0.25 * 12) held-out rows with both classes present
	assert.Equal(t, 3, result.Report.Support)
	assert.Equal(t, []int{0, 1}, result.Report.Labels)
	assert.Equal(t, 12, result.Artifacts.Samples)
	assert.False(t, result.Artifacts.Degraded)

	for _, name := range []string{"Active 0", "Leaver 5", "ID-Active 3"} {
		prediction, found, err := env.engine.Predict(ctx, name)
		require.NoError(t, err, name)
		require.True(t, found, name)
		assert.GreaterOrEqual(t, prediction.Probability, 0.0)
		assert.LessOrEqual(t, prediction.Probability, 100.0)
	}

	leaver, _, err := env.engine.Predict(ctx, "Leaver 5")
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, leaver.Label)
	assert.Greater(t, leaver.Probability, 50.0)

	stayer, _, err := env.engine.Predict(ctx, "Active 0")
	require.NoError(t, err)
	assert.Equal(t, model.RiskLow, stayer.Label)
}

func TestTrain_Deterministic(t *testing.T) {
	records := balancedRecords(5)
	first := setupEngine(t, records...)
	second := setupEngine(t, records...)

	a, err := first.engine.Train(context.Background())
	require.NoError(t, err)
	b, err := second.engine.Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Artifacts.Columns, b.Artifacts.Columns)
	assert.Equal(t, a.Artifacts.Scaler, b.Artifacts.Scaler)
	assert.Equal(t, a.Artifacts.Classifier, b.Artifacts.Classifier)
	assert.Equal(t, a.Report.Confusion, b.Report.Confusion)
	assert.NotEqual(t, a.Artifacts.ID, b.Artifacts.ID)
}

func TestPredict_NotFound(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		env := setupEngine(t)
		prediction, found, err := env.engine.Predict(context.Background(), "nonexistent")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, prediction)
	})

	t.Run("trained model", func(t *testing.T) {
		env := setupEngine(t, balancedRecords(4)...)
		_, err := env.engine.Train(context.Background())
		require.NoError(t, err)

		prediction, found, err := env.engine.Predict(context.Background(), "nonexistent")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, prediction)
	})
}

func TestPredict_BeforeTraining(t *testing.T) {
	env := setupEngine(t, balancedRecords(2)...)

	_, _, err := env.engine.Predict(context.Background(), "Active 0")
	assert.ErrorIs(t, err, common.ErrArtifactsMissing)
}

func TestTrain_Errors(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		env := setupEngine(t)
		_, err := env.engine.Train(context.Background())
		assert.ErrorIs(t, err, common.ErrNoData)

		_, err = env.artifacts.Load(context.Background())
		assert.ErrorIs(t, err, common.ErrArtifactsMissing)
	})

	t.Run("no status field", func(t *testing.T) {
		env := setupEngine(t,
			model.Record{model.FieldAssociateName: "A", model.FieldDepartment: "IT"},
			model.Record{model.FieldAssociateName: "B", model.FieldDepartment: "HR"},
		)
		_, err := env.engine.Train(context.Background())
		assert.ErrorIs(t, err, common.ErrSchema)
	})

	t.Run("store unreachable", func(t *testing.T) {
		env := setupEngine(t, balancedRecords(2)...)
		require.NoError(t, env.store.Close())

		_, err := env.engine.Train(context.Background())
		assert.ErrorIs(t, err, common.ErrConnectivity)

		_, _, err = env.engine.Predict(context.Background(), "Active 0")
		assert.ErrorIs(t, err, common.ErrConnectivity)
	})
}

func TestTrain_MissingStatusCountsAsLeaver(t *testing.T) {
	records := balancedRecords(3)
	records = append(records, model.Record{
		model.FieldAssociateName: "No Status",
		model.FieldDepartment:    "IT",
		model.FieldAbsences:      20,
	})
	env := setupEngine(t, records...)

	result, err := env.engine.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 4}, result.ClassCounts)
}

func TestPredict_SchemaDrift(t *testing.T) {
	ctx := context.Background()
	shiftWorkers := []model.Record{
		{model.FieldAssociateName: "Day", model.FieldEmploymentStatus: "Active", model.FieldDepartment: "IT", "shift": "day"},
		{model.FieldAssociateName: "Night", model.FieldEmploymentStatus: "Active", model.FieldDepartment: "HR", "shift": "night"},
	}

	t.Run("beyond tolerance", func(t *testing.T) {
		env := setupEngine(t, balancedRecords(4)...)
		_, err := env.engine.Train(ctx)
		require.NoError(t, err)

		_, err = env.store.SaveRecords(ctx, "associates", shiftWorkers)
		require.NoError(t, err)

		_, _, err = env.engine.Predict(ctx, "Active 1")
		assert.ErrorIs(t, err, common.ErrSchemaDrift)
	})

	t.Run("within tolerance", func(t *testing.T) {
		config := DefaultConfig()
		config.MaxDrift = 1
		env := setupEngineWithConfig(t, config, balancedRecords(4)...)
		_, err := env.engine.Train(ctx)
		require.NoError(t, err)

		_, err = env.store.SaveRecords(ctx, "associates", shiftWorkers)
		require.NoError(t, err)

		prediction, found, err := env.engine.Predict(ctx, "Night")
		require.NoError(t, err)
		require.True(t, found)
		assert.GreaterOrEqual(t, prediction.Probability, 0.0)
	})
}

func TestTrain_ExcludedFields(t *testing.T) {
	config := DefaultConfig()
	config.Exclude = []string{model.FieldDepartment}
	env := setupEngineWithConfig(t, config, balancedRecords(3)...)

	result, err := env.engine.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"absences", "employment_status_Voluntarily Terminated"}, result.Artifacts.Columns)
}

func TestTrain_RecordsRun(t *testing.T) {
	env := setupEngine(t, balancedRecords(4)...)
	ctx := context.Background()

	result, err := env.engine.Train(ctx)
	require.NoError(t, err)

	runs, err := env.store.ListTrainingRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.Artifacts.ID, runs[0].ID)
	assert.Equal(t, 8, runs[0].Samples)
	assert.Equal(t, len(result.Artifacts.Columns), runs[0].Features)
	require.NotNil(t, runs[0].Accuracy)
	assert.InDelta(t, result.Report.Accuracy, *runs[0].Accuracy, 1e-12)
}

type failingHistory struct {
	service.RecordStore
}

func (f failingHistory) SaveTrainingRun(context.Context, *model.TrainingRun) error {
	return errors.New("history unavailable")
}

func TestTrain_HistoryFailureIsNotFatal(t *testing.T) {
	env := setupEngine(t, balancedRecords(3)...)
	eng := New(failingHistory{RecordStore: env.store}, env.artifacts)

	result, err := eng.Train(context.Background())
	require.NoError(t, err)

	saved, err := env.artifacts.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Artifacts.ID, saved.ID)
}

func TestTrain_ConcurrentCallsAreSerialized(t *testing.T) {
	env := setupEngine(t, balancedRecords(4)...)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.engine.Train(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	saved, err := env.artifacts.Load(ctx)
	require.NoError(t, err)
	assert.NoError(t, saved.Validate())

	runs, err := env.store.ListTrainingRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}

func TestTrainAndPredict(t *testing.T) {
	env := setupEngine(t, balancedRecords(3)...)

	prediction, found, result, err := env.engine.TrainAndPredict(context.Background(), "Leaver 2")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, result)
	assert.Equal(t, result.Artifacts.ID, prediction.ModelID)
}

func TestLookup(t *testing.T) {
	records := []model.Record{
		{model.FieldAssociateID: "1", model.FieldAssociateName: "jane doe"},
		{model.FieldAssociateID: "2", model.FieldAssociateName: "Jane Doe"},
		{model.FieldAssociateID: "Jane", model.FieldAssociateName: "Someone"},
		{model.FieldAssociateID: 1004.0, model.FieldAssociateName: "Numeric"},
	}

	tests := []struct {
		key  string
		want int
	}{
		{key: "Jane Doe", want: 1},
		{key: "JANE DOE", want: 0},
		{key: "Jane", want: 2},
		{key: "1004", want: 3},
		{key: " 2 ", want: 1},
		{key: "", want: -1},
		{key: "missing", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, lookup(records, tt.key))
		})
	}
}
