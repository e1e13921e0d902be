package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
	"github.com/Veraticus/coffee-diary/internal/service"
)

// forEachBackend runs fn against a freshly migrated store of every backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, store service.DocumentStore)) {
	t.Helper()
	for _, backend := range []string{BackendSQLite, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "diary.db")
			store, err := Open(context.Background(), backend, path)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			fn(t, store)
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func createTestTransactions() []model.Transaction {
	txns := []model.Transaction{
		{Date: "2024-03-02", Time: "09:15:00", Merchant: "Manner Coffee", Description: "拿铁", Amount: 20, Source: model.SourceAlipay, Type: model.TypeOutgoing},
		{Date: "2024-03-01", Time: "18:00:00", Merchant: "白鲸咖啡", Description: "咖啡豆 200g", Amount: 88, Source: model.SourceWeChatPay, Type: model.TypeOutgoing},
		{Date: "2024-03-01", Time: "08:30:00", Merchant: "星巴克", Description: "美式", Amount: 30.5, Source: model.SourceAlipay, Type: model.TypeOutgoing},
	}
	for i := range txns {
		txns[i].ID = txns[i].GenerateHash()
	}
	return txns
}

func createTestDocument() *model.Document {
	txns := createTestTransactions()
	coffee := []model.CoffeeTransaction{
		{Transaction: txns[2], MatchedKeywords: []string{"星巴克"}, Confidence: 0.8, IsCoffee: true},
		{Transaction: txns[1], MatchedKeywords: []string{"白鲸咖啡"}, Confidence: 1, IsCoffee: true, IsBeans: true},
	}
	return &model.Document{
		ProcessedAt:        time.Date(2024, 3, 5, 10, 0, 0, 123, time.UTC),
		CoffeeTransactions: coffee,
		CoffeeByDate:       model.CoffeeDataByDate{"2024-03-01": coffee},
		Statistics: model.CoffeeStatistics{
			PurchaseFrequency: map[string]int{"2024-03": 2},
			MostFrequentShop:  "星巴克",
			TotalPurchases:    2,
			TotalSpending:     118.5,
			AveragePerMonth:   2,
			AveragePerWeek:    2 / 4.33,
		},
	}
}

func TestStorage_Document(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.DocumentStore) {
		ctx := context.Background()

		_, err := store.LoadDocument(ctx)
		require.ErrorIs(t, err, common.ErrNotFound)

		doc := createTestDocument()
		require.NoError(t, store.SaveDocument(ctx, doc))

		loaded, err := store.LoadDocument(ctx)
		require.NoError(t, err)
		assert.True(t, doc.ProcessedAt.Equal(loaded.ProcessedAt))
		assert.Equal(t, doc.CoffeeTransactions, loaded.CoffeeTransactions)
		assert.Equal(t, doc.CoffeeByDate, loaded.CoffeeByDate)
		assert.Equal(t, doc.Statistics, loaded.Statistics)

		// A second save replaces the first.
		doc.Statistics.TotalPurchases = 7
		require.NoError(t, store.SaveDocument(ctx, doc))
		loaded, err = store.LoadDocument(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Statistics.TotalPurchases)
	})
}

func TestStorage_ClearDocumentKeepsOverrides(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.DocumentStore) {
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, createTestDocument()))
		require.NoError(t, store.SaveOverride(ctx, &model.Override{TransactionID: "abc", IsCoffee: boolPtr(false)}))
		require.NoError(t, store.SaveTransactions(ctx, createTestTransactions()))

		require.NoError(t, store.ClearDocument(ctx))

		_, err := store.LoadDocument(ctx)
		require.ErrorIs(t, err, common.ErrNotFound)

		overrides, err := store.GetOverrides(ctx)
		require.NoError(t, err)
		assert.Len(t, overrides, 1)

		txns, err := store.GetTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})
}

func TestStorage_Overrides(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.DocumentStore) {
		ctx := context.Background()
		confirmed := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

		_, err := store.GetOverride(ctx, "missing")
		require.ErrorIs(t, err, common.ErrNotFound)

		require.NoError(t, store.SaveOverride(ctx, &model.Override{
			TransactionID: "t1",
			IsCoffee:      boolPtr(true),
			Note:          "oat latte",
			ConfirmedAt:   confirmed,
		}))
		require.NoError(t, store.SaveOverride(ctx, &model.Override{TransactionID: "t2", IsBeans: boolPtr(true)}))

		got, err := store.GetOverride(ctx, "t1")
		require.NoError(t, err)
		require.NotNil(t, got.IsCoffee)
		assert.True(t, *got.IsCoffee)
		assert.Nil(t, got.IsBeans)
		assert.Equal(t, "oat latte", got.Note)
		assert.True(t, confirmed.Equal(got.ConfirmedAt))

		// Unset ConfirmedAt is stamped on save.
		got, err = store.GetOverride(ctx, "t2")
		require.NoError(t, err)
		assert.False(t, got.ConfirmedAt.IsZero())
		assert.Nil(t, got.IsCoffee)

		// Save replaces.
		require.NoError(t, store.SaveOverride(ctx, &model.Override{TransactionID: "t1", IsCoffee: boolPtr(false)}))
		got, err = store.GetOverride(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, *got.IsCoffee)
		assert.Empty(t, got.Note)

		all, err := store.GetOverrides(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Contains(t, all, "t1")
		assert.Contains(t, all, "t2")

		require.NoError(t, store.DeleteOverride(ctx, "t1"))
		require.ErrorIs(t, store.DeleteOverride(ctx, "t1"), common.ErrNotFound)
		_, err = store.GetOverride(ctx, "t1")
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestStorage_Transactions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.DocumentStore) {
		ctx := context.Background()
		txns := createTestTransactions()

		require.NoError(t, store.SaveTransactions(ctx, txns))
		// Saving again is an upsert.
		require.NoError(t, store.SaveTransactions(ctx, txns))
		require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{}))

		got, err := store.GetTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "星巴克", got[0].Merchant)
		assert.Equal(t, "白鲸咖啡", got[1].Merchant)
		assert.Equal(t, "Manner Coffee", got[2].Merchant)
		assert.Equal(t, txns[0], got[2])
	})
}

func TestStorage_Validation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store service.DocumentStore) {
		ctx := context.Background()

		tests := []struct {
			run     func() error
			wantErr error
			name    string
		}{
			{
				name:    "nil document",
				run:     func() error { return store.SaveDocument(ctx, nil) },
				wantErr: ErrNilParameter,
			},
			{
				name:    "nil transactions",
				run:     func() error { return store.SaveTransactions(ctx, nil) },
				wantErr: ErrNilParameter,
			},
			{
				name: "transaction without ID",
				run: func() error {
					return store.SaveTransactions(ctx, []model.Transaction{{Date: "2024-01-01"}})
				},
				wantErr: ErrInvalidTransaction,
			},
			{
				name: "transaction without date",
				run: func() error {
					return store.SaveTransactions(ctx, []model.Transaction{{ID: "x"}})
				},
				wantErr: ErrInvalidTransaction,
			},
			{
				name: "transaction with malformed date",
				run: func() error {
					return store.SaveTransactions(ctx, []model.Transaction{{ID: "x", Date: "2024/01/01"}})
				},
				wantErr: ErrInvalidTransaction,
			},
			{
				name: "transaction with malformed time",
				run: func() error {
					return store.SaveTransactions(ctx, []model.Transaction{{ID: "x", Date: "2024-01-01", Time: "9am"}})
				},
				wantErr: ErrInvalidTransaction,
			},
			{
				name:    "override without ID",
				run:     func() error { return store.SaveOverride(ctx, &model.Override{IsCoffee: boolPtr(true)}) },
				wantErr: ErrInvalidOverride,
			},
			{
				name:    "override without decision",
				run:     func() error { return store.SaveOverride(ctx, &model.Override{TransactionID: "x"}) },
				wantErr: ErrInvalidOverride,
			},
			{
				name:    "empty override ID lookup",
				run:     func() error { _, err := store.GetOverride(ctx, " "); return err },
				wantErr: ErrEmptyString,
			},
			{
				name: "nil context",
				//nolint:staticcheck // exercising the nil guard
				run:     func() error { _, err := store.LoadDocument(nil); return err },
				wantErr: ErrNilContext,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.ErrorIs(t, tt.run(), tt.wantErr)
			})
		}
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "postgres", filepath.Join(t.TempDir(), "x.db"))
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	// Migrating twice is a no-op.
	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	for _, table := range []string{"documents", "overrides", "transactions"} {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}

	var indexCount int
	err = store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_transactions_date'`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestBoltStorage_MigrateRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "diary.bolt")

	store, err := NewBoltStorage(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketMeta)).Put([]byte(schemaVersionKey), []byte("99"))
	}))
	assert.Error(t, store.Migrate(ctx))
	require.NoError(t, store.Close())
}

func TestBoltStorage_RequiresMigration(t *testing.T) {
	ctx := context.Background()
	store, err := NewBoltStorage(ctx, filepath.Join(t.TempDir(), "diary.bolt"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.LoadDocument(ctx)
	assert.Error(t, err)
}

func TestTranslateError(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.ErrorIs(t, translateError(busy), common.ErrStoreLocked)
	assert.True(t, common.IsRetryable(translateError(busy)))

	other := sqlite3.Error{Code: sqlite3.ErrConstraint}
	assert.NotErrorIs(t, translateError(other), common.ErrStoreLocked)
}
