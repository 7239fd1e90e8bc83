package repository

import (
	"context"
	"fmt"
	"testing"

	"veda-backend/internal/models"
	"veda-backend/internal/storage"

	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func genRecord(i int) *rapid.Generator[models.Record] {
	return rapid.Custom(func(t *rapid.T) models.Record {
		return models.Record{
			ID:        fmt.Sprintf("id-%d", i),
			Question:  rapid.String().Draw(t, "question"),
			Answer:    rapid.String().Draw(t, "answer"),
			Timestamp: rapid.StringMatching(`20[0-9]{2}-[01][0-9]-[0-3][0-9]T[0-2][0-9]:[0-5][0-9]:[0-5][0-9]Z`).Draw(t, "timestamp"),
		}
	})
}

func TestProperty_AppendThenListPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		repo := NewAnalyticsRepo(storage.NewMemoryBackend(), nil, zap.NewNop())
		ctx := context.Background()

		n := rapid.IntRange(0, 20).Draw(t, "n")
		want := make([]models.Record, 0, n)
		for i := 0; i < n; i++ {
			rec := genRecord(i).Draw(t, fmt.Sprintf("record-%d", i))
			rec.Rating = rapid.SampledFrom([]models.Rating{models.RatingUnset, models.RatingUp, models.RatingDown}).Draw(t, "rating")
			if err := repo.Append(ctx, &rec); err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
			want = append(want, rec)
		}

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("record %d: expected %+v, got %+v", i, want[i], got[i])
			}
			if got[i].Rating != models.RatingUnset {
				t.Fatalf("record %d: expected unset rating, got %q", i, got[i].Rating)
			}
		}
	})
}

func TestProperty_RatingUpdatesTouchOnlyTarget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		backend := storage.NewMemoryBackend()
		repo := NewAnalyticsRepo(backend, nil, zap.NewNop())
		ctx := context.Background()

		n := rapid.IntRange(1, 10).Draw(t, "n")
		for i := 0; i < n; i++ {
			rec := genRecord(i).Draw(t, fmt.Sprintf("record-%d", i))
			if err := repo.Append(ctx, &rec); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		before, _ := repo.List(ctx)

		target := rapid.IntRange(0, n-1).Draw(t, "target")
		rating := rapid.SampledFrom([]models.Rating{models.RatingUp, models.RatingDown}).Draw(t, "rating")
		if err := repo.UpdateRating(ctx, before[target].ID, rating); err != nil {
			t.Fatalf("update: %v", err)
		}

		after, _ := repo.List(ctx)
		for i := range before {
			expected := before[i]
			if i == target {
				expected.Rating = rating
			}
			if after[i] != expected {
				t.Fatalf("record %d: expected %+v, got %+v", i, expected, after[i])
			}
		}

		blob, _ := backend.Load(ctx)
		bad := rapid.StringMatching(`[a-z]{1,8}`).Filter(func(s string) bool { return s != "up" && s != "down" }).Draw(t, "bad")
		if err := repo.UpdateRating(ctx, before[target].ID, models.Rating(bad)); err == nil {
			t.Fatalf("expected rating %q to be rejected", bad)
		}
		if err := repo.UpdateRating(ctx, "missing-id", rating); err == nil {
			t.Fatal("expected not found")
		}
		unchanged, _ := backend.Load(ctx)
		if string(blob) != string(unchanged) {
			t.Fatal("rejected updates modified storage")
		}
	})
}
