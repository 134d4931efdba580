package search

import (
	"testing"

	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
)

func hit(videoID string, idx int, score float64) *vectorstore.Hit {
	return &vectorstore.Hit{
		ID:    models.OriginalID(videoID, idx),
		Score: score,
		Payload: models.KeyframePayload{
			OriginalID:    models.OriginalID(videoID, idx),
			VideoID:       videoID,
			KeyframeIndex: idx,
		},
	}
}

func TestFuseDedupKeepsMaxScore(t *testing.T) {
	// Two queries both hit L21_V001 keyframe 3 (0.80 and 0.92); query 1 also
	// hits L21_V002 keyframe 10 at 0.70. The fused list is the deduplicated
	// pair ranked by max score.
	results := Fuse([][]*vectorstore.Hit{
		{hit("L21_V001", 3, 0.80), hit("L21_V002", 10, 0.70)},
		{hit("L21_V001", 3, 0.92)},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 fused results, got %d", len(results))
	}
	if results[0].OriginalID != "L21_V001_003" || results[0].SimilarityScore != 0.92 || results[0].Rank != 1 {
		t.Errorf("top result = %+v", results[0])
	}
	if results[1].OriginalID != "L21_V002_010" || results[1].SimilarityScore != 0.70 || results[1].Rank != 2 {
		t.Errorf("second result = %+v", results[1])
	}
}

func TestFuseRanksAreDenseAndOrdered(t *testing.T) {
	results := Fuse([][]*vectorstore.Hit{
		{hit("L21_V001", 1, 0.9), hit("L21_V001", 2, 0.5)},
		{hit("L21_V002", 1, 0.7), hit("L21_V002", 2, 0.3)},
	})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
		if i > 0 && r.SimilarityScore > results[i-1].SimilarityScore {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestFuseTieKeepsEarlierQueryFirst(t *testing.T) {
	results := Fuse([][]*vectorstore.Hit{
		{hit("L21_V001", 1, 0.8)},
		{hit("L21_V002", 1, 0.8)},
	})
	if results[0].OriginalID != "L21_V001_001" {
		t.Errorf("tie should keep query order, got %q first", results[0].OriginalID)
	}
}

func TestFuseDeterministic(t *testing.T) {
	input := [][]*vectorstore.Hit{
		{hit("L21_V003", 1, 0.6), hit("L21_V001", 2, 0.6)},
		{hit("L21_V002", 5, 0.6), hit("L21_V003", 1, 0.6)},
	}
	first := Fuse(input)
	for n := 0; n < 10; n++ {
		again := Fuse(input)
		for i := range first {
			if again[i].OriginalID != first[i].OriginalID {
				t.Fatalf("order changed between runs at %d: %q vs %q",
					i, again[i].OriginalID, first[i].OriginalID)
			}
		}
	}
}

func TestFuseEmpty(t *testing.T) {
	if got := Fuse(nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
	if got := Fuse([][]*vectorstore.Hit{{}, {}}); len(got) != 0 {
		t.Errorf("expected no results for empty hit lists, got %d", len(got))
	}
}

func TestGroupByVideo(t *testing.T) {
	results := Fuse([][]*vectorstore.Hit{{
		hit("L21_V001", 3, 0.92),
		hit("L21_V002", 10, 0.70),
		hit("L21_V001", 7, 0.65),
	}})

	groups := GroupByVideo(results)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].VideoID != "L21_V001" || groups[0].BestScore != 0.92 || groups[0].TotalFrames != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].VideoID != "L21_V002" || groups[1].TotalFrames != 1 {
		t.Errorf("second group = %+v", groups[1])
	}

	// Every result appears in exactly one group.
	total := 0
	for _, g := range groups {
		total += len(g.Frames)
	}
	if total != len(results) {
		t.Errorf("groups hold %d frames, want %d", total, len(results))
	}
}

func TestGroupByVideoTieBreaksOnVideoID(t *testing.T) {
	results := Fuse([][]*vectorstore.Hit{{
		hit("L21_V002", 1, 0.8),
		hit("L21_V001", 1, 0.8),
	}})
	groups := GroupByVideo(results)
	if groups[0].VideoID != "L21_V001" || groups[1].VideoID != "L21_V002" {
		t.Errorf("equal best scores should order by video id: %q, %q",
			groups[0].VideoID, groups[1].VideoID)
	}
}

func TestGroupFramesKeepFusedOrder(t *testing.T) {
	results := Fuse([][]*vectorstore.Hit{{
		hit("L21_V001", 5, 0.4),
		hit("L21_V001", 1, 0.9),
		hit("L21_V001", 3, 0.6),
	}})
	groups := GroupByVideo(results)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	frames := groups[0].Frames
	for i := 1; i < len(frames); i++ {
		if frames[i].SimilarityScore > frames[i-1].SimilarityScore {
			t.Errorf("group frames not sorted by score at %d", i)
		}
	}
}
