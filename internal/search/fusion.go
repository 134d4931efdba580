// Package search provides multi-query keyframe search with result fusion.
package search

import (
	"sort"

	"github.com/duonguwu/ai-challenge/internal/models"
	"github.com/duonguwu/ai-challenge/internal/vectorstore"
)

// Fuse merges per-query hit lists into one ranked result list. A keyframe hit
// by several queries keeps its maximum score. Entries are collected in query
// order and sorted stably, so ties rank the earlier query's hit first. Ranks
// are assigned 1-based after sorting.
func Fuse(hitsPerQuery [][]*vectorstore.Hit) []*models.FrameResult {
	var (
		results []*models.FrameResult
		byID    = make(map[string]*models.FrameResult)
	)
	for _, hits := range hitsPerQuery {
		for _, hit := range hits {
			id := hit.Payload.OriginalID
			if existing, ok := byID[id]; ok {
				if hit.Score > existing.SimilarityScore {
					existing.SimilarityScore = hit.Score
				}
				continue
			}
			r := frameResult(hit)
			byID[id] = r
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	for i, r := range results {
		r.Rank = i + 1
	}
	return results
}

func frameResult(hit *vectorstore.Hit) *models.FrameResult {
	return &models.FrameResult{
		OriginalID:      hit.Payload.OriginalID,
		VideoID:         hit.Payload.VideoID,
		KeyframeIndex:   hit.Payload.KeyframeIndex,
		ImagePath:       hit.Payload.ImagePath,
		PtsTime:         hit.Payload.PtsTime,
		FrameIndex:      hit.Payload.FrameIndex,
		SimilarityScore: hit.Score,
		Objects:         hit.Payload.Objects,
	}
}

// GroupByVideo partitions ranked results into per-video groups. Frames keep
// their fused order inside each group, so a group's first frame carries its
// best score. Groups are sorted by best score descending, then video id.
func GroupByVideo(results []*models.FrameResult) []*models.VideoGroup {
	var (
		groups  []*models.VideoGroup
		byVideo = make(map[string]*models.VideoGroup)
	)
	for _, r := range results {
		g, ok := byVideo[r.VideoID]
		if !ok {
			g = &models.VideoGroup{VideoID: r.VideoID, BestScore: r.SimilarityScore}
			byVideo[r.VideoID] = g
			groups = append(groups, g)
		}
		g.Frames = append(g.Frames, r)
		g.TotalFrames++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].BestScore != groups[j].BestScore {
			return groups[i].BestScore > groups[j].BestScore
		}
		return groups[i].VideoID < groups[j].VideoID
	})
	return groups
}
