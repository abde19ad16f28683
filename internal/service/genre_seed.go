package service

import (
	"context"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/genre"
)

// SeedDefaultGenres creates the given taxonomy through the regular commands,
// acting as accountID, so every seeded genre carries its own history.
// Parents are created first; derived-from and influence edges follow in a
// second pass since they may point at genres seeded later.
// It does nothing and returns 0 when any genre already exists.
func (s *GenreService) SeedDefaultGenres(ctx context.Context, accountID int, seeds []genre.GenreSeed) (int, error) {
	existing, err := s.ListGenres(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Info("genres already present, skipping seed", "count", len(existing))
		return 0, nil
	}

	entries := genre.Flatten(seeds)
	ids := make(map[string]int, len(entries))

	for _, e := range entries {
		req := CreateGenreRequest{
			Name: e.Name,
			Type: domain.GenreType(e.Type),
			Akas: GenreAkasInput{Primary: e.AKAs},
		}
		if e.ParentSlug != "" {
			req.ParentIDs = []int{ids[e.ParentSlug]}
		}
		g, err := s.CreateGenre(ctx, accountID, req)
		if err != nil {
			return 0, fmt.Errorf("seed genre %s: %w", e.Slug, err)
		}
		ids[e.Slug] = g.ID
	}

	for _, e := range entries {
		if len(e.DerivedFrom) == 0 && len(e.Influences) == 0 {
			continue
		}
		derivedFrom, err := resolveSlugs(ids, e.DerivedFrom)
		if err != nil {
			return 0, fmt.Errorf("seed genre %s: %w", e.Slug, err)
		}
		influences, err := resolveSlugs(ids, e.Influences)
		if err != nil {
			return 0, fmt.Errorf("seed genre %s: %w", e.Slug, err)
		}
		if _, err := s.UpdateGenre(ctx, accountID, ids[e.Slug], UpdateGenreRequest{
			DerivedFromIDs: &derivedFrom,
			InfluenceIDs:   &influences,
		}); err != nil {
			return 0, fmt.Errorf("seed relations of %s: %w", e.Slug, err)
		}
	}

	s.logger.Info("default genres seeded", "count", len(entries))
	return len(entries), nil
}

// resolveSlugs maps seed references to genre IDs. A reference may be a slug or
// any spelling genre.NormalizeToSlugs understands.
func resolveSlugs(ids map[string]int, refs []string) ([]int, error) {
	out := make([]int, 0, len(refs))
	for _, ref := range refs {
		for _, slug := range genre.NormalizeToSlugs(ref) {
			id, ok := ids[slug]
			if !ok {
				return nil, fmt.Errorf("unknown genre %q", ref)
			}
			out = append(out, id)
		}
	}
	return out, nil
}
