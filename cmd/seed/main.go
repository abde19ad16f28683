// Package main seeds the genre graph with the default music taxonomy.
//
// Genres are created through the regular commands by a system account, so the
// seeded graph carries full history. A few sample relevance votes follow.
//
// Usage:
//
//	DATA_PATH=~/GenreGraph/data go run ./cmd/seed
//	go run ./cmd/seed -store badger -data-path /tmp/genregraph
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/di"
	"github.com/listenupapp/genregraph/internal/di/providers"
	"github.com/listenupapp/genregraph/internal/domain"
	apperrors "github.com/listenupapp/genregraph/internal/errors"
	"github.com/listenupapp/genregraph/internal/genre"
	"github.com/listenupapp/genregraph/internal/logger"
	"github.com/listenupapp/genregraph/internal/service"
	"github.com/listenupapp/genregraph/internal/store"
)

const systemAccountID = 1

// sampleVotes are cast by accounts 2..n, one slice entry per account.
var sampleVotes = []map[string]int{
	{"rock": 7, "shoegaze": 5, "drum-and-bass": 6, "bebop": 4},
	{"rock": 6, "shoegaze": 6, "drum-and-bass": 5, "jungle": 5},
	{"rock": 7, "shoegaze": 3, "jungle": 6, "trap": 4},
}

func main() {
	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	err := run(context.Background(), injector)
	injector.Shutdown()
	if err != nil {
		if code := apperrors.CodeOf(err); code != "" {
			fmt.Fprintf(os.Stderr, "Seed failed [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, injector do.Injector) error {
	log := do.MustInvoke[*logger.Logger](injector)
	storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
	svc := do.MustInvoke[*service.GenreService](injector)

	if err := grantSeedPermissions(ctx, storeHandle); err != nil {
		return fmt.Errorf("grant permissions: %w", err)
	}

	created, err := svc.SeedDefaultGenres(ctx, systemAccountID, genre.DefaultGenres)
	if err != nil {
		return err
	}
	if created == 0 {
		fmt.Println("Genres already present, nothing to seed")
		return nil
	}
	fmt.Printf("Seeded %d genres into %s\n", created, storeHandle.Path)

	if err := castSampleVotes(ctx, svc); err != nil {
		return err
	}
	log.Info("Seed complete", "genres", created, "voters", len(sampleVotes))
	return nil
}

func grantSeedPermissions(ctx context.Context, tx store.Transactor) error {
	return tx.InTx(ctx, func(tx store.Tx) error {
		perms := tx.Permissions()
		if err := perms.Grant(ctx, systemAccountID, domain.PermissionEditGenre); err != nil {
			return err
		}
		for i := range len(sampleVotes) + 1 {
			if err := perms.Grant(ctx, systemAccountID+i, domain.PermissionVoteGenreRelevance); err != nil {
				return err
			}
		}
		return nil
	})
}

func castSampleVotes(ctx context.Context, svc *service.GenreService) error {
	genres, err := svc.ListGenres(ctx)
	if err != nil {
		return err
	}
	bySlug := make(map[string]int, len(genres))
	for _, g := range genres {
		bySlug[genre.Slugify(g.Name)] = g.ID
	}

	for i, votes := range sampleVotes {
		accountID := systemAccountID + 1 + i
		for slug, relevance := range votes {
			id, ok := bySlug[slug]
			if !ok {
				return fmt.Errorf("no seeded genre %q", slug)
			}
			median, err := svc.VoteGenreRelevance(ctx, accountID, id, relevance)
			if err != nil {
				return fmt.Errorf("vote on %s: %w", slug, err)
			}
			fmt.Printf("  account %d voted %d on %s (relevance now %d)\n", accountID, relevance, slug, median)
		}
	}
	return nil
}
