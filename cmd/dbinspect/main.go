// Package main prints the genre hierarchy, its relations and the latest updates feed.
//
// Usage:
//
//	DATA_PATH=~/GenreGraph/data go run ./cmd/dbinspect
//	go run ./cmd/dbinspect -store badger -latest-updates-limit 50
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/do/v2"

	"github.com/listenupapp/genregraph/internal/config"
	"github.com/listenupapp/genregraph/internal/di"
	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/service"
)

func main() {
	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	cfg := do.MustInvoke[*config.Config](injector)
	svc := do.MustInvoke[*service.GenreService](injector)

	err := inspect(context.Background(), svc, cfg.Feed.LatestUpdatesLimit)
	injector.Shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inspection failed: %v\n", err)
		os.Exit(1)
	}
}

func inspect(ctx context.Context, svc *service.GenreService, limit int) error {
	genres, err := svc.ListGenres(ctx)
	if err != nil {
		return err
	}
	nodes, err := svc.GetGenreTree(ctx)
	if err != nil {
		return err
	}

	names := make(map[int]string, len(genres))
	relevance := make(map[int]int, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
		relevance[g.ID] = g.Relevance
	}
	children := make(map[int][]int)
	var roots []int
	for _, n := range nodes {
		if n.Parents.Len() == 0 {
			roots = append(roots, n.ID)
		}
		for _, p := range n.Parents.Sorted() {
			children[p] = append(children[p], n.ID)
		}
	}

	fmt.Println("=== Genre Hierarchy ===")
	// A genre with several parents is printed under each of them.
	var walk func(id, depth int)
	walk = func(id, depth int) {
		label := names[id]
		if r := relevance[id]; r != domain.UnsetGenreRelevance {
			label = fmt.Sprintf("%s [relevance %d]", label, r)
		}
		fmt.Printf("%s%s (#%d)\n", strings.Repeat("  ", depth), label, id)
		for _, c := range children[id] {
			walk(c, depth+1)
		}
	}
	for _, id := range roots {
		walk(id, 0)
	}

	fmt.Println()
	fmt.Println("=== Relations ===")
	for _, n := range nodes {
		if n.DerivedFrom.Len() == 0 && n.Influences.Len() == 0 {
			continue
		}
		fmt.Printf("%s\n", names[n.ID])
		if n.DerivedFrom.Len() > 0 {
			fmt.Printf("  derived from: %s\n", joinNames(names, n.DerivedFrom.Sorted()))
		}
		if n.Influences.Len() > 0 {
			fmt.Printf("  influenced by: %s\n", joinNames(names, n.Influences.Sorted()))
		}
	}

	updates, err := svc.GetLatestUpdates(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("=== Latest Updates ===")
	for _, u := range updates {
		e := u.Entry
		account := "-"
		if e.AccountID != nil {
			account = strconv.Itoa(*e.AccountID)
		}
		fmt.Printf("%s %-6s %s (#%d) by %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation, e.Name, e.GenreID, account)
		for _, c := range u.Changes {
			fmt.Printf("    %s: %q -> %q\n", c.Field, c.Before, c.After)
		}
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Total genres: %d\n", len(genres))
	fmt.Printf("Root genres: %d\n", len(roots))
	fmt.Printf("Feed entries shown: %d\n", len(updates))
	return nil
}

func joinNames(names map[int]string, ids []int) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = names[id]
	}
	return strings.Join(out, ", ")
}
